package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"swimfit/backend/internal/kv"
	"swimfit/backend/internal/utils"
)

const (
	adHocName        = "Unscheduled Session"
	adHocLocation    = "Main Facility"
	adHocDescription = "Ad-hoc session created during attendance check-in"
	adHocLead        = 30 * time.Minute
	adHocLength      = 2 * time.Hour
)

type Service struct {
	repo *Repo
	log  zerolog.Logger
	now  func() time.Time

	// adHocMu serializes ad-hoc creation within this process.
	adHocMu sync.Mutex
}

func NewService(repo *Repo, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log, now: time.Now}
}

func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Service) Init(ctx context.Context) error {
	return s.repo.Init(ctx)
}

func (s *Service) Add(ctx context.Context, in AddSessionInput) (*Session, error) {
	in.Trim()
	if err := utils.ValidateStruct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}

	start, err := parseTime("startTime", in.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := parseTime("endTime", in.EndTime)
	if err != nil {
		return nil, err
	}

	sess := Session{
		ID:           utils.NewID("session", s.now()),
		Name:         in.Name,
		StartTime:    start,
		EndTime:      end,
		MaxAttendees: DefaultMaxAttendees,
		Description:  in.Description,
		Location:     in.Location,
		Level:        in.Level,
		SelectedDays: in.SelectedDays,
		IsRecurring:  in.IsRecurring,
	}
	if in.MaxAttendees != nil && *in.MaxAttendees > 0 {
		sess.MaxAttendees = *in.MaxAttendees
	}
	if sess.Level == "" {
		sess.Level = DefaultLevel
	}
	if len(sess.SelectedDays) == 0 {
		sess.SelectedDays = in.RecurringDays
	}
	if in.RecurringEndDate != "" {
		t, err := parseTime("recurringEndDate", in.RecurringEndDate)
		if err != nil {
			return nil, err
		}
		sess.RecurringEndDate = &t
	}

	out, err := s.repo.Create(ctx, sess)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("sessionId", out.ID).Msg("session added")
	return out, nil
}

func (s *Service) Update(ctx context.Context, id string, in UpdateSessionInput) (*Session, error) {
	in.Trim()
	if err := utils.ValidateStruct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}

	updates := kv.Document{}
	if in.Name != nil {
		updates["name"] = *in.Name
	}
	for field, v := range map[string]*string{"startTime": in.StartTime, "endTime": in.EndTime, "recurringEndDate": in.RecurringEndDate} {
		if v == nil || (field == "recurringEndDate" && *v == "") {
			continue
		}
		t, err := parseTime(field, *v)
		if err != nil {
			return nil, err
		}
		updates[field] = t
	}
	if in.Location != nil {
		updates["location"] = *in.Location
	}
	if in.MaxAttendees != nil {
		updates["maxAttendees"] = *in.MaxAttendees
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Level != nil {
		updates["level"] = *in.Level
	}
	if in.SelectedDays != nil {
		updates["selectedDays"] = *in.SelectedDays
	}
	if in.IsRecurring != nil {
		updates["isRecurring"] = *in.IsRecurring
	}
	return s.repo.Update(ctx, id, updates)
}

func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: missing session id", ErrBadRequest)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Session, error) {
	return s.repo.List(ctx)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: missing session id", ErrBadRequest)
	}
	return s.repo.Delete(ctx, id)
}

// Resolve runs the resolver against the stored sessions at the current time.
func (s *Service) Resolve(ctx context.Context, selectedID string) (Resolution, bool, error) {
	sessions, err := s.repo.List(ctx)
	if err != nil {
		return Resolution{}, false, err
	}
	res, ok := Resolve(sessions, selectedID, s.now())
	return res, ok, nil
}

// ResolveForCheckIn resolves like Resolve but never comes back empty: when
// no session exists it stores an ad-hoc session around now. The bool reports
// whether the session was created by this call.
func (s *Service) ResolveForCheckIn(ctx context.Context, selectedID string) (Resolution, bool, error) {
	res, ok, err := s.Resolve(ctx, selectedID)
	if err != nil || ok {
		return res, false, err
	}

	s.adHocMu.Lock()
	defer s.adHocMu.Unlock()

	// Another check-in may have created one while we waited.
	res, ok, err = s.Resolve(ctx, selectedID)
	if err != nil || ok {
		return res, false, err
	}

	now := s.now().UTC()
	adHoc := Session{
		ID:           utils.NewID("adhoc", now),
		Name:         adHocName,
		StartTime:    now.Add(-adHocLead),
		EndTime:      now.Add(adHocLength - adHocLead),
		MaxAttendees: DefaultMaxAttendees,
		Description:  adHocDescription,
		Location:     adHocLocation,
		Level:        DefaultLevel,
		IsAdHoc:      true,
	}
	created, err := s.repo.Create(ctx, adHoc)
	if err != nil {
		return Resolution{}, false, err
	}
	s.log.Info().Str("sessionId", created.ID).Time("start", created.StartTime).Msg("created ad-hoc session for check-in")
	return Resolution{Session: *created, Rule: RuleAdHoc}, true, nil
}

func parseTime(field, v string) (time.Time, error) {
	t, err := utils.ParseTime(v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid %s %q", ErrBadRequest, field, v)
	}
	return t.UTC(), nil
}
