package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"swimfit/backend/internal/domain/client"
	"swimfit/backend/internal/domain/session"
	"swimfit/backend/internal/utils"
)

type ClientDirectory interface {
	Get(ctx context.Context, id string) (*client.Client, error)
	List(ctx context.Context, in client.ListClientsInput) ([]client.Client, error)
	SetSessionCount(ctx context.Context, id string, n int) (*client.Client, error)
}

type SessionDirectory interface {
	Get(ctx context.Context, id string) (*session.Session, error)
	List(ctx context.Context) ([]session.Session, error)
	ResolveForCheckIn(ctx context.Context, selectedID string) (session.Resolution, bool, error)
}

// UsageNotifier is told about a client's new session count.
type UsageNotifier interface {
	NotifyUsage(ctx context.Context, c client.Client) error
}

type Service struct {
	repo     *Repo
	clients  ClientDirectory
	sessions SessionDirectory
	notifier UsageNotifier
	scanner  *ScanResolver
	log      zerolog.Logger
	now      func() time.Time

	// counts serializes the recount-and-write of each client's counter.
	counts *keyedMutex
}

func NewService(repo *Repo, clients ClientDirectory, sessions SessionDirectory, scanner *ScanResolver, log zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		clients:  clients,
		sessions: sessions,
		scanner:  scanner,
		log:      log,
		now:      time.Now,
		counts:   newKeyedMutex(),
	}
}

func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Service) SetNotifier(n UsageNotifier) {
	s.notifier = n
}

func (s *Service) Init(ctx context.Context) error {
	return s.repo.Init(ctx)
}

// Record stores one check-in and refreshes the client's session count.
// Recording the same pair twice yields two records.
func (s *Service) Record(ctx context.Context, in RecordInput) (*Record, error) {
	in.Trim()
	if err := utils.ValidateStruct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}

	c, err := s.clients.Get(ctx, in.ClientID)
	if err != nil && !client.IsErrNotFound(err) {
		return nil, err
	}
	sess, err := s.sessions.Get(ctx, in.SessionID)
	if err != nil && !session.IsErrNotFound(err) {
		return nil, err
	}
	if c == nil || sess == nil {
		s.log.Warn().
			Str("clientId", in.ClientID).
			Str("sessionId", in.SessionID).
			Bool("clientFound", c != nil).
			Bool("sessionFound", sess != nil).
			Msg("attendance rejected")
		return nil, fmt.Errorf("%w: client or session not found", ErrNotFound)
	}

	now := s.now().UTC()
	checkIn := now
	if in.Timestamp != nil && !in.Timestamp.IsZero() {
		checkIn = in.Timestamp.UTC()
	}
	rec, err := s.repo.Create(ctx, Record{
		ID:          utils.NewID("attendance", now),
		ClientID:    c.ID,
		ClientName:  c.Name,
		SessionID:   sess.ID,
		SessionName: sess.Name,
		CheckInTime: checkIn,
		Notes:       in.Notes,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("attendanceId", rec.ID).Str("clientId", rec.ClientID).Str("sessionId", rec.SessionID).Msg("attendance recorded")

	if _, err := s.recount(ctx, c.ID); err != nil {
		s.log.Error().Err(err).Str("clientId", c.ID).Msg("session count not updated")
	}
	return rec, nil
}

func (s *Service) recount(ctx context.Context, clientID string) (*client.Client, error) {
	unlock := s.counts.Lock(clientID)
	defer unlock()

	recs, err := s.repo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	updated, err := s.clients.SetSessionCount(ctx, clientID, len(recs))
	if err != nil {
		return nil, err
	}
	s.notify(ctx, *updated)
	return updated, nil
}

func (s *Service) notify(ctx context.Context, c client.Client) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyUsage(ctx, c); err != nil {
		s.log.Warn().Err(err).Str("clientId", c.ID).Msg("usage notification failed")
	}
}

// List returns every record with names taken from the current directories.
func (s *Service) List(ctx context.Context) ([]Record, error) {
	var (
		records  []Record
		clients  []client.Client
		sessions []session.Session
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		records, err = s.repo.ListAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		clients, err = s.clients.List(gctx, client.ListClientsInput{})
		return err
	})
	g.Go(func() (err error) {
		sessions, err = s.sessions.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	clientNames := make(map[string]string, len(clients))
	for _, c := range clients {
		clientNames[c.ID] = c.Name
	}
	sessionNames := make(map[string]string, len(sessions))
	for _, ss := range sessions {
		sessionNames[ss.ID] = ss.Name
	}
	for i := range records {
		records[i].ClientName = lookup(clientNames, records[i].ClientID, UnknownClient)
		records[i].SessionName = lookup(sessionNames, records[i].SessionID, UnknownSession)
	}
	return records, nil
}

func lookup(names map[string]string, id, fallback string) string {
	if n, ok := names[id]; ok && n != "" {
		return n
	}
	return fallback
}

// SessionAttendance returns a session with its records. Session is nil when
// the session no longer exists.
func (s *Service) SessionAttendance(ctx context.Context, sessionID string) (*SessionAttendance, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: missing session id", ErrBadRequest)
	}
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil && !session.IsErrNotFound(err) {
		return nil, err
	}
	records, err := s.repo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var names map[string]string
	for i := range records {
		if sess != nil && records[i].SessionName == "" {
			records[i].SessionName = sess.Name
		}
		if records[i].ClientName != "" {
			continue
		}
		if names == nil {
			clients, err := s.clients.List(ctx, client.ListClientsInput{})
			if err != nil {
				return nil, err
			}
			names = make(map[string]string, len(clients))
			for _, c := range clients {
				names[c.ID] = c.Name
			}
		}
		records[i].ClientName = lookup(names, records[i].ClientID, UnknownClient)
	}
	return &SessionAttendance{Session: sess, Attendance: records}, nil
}

// CheckIn is the scan flow: identify the client, pick the session that is
// running now (creating an ad-hoc one if needed) and record attendance.
func (s *Service) CheckIn(ctx context.Context, in CheckInInput) (*CheckInResult, error) {
	in.Trim()
	if err := utils.ValidateStruct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}

	clientID, method := in.ClientID, ScanManual
	if clientID == "" {
		clients, err := s.clients.List(ctx, client.ListClientsInput{})
		if err != nil {
			return nil, err
		}
		clientID, method, err = s.scanner.Resolve(in.Payload, clients)
		if err != nil {
			s.log.Warn().Err(err).Msg("scan not matched")
			return nil, err
		}
	}

	res, created, err := s.sessions.ResolveForCheckIn(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	rec, err := s.Record(ctx, RecordInput{
		ClientID:  clientID,
		SessionID: res.Session.ID,
		Notes:     in.Notes,
		Timestamp: in.Timestamp,
	})
	if err != nil {
		return nil, err
	}
	return &CheckInResult{
		Record:         rec,
		Session:        res.Session,
		Rule:           res.Rule,
		SessionCreated: created,
		ScanMethod:     method,
	}, nil
}

// ReconcileUsage rewrites every client's session count from the stored
// records.
func (s *Service) ReconcileUsage(ctx context.Context) (ReconcileStats, error) {
	clients, err := s.clients.List(ctx, client.ListClientsInput{})
	if err != nil {
		return ReconcileStats{}, err
	}
	stats := ReconcileStats{Clients: len(clients)}
	for _, c := range clients {
		unlock := s.counts.Lock(c.ID)
		recs, err := s.repo.ListByClient(ctx, c.ID)
		if err == nil && len(recs) != c.SessionCount {
			_, err = s.clients.SetSessionCount(ctx, c.ID, len(recs))
			if err == nil {
				stats.Updated++
				s.log.Info().Str("clientId", c.ID).Int("from", c.SessionCount).Int("to", len(recs)).Msg("session count reconciled")
			}
		}
		unlock()
		if err != nil {
			return stats, err
		}
	}
	return stats, nil
}

// ListByClient returns a client's records as stored.
func (s *Service) ListByClient(ctx context.Context, clientID string) ([]Record, error) {
	if clientID == "" {
		return nil, fmt.Errorf("%w: missing client id", ErrBadRequest)
	}
	return s.repo.ListByClient(ctx, clientID)
}
