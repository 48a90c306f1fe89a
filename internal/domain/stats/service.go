package stats

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"swimfit/backend/internal/domain/attendance"
	"swimfit/backend/internal/domain/client"
	"swimfit/backend/internal/domain/session"
)

type ClientDirectory interface {
	Get(ctx context.Context, id string) (*client.Client, error)
	List(ctx context.Context, in client.ListClientsInput) ([]client.Client, error)
}

type SessionLister interface {
	List(ctx context.Context) ([]session.Session, error)
}

type AttendanceLister interface {
	List(ctx context.Context) ([]attendance.Record, error)
	ListByClient(ctx context.Context, clientID string) ([]attendance.Record, error)
}

type Service struct {
	clients    ClientDirectory
	sessions   SessionLister
	attendance AttendanceLister
	now        func() time.Time
}

func NewService(clients ClientDirectory, sessions SessionLister, att AttendanceLister) *Service {
	return &Service{clients: clients, sessions: sessions, attendance: att, now: time.Now}
}

func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// StudioStats counts clients, sessions and check-ins. "Today" and "this
// month" are calendar periods in UTC.
func (s *Service) StudioStats(ctx context.Context) (*StudioStats, error) {
	var (
		clients  []client.Client
		sessions []session.Session
		records  []attendance.Record
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		clients, err = s.clients.List(gctx, client.ListClientsInput{})
		return err
	})
	g.Go(func() (err error) {
		sessions, err = s.sessions.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		records, err = s.attendance.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	out := &StudioStats{}

	out.Clients.Total = len(clients)
	for _, c := range clients {
		if c.IsActive {
			out.Clients.Active++
		}
		if c.PackageLimit != nil {
			out.Clients.WithPackage++
		}
	}

	out.Sessions.Total = len(sessions)
	for _, ss := range sessions {
		if ss.IsRecurring {
			out.Sessions.Recurring++
		}
		if ss.IsAdHoc {
			out.Sessions.AdHoc++
		}
		if _, ok := ss.OccurrenceOn(now); ok {
			out.Sessions.Today++
		}
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	seen := map[string]bool{}
	out.Attendance.Total = len(records)
	for _, r := range records {
		t := r.CheckInTime.UTC()
		if !t.Before(dayStart) {
			out.Attendance.Today++
		}
		if !t.Before(monthStart) {
			out.Attendance.ThisMonth.Total++
			seen[r.ClientID] = true
		}
	}
	out.Attendance.ThisMonth.UniqueClients = len(seen)
	return out, nil
}

func (s *Service) ClientStats(ctx context.Context, clientID string) (*ClientStatsResult, error) {
	if clientID == "" {
		return nil, fmt.Errorf("%w: clientId is required", ErrBadRequest)
	}
	c, err := s.clients.Get(ctx, clientID)
	if err != nil {
		if client.IsErrNotFound(err) {
			return nil, fmt.Errorf("%w: client not found", ErrNotFound)
		}
		return nil, err
	}
	records, err := s.attendance.ListByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	res := &ClientStatsResult{
		Client: ClientInfo{
			ID:                  c.ID,
			Name:                c.Name,
			RegistrationDate:    c.RegistrationDate,
			DaysSinceRegistered: int(now.Sub(c.RegistrationDate).Hours() / 24),
			SessionCount:        c.SessionCount,
			PackageLimit:        c.PackageLimit,
		},
	}

	bySession := map[string]int{}
	for _, r := range records {
		res.Attendance.Total++
		if !r.CheckInTime.Before(monthStart) {
			res.Attendance.ThisMonth++
		}
		if last := res.Attendance.LastVisit; last == nil || r.CheckInTime.After(*last) {
			t := r.CheckInTime
			res.Attendance.LastVisit = &t
		}
		if r.SessionName != "" {
			bySession[r.SessionName]++
		}
	}
	best := 0
	for name, n := range bySession {
		if n > best || (n == best && name < res.Attendance.FavoriteSession) {
			best = n
			res.Attendance.FavoriteSession = name
		}
	}
	return res, nil
}
