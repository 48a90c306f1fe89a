package retention

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"swimfit/backend/internal/domain/attendance"
	"swimfit/backend/internal/domain/client"
)

type ClientLister interface {
	List(ctx context.Context, in client.ListClientsInput) ([]client.Client, error)
}

type AttendanceLister interface {
	List(ctx context.Context) ([]attendance.Record, error)
}

type Service struct {
	clients    ClientLister
	attendance AttendanceLister
	now        func() time.Time
}

func NewService(clients ClientLister, att AttendanceLister) *Service {
	return &Service{clients: clients, attendance: att, now: time.Now}
}

func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Classify returns the risk for a client absent for days. ok is false when
// the client is coming often enough to not be flagged.
func Classify(days int, st Settings) (RiskLevel, bool) {
	watch := int(math.Floor(float64(st.ThresholdDays) * st.WatchRatio))
	critical := int(math.Floor(float64(st.ThresholdDays) * st.CriticalMultiplier))
	switch {
	case days >= critical:
		return RiskCritical, true
	case days >= st.ThresholdDays:
		return RiskWarning, true
	case days >= watch:
		return RiskWatch, true
	}
	return "", false
}

type visits struct {
	last  time.Time
	count int
}

// Alerts lists active clients who have not visited recently, most at risk
// first.
func (s *Service) Alerts(ctx context.Context, st Settings) (*Summary, error) {
	if st.ThresholdDays <= 0 || st.CriticalMultiplier < 1 || st.WatchRatio <= 0 || st.WatchRatio > 1 {
		return nil, fmt.Errorf("%w: invalid retention settings", ErrBadRequest)
	}
	clients, err := s.clients.List(ctx, client.ListClientsInput{ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	records, err := s.attendance.List(ctx)
	if err != nil {
		return nil, err
	}

	byClient := map[string]visits{}
	for _, r := range records {
		v := byClient[r.ClientID]
		v.count++
		if r.CheckInTime.After(v.last) {
			v.last = r.CheckInTime
		}
		byClient[r.ClientID] = v
	}

	now := s.now().UTC()
	sum := &Summary{Settings: st, Alerts: []ClientAlert{}, ScannedAt: now}
	sum.Stats.TotalClients = len(clients)
	for _, c := range clients {
		v := byClient[c.ID]
		since := c.RegistrationDate
		var last *time.Time
		if v.count > 0 {
			since = v.last
			t := v.last
			last = &t
		}
		days := int(now.Sub(since).Hours() / 24)
		risk, ok := Classify(days, st)
		if !ok {
			continue
		}
		sum.Alerts = append(sum.Alerts, ClientAlert{
			ClientID:    c.ID,
			ClientName:  c.Name,
			Email:       c.Email,
			LastVisit:   last,
			DaysAbsent:  days,
			TotalVisits: v.count,
			RiskLevel:   risk,
		})
		switch risk {
		case RiskCritical:
			sum.Stats.Critical++
		case RiskWarning:
			sum.Stats.Warning++
		case RiskWatch:
			sum.Stats.Watch++
		}
	}
	sum.Stats.TotalAtRisk = len(sum.Alerts)

	sort.SliceStable(sum.Alerts, func(i, j int) bool {
		ri, rj := riskOrder(sum.Alerts[i].RiskLevel), riskOrder(sum.Alerts[j].RiskLevel)
		if ri != rj {
			return ri < rj
		}
		return sum.Alerts[i].DaysAbsent > sum.Alerts[j].DaysAbsent
	})
	return sum, nil
}

func riskOrder(r RiskLevel) int {
	switch r {
	case RiskCritical:
		return 0
	case RiskWarning:
		return 1
	default:
		return 2
	}
}
