package notifications

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"firebase.google.com/go/v4/messaging"
	"github.com/rs/zerolog"

	"swimfit/backend/internal/domain/client"
)

const (
	approachingAt = 70.0
	criticalAt    = 90.0
	exceededAt    = 100.0
)

// Classify returns the usage percentage and its band. A client without a
// positive package limit is always ok.
func Classify(sessionCount int, packageLimit *int) (float64, Band) {
	if packageLimit == nil || *packageLimit <= 0 {
		return 0, BandOK
	}
	pct := float64(sessionCount) / float64(*packageLimit) * 100
	pct = math.Round(pct*10) / 10
	switch {
	case pct >= exceededAt:
		return pct, BandExceeded
	case pct >= criticalAt:
		return pct, BandCritical
	case pct >= approachingAt:
		return pct, BandApproaching
	default:
		return pct, BandOK
	}
}

func UsageOf(c client.Client) Usage {
	pct, band := Classify(c.SessionCount, c.PackageLimit)
	u := Usage{
		ClientID:     c.ID,
		ClientName:   c.Name,
		SessionCount: c.SessionCount,
		Percent:      pct,
		Band:         band,
	}
	if c.PackageLimit != nil {
		u.PackageLimit = *c.PackageLimit
	}
	return u
}

type ClientLister interface {
	List(ctx context.Context, in client.ListClientsInput) ([]client.Client, error)
}

// Pusher is satisfied by *messaging.Client.
type Pusher interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

type Service struct {
	clients ClientLister
	pusher  Pusher
	topic   string
	log     zerolog.Logger
}

func NewService(clients ClientLister, log zerolog.Logger) *Service {
	return &Service{clients: clients, log: log}
}

// SetPusher enables push alerts to topic.
func (s *Service) SetPusher(p Pusher, topic string) {
	s.pusher = p
	s.topic = topic
}

// Alerts lists active clients whose usage is approaching or past their
// package limit.
func (s *Service) Alerts(ctx context.Context) ([]Usage, error) {
	clients, err := s.clients.List(ctx, client.ListClientsInput{ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	out := []Usage{}
	for _, c := range clients {
		u := UsageOf(c)
		if u.Band.AtLeast(BandApproaching) {
			out = append(out, u)
		}
	}
	return out, nil
}

// NotifyUsage pushes an alert when the client's usage warrants one. It does
// nothing when no pusher is configured.
func (s *Service) NotifyUsage(ctx context.Context, c client.Client) error {
	u := UsageOf(c)
	if !u.Band.AtLeast(BandApproaching) || s.pusher == nil || s.topic == "" {
		return nil
	}
	msg := &messaging.Message{
		Topic: s.topic,
		Notification: &messaging.Notification{
			Title: title(u.Band),
			Body:  fmt.Sprintf("%s has used %d of %d sessions (%.0f%%)", u.ClientName, u.SessionCount, u.PackageLimit, u.Percent),
		},
		Data: map[string]string{
			"clientId":     u.ClientID,
			"band":         string(u.Band),
			"sessionCount": strconv.Itoa(u.SessionCount),
			"packageLimit": strconv.Itoa(u.PackageLimit),
		},
	}
	id, err := s.pusher.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("push usage alert: %w", err)
	}
	s.log.Debug().Str("clientId", u.ClientID).Str("band", string(u.Band)).Str("messageId", id).Msg("usage alert sent")
	return nil
}

func title(b Band) string {
	switch b {
	case BandExceeded:
		return "Package limit exceeded"
	case BandCritical:
		return "Package almost used up"
	default:
		return "Package limit approaching"
	}
}
