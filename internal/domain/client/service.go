package client

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"swimfit/backend/internal/kv"
	"swimfit/backend/internal/qrcode"
	"swimfit/backend/internal/utils"
)

type Service struct {
	repo *Repo
	qr   *qrcode.Generator
	log  zerolog.Logger
	now  func() time.Time
}

func NewService(repo *Repo, qr *qrcode.Generator, log zerolog.Logger) *Service {
	return &Service{repo: repo, qr: qr, log: log, now: time.Now}
}

// SetClock replaces the time source. Tests use it to pin registration dates.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Service) Init(ctx context.Context) error {
	return s.repo.Init(ctx)
}

func (s *Service) Add(ctx context.Context, in AddClientInput) (*Client, error) {
	in.Trim()
	if err := utils.ValidateStruct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}

	now := s.now().UTC()
	c := Client{
		ID:               utils.NewID("client", now),
		Name:             in.Name,
		Email:            in.Email,
		Phone:            in.Phone,
		Notes:            in.Notes,
		RegistrationDate: now,
		IsActive:         true,
		PackageLimit:     in.PackageLimit,
	}
	if in.RegistrationDate != nil && !in.RegistrationDate.IsZero() {
		c.RegistrationDate = in.RegistrationDate.UTC()
	}

	identity, err := s.qr.Generate(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.QRData, c.QRCode = identity.Payload, identity.Image

	out, err := s.repo.Create(ctx, c)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("clientId", out.ID).Msg("client added")
	return out, nil
}

// Update merges the supplied fields onto the client. A client created before
// QR identities existed gets one here.
func (s *Service) Update(ctx context.Context, id string, in UpdateClientInput) (*Client, error) {
	in.Trim()
	if err := utils.ValidateStruct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := in.fields()
	if existing.QRCode == "" {
		identity, err := s.qr.Generate(ctx, id)
		if err != nil {
			return nil, err
		}
		updates["qrData"] = identity.Payload
		updates["qrCode"] = identity.Image
	}
	if len(updates) == 0 {
		return existing, nil
	}
	return s.repo.Update(ctx, id, updates)
}

func (s *Service) Get(ctx context.Context, id string) (*Client, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: missing client id", ErrBadRequest)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, in ListClientsInput) ([]Client, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Client, 0, len(all))
	for _, c := range all {
		if in.ActiveOnly && !c.IsActive {
			continue
		}
		if !utils.MatchesQuery(in.Query, c.Name, c.Email, c.Phone) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *Service) Deactivate(ctx context.Context, id string) (*Client, error) {
	active := false
	return s.Update(ctx, id, UpdateClientInput{IsActive: &active})
}

func (s *Service) Activate(ctx context.Context, id string) (*Client, error) {
	active := true
	return s.Update(ctx, id, UpdateClientInput{IsActive: &active})
}

// SetSessionCount writes the usage counter. The recorder owns the value; the
// counter is the only place attendance totals are stored.
func (s *Service) SetSessionCount(ctx context.Context, id string, n int) (*Client, error) {
	return s.repo.Update(ctx, id, kv.Document{"sessionCount": n})
}

// GenerateQRCode gives the client a QR identity if it has none. The bool
// reports whether one was generated.
func (s *Service) GenerateQRCode(ctx context.Context, id string) (*Client, bool, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if c.QRCode != "" {
		return c, false, nil
	}
	identity, err := s.qr.Generate(ctx, id)
	if err != nil {
		return nil, false, err
	}
	out, err := s.repo.Update(ctx, id, kv.Document{"qrData": identity.Payload, "qrCode": identity.Image})
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

func (s *Service) BackfillQRCodes(ctx context.Context) (QRStats, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return QRStats{}, err
	}
	stats := QRStats{Total: len(all)}
	for _, c := range all {
		if c.QRCode != "" {
			stats.Skipped++
			continue
		}
		if _, _, err := s.GenerateQRCode(ctx, c.ID); err != nil {
			return stats, fmt.Errorf("backfill %s: %w", c.ID, err)
		}
		stats.Updated++
	}
	s.log.Info().Int("total", stats.Total).Int("updated", stats.Updated).Int("skipped", stats.Skipped).Msg("qr backfill finished")
	return stats, nil
}

// CleanupNotes removes legacy attendance counts from client notes and
// returns how many clients changed.
func (s *Service) CleanupNotes(ctx context.Context) (int, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return 0, err
	}
	updated := 0
	for _, c := range all {
		clean, changed := CleanNotes(c.Notes)
		if !changed {
			continue
		}
		if _, err := s.repo.Update(ctx, c.ID, kv.Document{"notes": clean}); err != nil {
			return updated, err
		}
		s.log.Info().Str("clientId", c.ID).Msg("cleaned legacy attendance count from notes")
		updated++
	}
	return updated, nil
}
