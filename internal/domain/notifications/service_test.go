package notifications

import (
	"context"
	"errors"
	"testing"

	"firebase.google.com/go/v4/messaging"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swimfit/backend/internal/domain/client"
)

func limit(n int) *int { return &n }

func TestClassify(t *testing.T) {
	cases := []struct {
		count int
		limit *int
		pct   float64
		band  Band
	}{
		{0, limit(10), 0, BandOK},
		{6, limit(10), 60, BandOK},
		{7, limit(10), 70, BandApproaching},
		{8, limit(10), 80, BandApproaching},
		{9, limit(10), 90, BandCritical},
		{10, limit(10), 100, BandExceeded},
		{12, limit(10), 120, BandExceeded},
		{2, limit(3), 66.7, BandOK},
		{5, nil, 0, BandOK},
		{5, limit(0), 0, BandOK},
	}
	for _, tc := range cases {
		pct, band := Classify(tc.count, tc.limit)
		assert.Equal(t, tc.pct, pct)
		assert.Equal(t, tc.band, band)
	}
}

type fakeClients []client.Client

func (f fakeClients) List(_ context.Context, in client.ListClientsInput) ([]client.Client, error) {
	out := []client.Client{}
	for _, c := range f {
		if in.ActiveOnly && !c.IsActive {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

type fakePusher struct {
	sent []*messaging.Message
	err  error
}

func (p *fakePusher) Send(_ context.Context, m *messaging.Message) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	p.sent = append(p.sent, m)
	return "projects/p/messages/1", nil
}

func TestAlerts(t *testing.T) {
	svc := NewService(fakeClients{
		{ID: "c1", Name: "Emma", IsActive: true, SessionCount: 8, PackageLimit: limit(10)},
		{ID: "c2", Name: "Michael", IsActive: true, SessionCount: 2, PackageLimit: limit(10)},
		{ID: "c3", Name: "Sophia", IsActive: false, SessionCount: 10, PackageLimit: limit(10)},
		{ID: "c4", Name: "Liam", IsActive: true, SessionCount: 30},
		{ID: "c5", Name: "Noah", IsActive: true, SessionCount: 11, PackageLimit: limit(10)},
	}, zerolog.Nop())

	alerts, err := svc.Alerts(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, Usage{ClientID: "c1", ClientName: "Emma", SessionCount: 8, PackageLimit: 10, Percent: 80, Band: BandApproaching}, alerts[0])
	assert.Equal(t, BandExceeded, alerts[1].Band)
}

func TestNotifyUsage(t *testing.T) {
	p := &fakePusher{}
	svc := NewService(fakeClients{}, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, svc.NotifyUsage(ctx, client.Client{ID: "c1", SessionCount: 9, PackageLimit: limit(10)}))

	svc.SetPusher(p, "package-alerts")
	require.NoError(t, svc.NotifyUsage(ctx, client.Client{ID: "c2", SessionCount: 1, PackageLimit: limit(10)}))
	assert.Empty(t, p.sent)

	require.NoError(t, svc.NotifyUsage(ctx, client.Client{ID: "c1", Name: "Emma", SessionCount: 9, PackageLimit: limit(10)}))
	require.Len(t, p.sent, 1)
	msg := p.sent[0]
	assert.Equal(t, "package-alerts", msg.Topic)
	assert.Equal(t, "critical", msg.Data["band"])
	assert.Equal(t, "Emma has used 9 of 10 sessions (90%)", msg.Notification.Body)

	p.err = errors.New("unavailable")
	assert.Error(t, svc.NotifyUsage(ctx, client.Client{ID: "c1", SessionCount: 10, PackageLimit: limit(10)}))
}
