package app

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swimfit/backend/internal/config"
	"swimfit/backend/internal/domain/attendance"
	"swimfit/backend/internal/domain/client"
	"swimfit/backend/internal/domain/retention"
)

func TestNewWithMemoryBackend(t *testing.T) {
	cfg := config.Config{StoreBackend: config.BackendMemory, QRNamespace: "swimfit"}
	a, err := New(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer a.Close()
	assert.Nil(t, a.Firebase)

	ctx := context.Background()
	require.NoError(t, a.InitCollections(ctx))

	c, err := a.Clients.Add(ctx, client.AddClientInput{Name: "Emma", Email: "emma@example.com"})
	require.NoError(t, err)
	res, err := a.Attendance.CheckIn(ctx, attendance.CheckInInput{Payload: c.QRData})
	require.NoError(t, err)
	assert.True(t, res.SessionCreated)

	st, err := a.Stats.StudioStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Attendance.Total)
	assert.Equal(t, 1, st.Sessions.AdHoc)

	sum, err := a.Retention.Alerts(ctx, retention.DefaultSettings())
	require.NoError(t, err)
	assert.Empty(t, sum.Alerts)
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(context.Background(), config.Config{StoreBackend: "postgres", QRNamespace: "swimfit"}, zerolog.Nop())
	assert.Error(t, err)

	_, err = New(context.Background(), config.Config{StoreBackend: config.BackendSheets, QRNamespace: "swimfit"}, zerolog.Nop())
	assert.ErrorContains(t, err, "GOOGLE_SHEET_ID")
}
