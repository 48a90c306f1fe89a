package seed

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swimfit/backend/internal/domain/attendance"
	"swimfit/backend/internal/domain/client"
	"swimfit/backend/internal/domain/session"
	"swimfit/backend/internal/kv"
	"swimfit/backend/internal/qrcode"
)

func TestRun(t *testing.T) {
	store := kv.NewMemory()
	log := zerolog.Nop()
	codec := qrcode.NewCodec("")
	clients := client.NewService(client.NewRepo(store, log), qrcode.NewGenerator(codec, nil), log)
	sessions := session.NewService(session.NewRepo(store, log), log)
	recorder := attendance.NewService(attendance.NewRepo(store, log), clients, sessions, attendance.NewScanResolver(codec), log)
	ctx := context.Background()

	day := time.Date(2025, 4, 10, 12, 0, 0, 0, time.UTC)
	res, err := Run(ctx, clients, sessions, recorder, day)
	require.NoError(t, err)
	assert.Equal(t, []string{"Emma Johnson", "Michael Chen", "Sophia Rodriguez"}, res.Clients)
	assert.Len(t, res.Sessions, 3)
	assert.Equal(t, 3, res.Records)

	all, err := sessions.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, time.Date(2025, 4, 10, 7, 0, 0, 0, time.UTC), all[0].StartTime)
	assert.Equal(t, 8, all[0].MaxAttendees)

	roster, err := clients.List(ctx, client.ListClientsInput{})
	require.NoError(t, err)
	for _, c := range roster {
		assert.Equal(t, 1, c.SessionCount, c.Name)
	}
}
