package client

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swimfit/backend/internal/kv"
	"swimfit/backend/internal/qrcode"
)

var fixedNow = time.Date(2025, 4, 10, 10, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *kv.Memory) {
	t.Helper()
	store := kv.NewMemory()
	svc := NewService(NewRepo(store, zerolog.Nop()), qrcode.NewGenerator(qrcode.NewCodec(""), nil), zerolog.Nop())
	svc.SetClock(func() time.Time { return fixedNow })
	return svc, store
}

func intPtr(n int) *int { return &n }

func TestAddClient(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	c, err := svc.Add(ctx, AddClientInput{Name: "  Emma Johnson ", Email: "emma@example.com", PackageLimit: intPtr(10)})
	require.NoError(t, err)

	assert.Regexp(t, `^client_1744279200000_[0-9a-f]{7}$`, c.ID)
	assert.Equal(t, "Emma Johnson", c.Name)
	assert.True(t, c.IsActive)
	assert.Zero(t, c.SessionCount)
	assert.Equal(t, fixedNow, c.RegistrationDate)
	assert.Equal(t, "swimfit:client:"+c.ID, c.QRData)
	assert.True(t, strings.HasPrefix(c.QRCode, "data:image/png;base64,"))
	require.NotNil(t, c.PackageLimit)
	assert.Equal(t, 10, *c.PackageLimit)

	got, err := svc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestAddClientValidation(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, AddClientInput{Email: "x@example.com"})
	assert.True(t, IsErrBadRequest(err))

	_, err = svc.Add(ctx, AddClientInput{Name: "X", Email: "  "})
	assert.True(t, IsErrBadRequest(err))

	_, err = svc.Add(ctx, AddClientInput{Name: "X", Email: "x@example.com", PackageLimit: intPtr(0)})
	assert.True(t, IsErrBadRequest(err))

	docs, err := store.GetAll(ctx, Collection)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestUpdateClient(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	c, err := svc.Add(ctx, AddClientInput{Name: "Michael", Email: "m@example.com"})
	require.NoError(t, err)

	out, err := svc.Update(ctx, c.ID, UpdateClientInput{PackageLimit: intPtr(12)})
	require.NoError(t, err)
	require.NotNil(t, out.PackageLimit)
	assert.Equal(t, 12, *out.PackageLimit)
	assert.Equal(t, "Michael", out.Name)
	assert.Equal(t, c.QRCode, out.QRCode)

	_, err = svc.Update(ctx, c.ID, UpdateClientInput{PackageLimit: intPtr(0)})
	assert.True(t, IsErrBadRequest(err))

	_, err = svc.Update(ctx, c.ID, UpdateClientInput{PackageLimit: intPtr(-3)})
	assert.True(t, IsErrBadRequest(err))

	_, err = svc.Update(ctx, "client_missing", UpdateClientInput{PackageLimit: intPtr(5)})
	assert.True(t, IsErrNotFound(err))
}

func TestUpdateGeneratesMissingQRCode(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	_, err := store.Add(ctx, Collection, kv.Document{"id": "legacy_1", "name": "Old Timer", "email": "o@example.com", "isActive": "TRUE"})
	require.NoError(t, err)

	name := "Old Timer Sr"
	out, err := svc.Update(ctx, "legacy_1", UpdateClientInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "swimfit:client:legacy_1", out.QRData)
	assert.NotEmpty(t, out.QRCode)
	assert.Equal(t, name, out.Name)
}

func TestReadNormalizesSpreadsheetValues(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	_, err := store.Add(ctx, Collection, kv.Document{
		"id":               "c1",
		"name":             "Sophia",
		"isActive":         "FALSE",
		"sessionCount":     "3",
		"packageLimit":     "10",
		"registrationDate": "2025-03-20T00:00:00.000Z",
	})
	require.NoError(t, err)

	c, err := svc.Get(ctx, "c1")
	require.NoError(t, err)
	assert.False(t, c.IsActive)
	assert.Equal(t, 3, c.SessionCount)
	assert.Equal(t, 10, *c.PackageLimit)
	assert.Equal(t, time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC), c.RegistrationDate)
}

func TestListFilters(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	emma, err := svc.Add(ctx, AddClientInput{Name: "Emma Johnson", Email: "emma@example.com"})
	require.NoError(t, err)
	_, err = svc.Add(ctx, AddClientInput{Name: "Michael Chen", Email: "michael@example.com"})
	require.NoError(t, err)
	zoe, err := svc.Add(ctx, AddClientInput{Name: "Zoë Rodriguez", Email: "zoe@example.com"})
	require.NoError(t, err)
	_, err = svc.Deactivate(ctx, zoe.ID)
	require.NoError(t, err)

	all, err := svc.List(ctx, ListClientsInput{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	active, err := svc.List(ctx, ListClientsInput{ActiveOnly: true})
	require.NoError(t, err)
	assert.Len(t, active, 2)

	found, err := svc.List(ctx, ListClientsInput{Query: "zoe"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.False(t, found[0].IsActive)

	found, err = svc.List(ctx, ListClientsInput{Query: "JOHN"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, emma.ID, found[0].ID)

	_, err = svc.Activate(ctx, zoe.ID)
	require.NoError(t, err)
	active, err = svc.List(ctx, ListClientsInput{ActiveOnly: true})
	require.NoError(t, err)
	assert.Len(t, active, 3)
}

func TestSetSessionCount(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	c, err := svc.Add(ctx, AddClientInput{Name: "Emma", Email: "e@example.com"})
	require.NoError(t, err)

	out, err := svc.SetSessionCount(ctx, c.ID, 8)
	require.NoError(t, err)
	assert.Equal(t, 8, out.SessionCount)

	_, err = svc.SetSessionCount(ctx, "nobody", 1)
	assert.True(t, IsErrNotFound(err))
}

func TestQRBackfill(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, AddClientInput{Name: "Has Code", Email: "a@example.com"})
	require.NoError(t, err)
	for _, id := range []string{"old_1", "old_2"} {
		_, err := store.Add(ctx, Collection, kv.Document{"id": id, "name": id, "email": id + "@example.com"})
		require.NoError(t, err)
	}

	stats, err := svc.BackfillQRCodes(ctx)
	require.NoError(t, err)
	assert.Equal(t, QRStats{Total: 3, Updated: 2, Skipped: 1}, stats)

	stats, err = svc.BackfillQRCodes(ctx)
	require.NoError(t, err)
	assert.Equal(t, QRStats{Total: 3, Updated: 0, Skipped: 3}, stats)

	c, generated, err := svc.GenerateQRCode(ctx, "old_1")
	require.NoError(t, err)
	assert.False(t, generated)
	assert.Equal(t, "swimfit:client:old_1", c.QRData)

	_, _, err = svc.GenerateQRCode(ctx, "missing")
	assert.True(t, IsErrNotFound(err))
}

func TestCleanNotes(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		changed bool
	}{
		{"Intermediate swimmer", "Intermediate swimmer", false},
		{"Sessions attended: 4", "", true},
		{"Intermediate swimmer | Sessions attended: 4", "Intermediate swimmer", true},
		{"Sessions attended: 12 | Prefers mornings", "Prefers mornings", true},
		{"", "", false},
	}
	for _, tc := range cases {
		got, changed := CleanNotes(tc.in)
		assert.Equal(t, tc.want, got, tc.in)
		assert.Equal(t, tc.changed, changed, tc.in)
	}
}

func TestCleanupNotes(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	_, err := store.Add(ctx, Collection, kv.Document{"id": "c1", "name": "A", "notes": "Beginner | Sessions attended: 3"})
	require.NoError(t, err)
	_, err = store.Add(ctx, Collection, kv.Document{"id": "c2", "name": "B", "notes": "Advanced"})
	require.NoError(t, err)

	n, err := svc.CleanupNotes(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	c, err := svc.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Beginner", c.Notes)

	n, err = svc.CleanupNotes(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
