package sheets

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swimfit/backend/internal/kv"
	"swimfit/backend/internal/kv/kvtest"
)

type fakeAPI struct {
	tabs    []string
	data    map[string][][]string
	readErr error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{data: map[string][][]string{}}
}

func (f *fakeAPI) Tabs(context.Context) ([]string, error) {
	return append([]string(nil), f.tabs...), nil
}

func (f *fakeAPI) AddTab(_ context.Context, title string) error {
	if _, ok := f.data[title]; ok {
		return fmt.Errorf("tab %q exists", title)
	}
	f.tabs = append(f.tabs, title)
	f.data[title] = nil
	return nil
}

func (f *fakeAPI) Read(_ context.Context, tab string) ([][]string, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	rows, ok := f.data[tab]
	if !ok {
		return nil, fmt.Errorf("unable to parse range: %s", tab)
	}
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append([]string(nil), r...)
	}
	return out, nil
}

func (f *fakeAPI) WriteRow(_ context.Context, tab string, row int, values []string) error {
	rows := f.data[tab]
	for len(rows) < row {
		rows = append(rows, nil)
	}
	rows[row-1] = append([]string(nil), values...)
	f.data[tab] = rows
	return nil
}

func (f *fakeAPI) AppendRow(_ context.Context, tab string, values []string) error {
	f.data[tab] = append(f.data[tab], append([]string(nil), values...))
	return nil
}

func TestSheetsConformance(t *testing.T) {
	kvtest.RunConformance(t, func(t *testing.T) kv.Store {
		return New(newFakeAPI())
	})
}

func TestBooleansAndTimesAreStoredAsText(t *testing.T) {
	api := newFakeAPI()
	s := New(api)
	ctx := context.Background()

	reg := time.Date(2025, 4, 10, 9, 0, 0, 0, time.UTC)
	_, err := s.Add(ctx, "clients", kv.Document{
		"id":               "c1",
		"isActive":         true,
		"registrationDate": reg,
		"packageLimit":     10,
	})
	require.NoError(t, err)

	doc, err := s.GetByID(ctx, "clients", "c1")
	require.NoError(t, err)
	assert.Equal(t, "TRUE", doc["isActive"])
	assert.Equal(t, "2025-04-10T09:00:00Z", doc["registrationDate"])
	assert.Equal(t, "10", doc["packageLimit"])

	_, err = s.Update(ctx, "clients", "c1", kv.Document{"isActive": false})
	require.NoError(t, err)
	doc, err = s.GetByID(ctx, "clients", "c1")
	require.NoError(t, err)
	assert.Equal(t, "FALSE", doc["isActive"])

	var decoded struct {
		Active bool      `json:"isActive"`
		Reg    time.Time `json:"registrationDate"`
		Limit  int       `json:"packageLimit"`
	}
	require.NoError(t, kv.Decode(doc, &decoded))
	assert.False(t, decoded.Active)
	assert.Equal(t, reg, decoded.Reg)
	assert.Equal(t, 10, decoded.Limit)
}

func TestRemoveLeavesTombstone(t *testing.T) {
	api := newFakeAPI()
	s := New(api)
	ctx := context.Background()

	_, err := s.Add(ctx, "sessions", kv.Document{"id": "s1", "name": "Lap Swim"})
	require.NoError(t, err)

	ok, err := s.Remove(ctx, "sessions", "s1")
	require.NoError(t, err)
	assert.True(t, ok)

	rows := api.data["sessions"]
	require.Len(t, rows, 2)
	assert.Equal(t, "s1_deleted", rows[1][0])
	assert.Contains(t, rows[1], "Lap Swim")
}

func TestHeaderGrowsWithNewFields(t *testing.T) {
	api := newFakeAPI()
	s := New(api)
	ctx := context.Background()

	require.NoError(t, s.InitCollection(ctx, "clients", []string{"name", "email"}))
	assert.Equal(t, []string{"id", "_parent", "name", "email"}, api.data["clients"][0])

	_, err := s.Add(ctx, "clients", kv.Document{"id": "c1", "name": "Emma", "qrCode": "swimfit:client:c1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "_parent", "name", "email", "qrCode"}, api.data["clients"][0])

	_, err = s.Update(ctx, "clients", "c1", kv.Document{"notes": "prefers mornings"})
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "_parent", "name", "email", "qrCode", "notes"}, api.data["clients"][0])

	doc, err := s.GetByID(ctx, "clients", "c1")
	require.NoError(t, err)
	assert.Equal(t, kv.Document{"id": "c1", "name": "Emma", "qrCode": "swimfit:client:c1", "notes": "prefers mornings"}, doc)
}

func TestNestedRowsCarryParent(t *testing.T) {
	api := newFakeAPI()
	s := New(api)
	ctx := context.Background()

	_, err := s.Add(ctx, "sessions/s1/attendance", kv.Document{"id": "a1", "clientId": "c1"})
	require.NoError(t, err)

	rows := api.data["attendance"]
	require.Len(t, rows, 2)
	assert.Equal(t, "sessions/s1", rows[1][1])

	flat, err := s.GetAll(ctx, "attendance")
	require.NoError(t, err)
	assert.Empty(t, flat)
}

func TestReadFailureIsReported(t *testing.T) {
	api := newFakeAPI()
	s := New(api)
	ctx := context.Background()

	_, err := s.Add(ctx, "clients", kv.Document{"id": "c1"})
	require.NoError(t, err)

	api.readErr = errors.New("rate limited")
	_, err = s.GetAll(ctx, "clients")
	assert.ErrorIs(t, err, kv.ErrStore)
}

func TestCell(t *testing.T) {
	assert.Equal(t, "TRUE", Cell(true))
	assert.Equal(t, "FALSE", Cell(false))
	assert.Equal(t, "", Cell(nil))
	assert.Equal(t, "12", Cell(int64(12)))
	assert.Equal(t, "1.5", Cell(1.5))
	assert.Equal(t, "[1,3,5]", Cell([]int{1, 3, 5}))
}
