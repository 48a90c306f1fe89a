package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 4, 10, 10, 0, 0, 0, time.UTC)

func at(h, m int) time.Time {
	return time.Date(2025, 4, 10, h, m, 0, 0, time.UTC)
}

func sess(id string, start, end time.Time) Session {
	return Session{ID: id, Name: id, StartTime: start, EndTime: end}
}

func TestResolveCurrent(t *testing.T) {
	sessions := []Session{
		sess("early", at(7, 0), at(8, 0)),
		sess("now", at(9, 30), at(10, 30)),
		sess("later", at(16, 0), at(17, 30)),
	}
	res, ok := Resolve(sessions, "later", now)
	require.True(t, ok)
	assert.Equal(t, RuleCurrent, res.Rule)
	assert.Equal(t, "now", res.Session.ID)
}

func TestResolveCurrentIncludesBoundaries(t *testing.T) {
	res, ok := Resolve([]Session{sess("edge", at(9, 0), at(10, 0))}, "", now)
	require.True(t, ok)
	assert.Equal(t, RuleCurrent, res.Rule)

	res, ok = Resolve([]Session{sess("edge", at(10, 0), at(11, 0))}, "", now)
	require.True(t, ok)
	assert.Equal(t, RuleCurrent, res.Rule)
}

func TestResolveOverlapTakesListOrder(t *testing.T) {
	sessions := []Session{
		sess("b", at(9, 45), at(10, 45)),
		sess("a", at(9, 0), at(11, 0)),
	}
	res, ok := Resolve(sessions, "", now)
	require.True(t, ok)
	assert.Equal(t, "b", res.Session.ID)
}

func TestResolveSelected(t *testing.T) {
	sessions := []Session{
		sess("stale", time.Date(2025, 3, 1, 7, 0, 0, 0, time.UTC), time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)),
		sess("recent", at(7, 0), at(9, 0)),
	}
	res, ok := Resolve(sessions, "stale", now)
	require.True(t, ok)
	assert.Equal(t, RuleSelected, res.Rule)
	assert.Equal(t, "stale", res.Session.ID)
}

func TestResolveUnknownSelectionFallsThrough(t *testing.T) {
	sessions := []Session{sess("recent", at(7, 0), at(9, 0))}
	res, ok := Resolve(sessions, "deleted", now)
	require.True(t, ok)
	assert.Equal(t, RuleRecentlyEnded, res.Rule)
}

func TestResolveRecentlyEnded(t *testing.T) {
	sessions := []Session{
		sess("two-hours-ago", at(7, 0), at(8, 0)),
		sess("just-ended", at(8, 0), at(9, 30)),
		sess("long-ago", at(5, 0), at(6, 0)),
		sess("upcoming", at(16, 0), at(17, 0)),
	}
	res, ok := Resolve(sessions, "", now)
	require.True(t, ok)
	assert.Equal(t, RuleRecentlyEnded, res.Rule)
	assert.Equal(t, "just-ended", res.Session.ID)
}

func TestResolveRecentWindowIsInclusive(t *testing.T) {
	res, ok := Resolve([]Session{sess("edge", at(7, 0), at(8, 0)), sess("upcoming", at(12, 0), at(13, 0))}, "", now)
	require.True(t, ok)
	assert.Equal(t, RuleRecentlyEnded, res.Rule)
	assert.Equal(t, "edge", res.Session.ID)
}

func TestResolveUpcoming(t *testing.T) {
	sessions := []Session{
		sess("evening", at(16, 0), at(17, 30)),
		sess("noon", at(12, 0), at(13, 0)),
		sess("morning", at(5, 0), at(6, 0)),
	}
	res, ok := Resolve(sessions, "", now)
	require.True(t, ok)
	assert.Equal(t, RuleUpcoming, res.Rule)
	assert.Equal(t, "noon", res.Session.ID)
}

func TestResolveMostRecent(t *testing.T) {
	sessions := []Session{
		sess("march", time.Date(2025, 3, 1, 7, 0, 0, 0, time.UTC), time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)),
		sess("april", time.Date(2025, 4, 1, 7, 0, 0, 0, time.UTC), time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)),
		sess("january", time.Date(2025, 1, 1, 7, 0, 0, 0, time.UTC), time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)),
	}
	res, ok := Resolve(sessions, "", now)
	require.True(t, ok)
	assert.Equal(t, RuleMostRecent, res.Rule)
	assert.Equal(t, "april", res.Session.ID)
}

func TestResolveNone(t *testing.T) {
	_, ok := Resolve(nil, "anything", now)
	assert.False(t, ok)
}

func TestResolveRecurringToday(t *testing.T) {
	// First ran on Thursday 2025-04-03; now is Thursday 2025-04-10.
	weekly := Session{
		ID:           "weekly",
		StartTime:    time.Date(2025, 4, 3, 9, 30, 0, 0, time.UTC),
		EndTime:      time.Date(2025, 4, 3, 10, 30, 0, 0, time.UTC),
		IsRecurring:  true,
		SelectedDays: []int{int(time.Thursday)},
	}
	res, ok := Resolve([]Session{sess("old", at(5, 0), at(6, 0)), weekly}, "", now)
	require.True(t, ok)
	assert.Equal(t, RuleCurrent, res.Rule)
	assert.Equal(t, "weekly", res.Session.ID)
	assert.Equal(t, at(9, 30), res.Session.StartTime)
	assert.Equal(t, at(10, 30), res.Session.EndTime)
}

func TestOccurrenceOn(t *testing.T) {
	monWed := Session{
		ID:           "mw",
		StartTime:    time.Date(2025, 4, 7, 18, 0, 0, 0, time.UTC), // Monday
		EndTime:      time.Date(2025, 4, 7, 19, 0, 0, 0, time.UTC),
		IsRecurring:  true,
		SelectedDays: []int{1, 3},
	}
	end := time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC)
	monWed.RecurringEndDate = &end

	occ, ok := monWed.OccurrenceOn(time.Date(2025, 4, 9, 8, 0, 0, 0, time.UTC)) // Wednesday
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 4, 9, 18, 0, 0, 0, time.UTC), occ.StartTime)
	assert.Equal(t, time.Date(2025, 4, 9, 19, 0, 0, 0, time.UTC), occ.EndTime)

	_, ok = monWed.OccurrenceOn(time.Date(2025, 4, 10, 8, 0, 0, 0, time.UTC)) // Thursday
	assert.False(t, ok)

	_, ok = monWed.OccurrenceOn(time.Date(2025, 3, 31, 8, 0, 0, 0, time.UTC)) // Monday before first run
	assert.False(t, ok)

	_, ok = monWed.OccurrenceOn(time.Date(2025, 5, 5, 8, 0, 0, 0, time.UTC)) // Monday after end
	assert.False(t, ok)

	once := sess("once", at(7, 0), at(8, 0))
	_, ok = once.OccurrenceOn(at(20, 0))
	assert.True(t, ok)
	_, ok = once.OccurrenceOn(at(20, 0).AddDate(0, 0, 7))
	assert.False(t, ok)
}
