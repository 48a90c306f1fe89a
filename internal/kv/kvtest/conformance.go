// Package kvtest holds the behaviour every kv.Store must share. Each adapter
// runs RunConformance against a fresh instance so the directories above the
// store never see backend specific shapes.
package kvtest

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swimfit/backend/internal/kv"
)

// Factory returns an empty store. It is called once per subtest.
type Factory func(t *testing.T) kv.Store

func RunConformance(t *testing.T, newStore Factory) {
	t.Helper()
	ctx := context.Background()

	t.Run("add assigns id when missing", func(t *testing.T) {
		s := newStore(t)
		doc, err := s.Add(ctx, "clients", kv.Document{"name": "Emma"})
		require.NoError(t, err)
		require.NotEmpty(t, doc.ID())

		got, err := s.GetByID(ctx, "clients", doc.ID())
		require.NoError(t, err)
		assert.Equal(t, "Emma", got["name"])
		assert.Equal(t, doc.ID(), got.ID())
	})

	t.Run("add keeps supplied id", func(t *testing.T) {
		s := newStore(t)
		doc, err := s.Add(ctx, "clients", kv.Document{"id": "client_1", "name": "Michael"})
		require.NoError(t, err)
		assert.Equal(t, "client_1", doc.ID())

		got, err := s.GetByID(ctx, "clients", "client_1")
		require.NoError(t, err)
		assert.Equal(t, "Michael", got["name"])
	})

	t.Run("get missing document", func(t *testing.T) {
		s := newStore(t)
		_, err := s.GetByID(ctx, "clients", "nobody")
		assert.ErrorIs(t, err, kv.ErrNotFound)
	})

	t.Run("get all on empty collection", func(t *testing.T) {
		s := newStore(t)
		docs, err := s.GetAll(ctx, "sessions")
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("get all returns every document", func(t *testing.T) {
		s := newStore(t)
		for _, id := range []string{"a", "b", "c"} {
			_, err := s.Add(ctx, "sessions", kv.Document{"id": id, "name": "session " + id})
			require.NoError(t, err)
		}
		docs, err := s.GetAll(ctx, "sessions")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"a", "b", "c"}, ids(docs))
	})

	t.Run("update merges fields", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Add(ctx, "clients", kv.Document{"id": "c1", "name": "Sophia", "email": "s@example.com"})
		require.NoError(t, err)

		merged, err := s.Update(ctx, "clients", "c1", kv.Document{"email": "sophia@example.com", "phone": "555"})
		require.NoError(t, err)
		assert.Equal(t, "Sophia", merged["name"])
		assert.Equal(t, "sophia@example.com", merged["email"])
		assert.Equal(t, "555", merged["phone"])

		got, err := s.GetByID(ctx, "clients", "c1")
		require.NoError(t, err)
		assert.Equal(t, "sophia@example.com", got["email"])
		assert.Equal(t, "Sophia", got["name"])
	})

	t.Run("update missing document", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Update(ctx, "clients", "ghost", kv.Document{"name": "x"})
		assert.ErrorIs(t, err, kv.ErrNotFound)

		_, err = s.GetByID(ctx, "clients", "ghost")
		assert.ErrorIs(t, err, kv.ErrNotFound)
	})

	t.Run("remove", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Add(ctx, "sessions", kv.Document{"id": "s1", "name": "Lap Swim"})
		require.NoError(t, err)
		_, err = s.Add(ctx, "sessions", kv.Document{"id": "s2", "name": "Technique"})
		require.NoError(t, err)

		ok, err := s.Remove(ctx, "sessions", "s1")
		require.NoError(t, err)
		assert.True(t, ok)

		_, err = s.GetByID(ctx, "sessions", "s1")
		assert.ErrorIs(t, err, kv.ErrNotFound)

		docs, err := s.GetAll(ctx, "sessions")
		require.NoError(t, err)
		assert.Equal(t, []string{"s2"}, ids(docs))

		ok, err = s.Remove(ctx, "sessions", "s1")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("nested collections are separate from flat ones", func(t *testing.T) {
		s := newStore(t)
		nested := kv.Join("sessions", "s1", "attendance")
		other := kv.Join("sessions", "s2", "attendance")

		_, err := s.Add(ctx, "attendance", kv.Document{"id": "legacy", "clientId": "c1", "sessionId": "s1"})
		require.NoError(t, err)
		_, err = s.Add(ctx, nested, kv.Document{"id": "n1", "clientId": "c1", "sessionId": "s1"})
		require.NoError(t, err)
		_, err = s.Add(ctx, other, kv.Document{"id": "n2", "clientId": "c2", "sessionId": "s2"})
		require.NoError(t, err)

		flat, err := s.GetAll(ctx, "attendance")
		require.NoError(t, err)
		assert.Equal(t, []string{"legacy"}, ids(flat))

		got, err := s.GetAll(ctx, nested)
		require.NoError(t, err)
		assert.Equal(t, []string{"n1"}, ids(got))
		assert.Equal(t, "c1", got[0]["clientId"])

		doc, err := s.GetByID(ctx, other, "n2")
		require.NoError(t, err)
		assert.Equal(t, "c2", doc["clientId"])

		_, err = s.GetByID(ctx, nested, "n2")
		assert.ErrorIs(t, err, kv.ErrNotFound)
	})

	t.Run("invalid path", func(t *testing.T) {
		s := newStore(t)
		_, err := s.GetAll(ctx, "sessions/s1")
		assert.ErrorIs(t, err, kv.ErrInvalidPath)
	})

	t.Run("init collection is idempotent", func(t *testing.T) {
		s := newStore(t)
		headers := []string{"id", "name"}
		require.NoError(t, s.InitCollection(ctx, "clients", headers))
		require.NoError(t, s.InitCollection(ctx, "clients", headers))

		docs, err := s.GetAll(ctx, "clients")
		require.NoError(t, err)
		assert.Empty(t, docs)
	})
}

func ids(docs []kv.Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ID())
	}
	sort.Strings(out)
	return out
}
