package kv_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swimfit/backend/internal/kv"
	"swimfit/backend/internal/kv/kvtest"
)

func TestMemoryConformance(t *testing.T) {
	kvtest.RunConformance(t, func(t *testing.T) kv.Store {
		return kv.NewMemory()
	})
}

func TestMemoryFailureIsMarked(t *testing.T) {
	m := kv.NewMemory()
	boom := errors.New("quota exceeded")
	m.FailWith(func(op, path string) error {
		if op == "add" {
			return boom
		}
		return nil
	})

	_, err := m.Add(context.Background(), "clients", kv.Document{"name": "x"})
	assert.ErrorIs(t, err, kv.ErrStore)
	assert.ErrorIs(t, err, boom)

	_, err = m.GetAll(context.Background(), "clients")
	assert.NoError(t, err)
}

func TestListOrEmptyDegradesReadFailure(t *testing.T) {
	m := kv.NewMemory()
	_, err := m.Add(context.Background(), "clients", kv.Document{"id": "c1"})
	require.NoError(t, err)

	m.FailWith(func(op, path string) error { return errors.New("unavailable") })
	docs := kv.ListOrEmpty(context.Background(), m, "clients", zerolog.Nop())
	assert.NotNil(t, docs)
	assert.Empty(t, docs)

	m.FailWith(nil)
	docs = kv.ListOrEmpty(context.Background(), m, "clients", zerolog.Nop())
	assert.Len(t, docs, 1)
}
