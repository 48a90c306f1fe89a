package kv

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-process Store. It backs local runs (STORE_BACKEND=memory)
// and tests.
type Memory struct {
	mu     sync.Mutex
	cols   map[string]*memCollection
	failFn func(op, path string) error
}

type memCollection struct {
	order []string
	docs  map[string]Document
}

func NewMemory() *Memory {
	return &Memory{cols: map[string]*memCollection{}}
}

func (m *Memory) col(path string, create bool) (*memCollection, error) {
	segs, err := SplitPath(path)
	if err != nil {
		return nil, err
	}
	key := Join(segs...)
	c, ok := m.cols[key]
	if !ok && create {
		c = &memCollection{docs: map[string]Document{}}
		m.cols[key] = c
	}
	return c, nil
}

// FailWith installs a hook that can make any operation fail. op is one of
// "getAll", "getById", "add", "update", "remove" or "init". A nil hook
// clears it.
func (m *Memory) FailWith(fn func(op, path string) error) {
	m.mu.Lock()
	m.failFn = fn
	m.mu.Unlock()
}

func (m *Memory) failure(op, path string) error {
	if m.failFn == nil {
		return nil
	}
	return WrapStore(m.failFn(op, path))
}

func (m *Memory) GetAll(_ context.Context, path string) ([]Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("getAll", path); err != nil {
		return nil, err
	}
	c, err := m.col(path, false)
	if err != nil {
		return nil, err
	}
	out := []Document{}
	if c == nil {
		return out, nil
	}
	for _, id := range c.order {
		out = append(out, c.docs[id].Clone())
	}
	return out, nil
}

func (m *Memory) GetByID(_ context.Context, path, id string) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("getById", path); err != nil {
		return nil, err
	}
	c, err := m.col(path, false)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}
	doc, ok := c.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return doc.Clone(), nil
}

func (m *Memory) Add(_ context.Context, path string, doc Document) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("add", path); err != nil {
		return nil, err
	}
	c, err := m.col(path, true)
	if err != nil {
		return nil, err
	}
	stored := doc.Clone()
	id := stored.ID()
	if id == "" {
		id = uuid.NewString()
		stored[IDField] = id
	}
	if _, exists := c.docs[id]; !exists {
		c.order = append(c.order, id)
	}
	c.docs[id] = stored
	return stored.Clone(), nil
}

func (m *Memory) Update(_ context.Context, path, id string, fields Document) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("update", path); err != nil {
		return nil, err
	}
	c, err := m.col(path, false)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}
	doc, ok := c.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	for k, v := range fields {
		if k == IDField {
			continue
		}
		doc[k] = v
	}
	return doc.Clone(), nil
}

func (m *Memory) Remove(_ context.Context, path, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("remove", path); err != nil {
		return false, err
	}
	c, err := m.col(path, false)
	if err != nil {
		return false, err
	}
	if c == nil {
		return false, nil
	}
	if _, ok := c.docs[id]; !ok {
		return false, nil
	}
	delete(c.docs, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true, nil
}

func (m *Memory) InitCollection(_ context.Context, path string, _ []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("init", path); err != nil {
		return err
	}
	_, err := m.col(path, true)
	return err
}

// WrapStore marks err as a backend failure.
func WrapStore(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrStore, err)
}
