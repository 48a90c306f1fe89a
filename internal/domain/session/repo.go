package session

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"swimfit/backend/internal/kv"
)

type Repo struct {
	store kv.Store
	log   zerolog.Logger
}

func NewRepo(store kv.Store, log zerolog.Logger) *Repo {
	return &Repo{store: store, log: log}
}

func (r *Repo) Init(ctx context.Context) error {
	return r.store.InitCollection(ctx, Collection, Headers)
}

func (r *Repo) Create(ctx context.Context, s Session) (*Session, error) {
	doc, err := r.store.Add(ctx, Collection, s.document())
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	out, err := fromDocument(doc)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Repo) Get(ctx context.Context, id string) (*Session, error) {
	doc, err := r.store.GetByID(ctx, Collection, id)
	if err != nil {
		if kv.IsErrNotFound(err) {
			return nil, fmt.Errorf("%w: session %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	s, err := fromDocument(doc)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// List returns sessions in store order; rows that fail to decode are logged
// and skipped.
func (r *Repo) List(ctx context.Context) ([]Session, error) {
	docs, err := r.store.GetAll(ctx, Collection)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	out := make([]Session, 0, len(docs))
	for _, doc := range docs {
		s, err := fromDocument(doc)
		if err != nil {
			r.log.Warn().Err(err).Str("sessionId", doc.ID()).Msg("skipping undecodable session")
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *Repo) Update(ctx context.Context, id string, updates kv.Document) (*Session, error) {
	doc, err := r.store.Update(ctx, Collection, id, updates)
	if err != nil {
		if kv.IsErrNotFound(err) {
			return nil, fmt.Errorf("%w: session %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to update session: %w", err)
	}
	s, err := fromDocument(doc)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Delete removes the session. The spreadsheet backend keeps a tombstone row;
// Firestore deletes the document.
func (r *Repo) Delete(ctx context.Context, id string) error {
	ok, err := r.store.Remove(ctx, Collection, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: session %s", ErrNotFound, id)
	}
	return nil
}
