package attendance

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"swimfit/backend/internal/domain/session"
	"swimfit/backend/internal/kv"
)

// maxParallelReads bounds the per-session sub-collection reads in ListAll.
const maxParallelReads = 8

type Repo struct {
	store kv.Store
	log   zerolog.Logger
}

func NewRepo(store kv.Store, log zerolog.Logger) *Repo {
	return &Repo{store: store, log: log}
}

func (r *Repo) Init(ctx context.Context) error {
	return r.store.InitCollection(ctx, LegacyCollection, Headers)
}

// Create writes a record under its session.
func (r *Repo) Create(ctx context.Context, rec Record) (*Record, error) {
	doc, err := r.store.Add(ctx, SessionPath(rec.SessionID), rec.document())
	if err != nil {
		return nil, fmt.Errorf("failed to create attendance: %w", err)
	}
	out, err := fromDocument(doc)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListAll merges the legacy flat collection with every session's
// sub-collection. A sub-collection that cannot be read is logged and left
// out; failing to read the flat collection or the session list is an error.
func (r *Repo) ListAll(ctx context.Context) ([]Record, error) {
	flat, err := r.store.GetAll(ctx, LegacyCollection)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	sessions, err := r.store.GetAll(ctx, session.Collection)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	var (
		mu     sync.Mutex
		nested = make([][]kv.Document, len(sessions))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelReads)
	for i, s := range sessions {
		i := i
		id := s.ID()
		if id == "" {
			continue
		}
		g.Go(func() error {
			docs := kv.ListOrEmpty(gctx, r.store, SessionPath(id), r.log)
			mu.Lock()
			nested[i] = docs
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := r.decodeAll(flat)
	for _, docs := range nested {
		out = append(out, r.decodeAll(docs)...)
	}
	return out, nil
}

// ListBySession returns a session's records, including legacy flat records
// that point at it.
func (r *Repo) ListBySession(ctx context.Context, sessionID string) ([]Record, error) {
	docs, err := r.store.GetAll(ctx, SessionPath(sessionID))
	if err != nil {
		return nil, fmt.Errorf("failed to list session attendance: %w", err)
	}
	out := r.decodeAll(docs)

	for _, rec := range r.decodeAll(kv.ListOrEmpty(ctx, r.store, LegacyCollection, r.log)) {
		if rec.SessionID == sessionID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *Repo) ListByClient(ctx context.Context, clientID string) ([]Record, error) {
	all, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := []Record{}
	for _, rec := range all {
		if rec.ClientID == clientID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *Repo) decodeAll(docs []kv.Document) []Record {
	out := make([]Record, 0, len(docs))
	for _, doc := range docs {
		rec, err := fromDocument(doc)
		if err != nil {
			r.log.Warn().Err(err).Str("attendanceId", doc.ID()).Msg("skipping undecodable attendance")
			continue
		}
		out = append(out, rec)
	}
	return out
}
