package client

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

func (r *Repo) Create(ctx context.Context, c Client) (*Client, error) {
	doc, err := r.store.Add(ctx, Collection, c.document())
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	out, err := fromDocument(doc)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Repo) Get(ctx context.Context, id string) (*Client, error) {
	doc, err := r.store.GetByID(ctx, Collection, id)
	if err != nil {
		if kv.IsErrNotFound(err) {
			return nil, fmt.Errorf("%w: client %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	c, err := fromDocument(doc)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns every client that decodes. Rows that do not are logged and
// skipped so one hand-edited spreadsheet cell cannot hide the roster.
func (r *Repo) List(ctx context.Context) ([]Client, error) {
	docs, err := r.store.GetAll(ctx, Collection)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	out := make([]Client, 0, len(docs))
	for _, doc := range docs {
		c, err := fromDocument(doc)
		if err != nil {
			r.log.Warn().Err(err).Str("clientId", doc.ID()).Msg("skipping undecodable client")
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *Repo) Update(ctx context.Context, id string, updates kv.Document) (*Client, error) {
	doc, err := r.store.Update(ctx, Collection, id, updates)
	if err != nil {
		if kv.IsErrNotFound(err) {
			return nil, fmt.Errorf("%w: client %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to update client: %w", err)
	}
	c, err := fromDocument(doc)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
