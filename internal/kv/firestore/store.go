// Package firestore implements kv.Store on Cloud Firestore. Nested paths map
// onto real sub-collections and Remove deletes the document.
package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"swimfit/backend/internal/kv"
)

type Store struct {
	fs     *firestore.Client
	prefix string
}

type Option func(*Store)

// WithCollectionPrefix prefixes every top-level collection name. Tests use it
// to isolate runs that share one emulator.
func WithCollectionPrefix(prefix string) Option {
	return func(s *Store) { s.prefix = prefix }
}

func New(fs *firestore.Client, opts ...Option) *Store {
	s := &Store{fs: fs}
	for _, o := range opts {
		o(s)
	}
	return s
}

var _ kv.Store = (*Store)(nil)

func (s *Store) collection(path string) (*firestore.CollectionRef, error) {
	segs, err := kv.SplitPath(path)
	if err != nil {
		return nil, err
	}
	c := s.fs.Collection(s.prefix + segs[0])
	for i := 1; i+1 < len(segs); i += 2 {
		c = c.Doc(segs[i]).Collection(segs[i+1])
	}
	return c, nil
}

func (s *Store) GetAll(ctx context.Context, path string) ([]kv.Document, error) {
	c, err := s.collection(path)
	if err != nil {
		return nil, err
	}

	iter := c.Documents(ctx)
	defer iter.Stop()

	out := []kv.Document{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, kv.WrapStore(fmt.Errorf("list %s: %w", path, err))
		}
		out = append(out, fromSnapshot(snap))
	}
	return out, nil
}

func (s *Store) GetByID(ctx context.Context, path, id string) (kv.Document, error) {
	c, err := s.collection(path)
	if err != nil {
		return nil, err
	}
	snap, err := c.Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("%w: %s/%s", kv.ErrNotFound, path, id)
		}
		return nil, kv.WrapStore(fmt.Errorf("get %s/%s: %w", path, id, err))
	}
	return fromSnapshot(snap), nil
}

func (s *Store) Add(ctx context.Context, path string, doc kv.Document) (kv.Document, error) {
	c, err := s.collection(path)
	if err != nil {
		return nil, err
	}

	data := kv.Compact(doc)
	var ref *firestore.DocumentRef
	if id := data.ID(); id != "" {
		ref = c.Doc(id)
	} else {
		ref = c.NewDoc()
		data[kv.IDField] = ref.ID
	}

	if _, err := ref.Set(ctx, map[string]interface{}(data)); err != nil {
		return nil, kv.WrapStore(fmt.Errorf("add %s: %w", path, err))
	}
	return data, nil
}

func (s *Store) Update(ctx context.Context, path, id string, fields kv.Document) (kv.Document, error) {
	c, err := s.collection(path)
	if err != nil {
		return nil, err
	}
	ref := c.Doc(id)

	if _, err := s.GetByID(ctx, path, id); err != nil {
		return nil, err
	}

	updates := kv.Compact(fields)
	delete(updates, kv.IDField)
	if len(updates) > 0 {
		if _, err := ref.Set(ctx, map[string]interface{}(updates), firestore.MergeAll); err != nil {
			return nil, kv.WrapStore(fmt.Errorf("update %s/%s: %w", path, id, err))
		}
	}
	return s.GetByID(ctx, path, id)
}

func (s *Store) Remove(ctx context.Context, path, id string) (bool, error) {
	c, err := s.collection(path)
	if err != nil {
		return false, err
	}
	if _, err := s.GetByID(ctx, path, id); err != nil {
		if kv.IsErrNotFound(err) {
			return false, nil
		}
		return false, err
	}
	if _, err := c.Doc(id).Delete(ctx); err != nil {
		return false, kv.WrapStore(fmt.Errorf("delete %s/%s: %w", path, id, err))
	}
	return true, nil
}

// InitCollection only validates the path; Firestore creates collections on
// first write.
func (s *Store) InitCollection(_ context.Context, path string, _ []string) error {
	_, err := s.collection(path)
	return err
}

func fromSnapshot(snap *firestore.DocumentSnapshot) kv.Document {
	doc := kv.Document(snap.Data())
	if doc == nil {
		doc = kv.Document{}
	}
	if doc.ID() == "" {
		doc[kv.IDField] = snap.Ref.ID
	}
	return doc
}
