// Package kv is the uniform document store used by every directory in the
// service. Collections are addressed by slash separated paths; odd segments
// name collections and even segments name documents, so
// "sessions/{sessionId}/attendance" is the attendance collection nested
// under one session.
package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

var (
	ErrNotFound    = errors.New("document not found")
	ErrInvalidPath = errors.New("invalid collection path")
	ErrStore       = errors.New("store failure")
)

func IsErrNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Document is one stored record. The document id lives under IDField.
type Document map[string]any

const IDField = "id"

// ID returns the document id, or "" when it is missing or not a string.
func (d Document) ID() string {
	id, _ := d[IDField].(string)
	return id
}

// Clone returns a shallow copy.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Store is implemented by every persistence backend.
type Store interface {
	// GetAll returns every live document in the collection.
	GetAll(ctx context.Context, path string) ([]Document, error)
	// GetByID returns ErrNotFound when the document does not exist.
	GetByID(ctx context.Context, path, id string) (Document, error)
	// Add stores doc, generating an id when doc has none, and returns the
	// stored document.
	Add(ctx context.Context, path string, doc Document) (Document, error)
	// Update merges fields into an existing document and returns the merged
	// result. It returns ErrNotFound when the document does not exist.
	Update(ctx context.Context, path, id string, fields Document) (Document, error)
	// Remove reports whether a document was removed.
	Remove(ctx context.Context, path, id string) (bool, error)
	// InitCollection prepares the collection for use. It is idempotent.
	InitCollection(ctx context.Context, path string, headers []string) error
}

// Join builds a collection path from segments.
func Join(segments ...string) string {
	return strings.Join(segments, "/")
}

// SplitPath validates path and returns its segments.
func SplitPath(path string) ([]string, error) {
	path = strings.Trim(strings.TrimSpace(path), "/")
	if path == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidPath)
	}
	segs := strings.Split(path, "/")
	if len(segs)%2 == 0 {
		return nil, fmt.Errorf("%w: %q points at a document, not a collection", ErrInvalidPath, path)
	}
	for _, s := range segs {
		if s == "" {
			return nil, fmt.Errorf("%w: %q has an empty segment", ErrInvalidPath, path)
		}
	}
	return segs, nil
}

// Compact drops nil values. Document stores reject absent values, so callers
// strip them before persisting.
func Compact(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		if v == nil {
			continue
		}
		out[k] = v
	}
	return out
}

// ListOrEmpty reads a collection and degrades any failure to an empty result,
// logging the error. Use it only where a partial view is acceptable.
func ListOrEmpty(ctx context.Context, s Store, path string, log zerolog.Logger) []Document {
	docs, err := s.GetAll(ctx, path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("collection read failed, using empty result")
		return []Document{}
	}
	return docs
}
