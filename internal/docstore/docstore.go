// Package docstore persists whole JSON documents by name.
//
// Every collection of the album lives in exactly one document which is read in
// full, mutated in memory and written back in full. Backends differ only in
// where the bytes end up.
package docstore

import (
	"context"
	"errors"
)

// ErrInvalidName is returned for document names that cannot be stored.
var ErrInvalidName = errors.New("invalid document name")

// Store loads and saves named JSON documents.
type Store interface {
	// Load decodes the named document into dst. When the document does not
	// exist yet dst is left untouched, so callers pass a default-shaped value.
	Load(ctx context.Context, name string, dst any) error
	// Save serializes doc and replaces the named document unconditionally.
	Save(ctx context.Context, name string, doc any) error
}

func validName(name string) bool {
	if name == "" || len(name) > 64 {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}
