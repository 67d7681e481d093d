// Package store provides the bounded question/response memory and its
// JSON-file and SQLite backends.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rcliao/monchatbot/internal/model"
)

// DefaultMaxSize is the default number of entries a store keeps.
const DefaultMaxSize = 100

// Store defines the memory storage interface.
//
// Entries are kept in insertion order, oldest first. After every mutation
// Len() <= MaxSize(); the oldest entries are evicted first.
type Store interface {
	// Entries returns a snapshot of the stored entries, oldest first.
	Entries(ctx context.Context) ([]model.Entry, error)

	// Append adds an entry at the end, evicts from the front past MaxSize
	// and persists. Persistence failures are logged, not returned, by the
	// JSON backend.
	Append(ctx context.Context, e model.Entry) error

	// Len returns the current number of entries.
	Len() int

	// MaxSize returns the eviction bound.
	MaxSize() int

	// Stats returns storage statistics.
	Stats(ctx context.Context) (*Stats, error)

	// Close releases backend resources.
	Close() error
}

// Options configures a store.
type Options struct {
	Path    string
	MaxSize int
}

func (o Options) maxSize() int {
	if o.MaxSize <= 0 {
		return DefaultMaxSize
	}
	return o.MaxSize
}

// capEntries keeps the newest max entries, preserving their order.
func capEntries(entries []model.Entry, max int) []model.Entry {
	if len(entries) <= max {
		return entries
	}
	kept := make([]model.Entry, max)
	copy(kept, entries[len(entries)-max:])
	return kept
}

// Open returns the store for the named backend: "json" (default) or "sqlite".
func Open(backend string, opts Options, logger *slog.Logger) (Store, error) {
	switch backend {
	case "", "json":
		return NewJSONStore(opts, logger), nil
	case "sqlite":
		s, err := NewSQLiteStore(opts, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown memory backend %q", backend)
	}
}
