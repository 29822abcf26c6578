// Package seenset records which track identifiers have already been
// announced. Entries are never removed.
package seenset

import "context"

// Store is a durable, append-only set of track identifiers.
type Store interface {
	// Contains reports whether id has been recorded.
	Contains(ctx context.Context, id string) (bool, error)

	// Add records id. Adding a known id is a no-op.
	Add(ctx context.Context, id string) error

	// Len returns the number of recorded ids.
	Len(ctx context.Context) (int, error)

	// List returns every recorded id in insertion order.
	List(ctx context.Context) ([]string, error)

	Close() error
}
