// Package blob defines the namespaced key-value blob store the analytics
// pipeline persists into, and its Redis-backed implementation.
package blob

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Get when no value exists for the key.
	ErrNotFound = errors.New("blob: key not found")

	// ErrConflict is returned by Update when the optimistic write could
	// not be committed after the configured number of retries.
	ErrConflict = errors.New("blob: concurrent modification, retries exhausted")
)

// UpdateFunc transforms the current value of a key into its next value.
// old is nil when the key does not exist yet.
type UpdateFunc func(old []byte) ([]byte, error)

// Store is a namespaced blob store with list/get/put/delete and an
// optimistic read-modify-write primitive. Keys are plain strings; prefix
// queries use the same strings. Deleting a missing key is a no-op.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, key string) error

	// Update atomically replaces the value at key with fn's result. The
	// implementation retries on write conflicts; fn may therefore run
	// more than once and must be side-effect free.
	Update(ctx context.Context, key string, fn UpdateFunc) error
}
