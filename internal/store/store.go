// Package store adapts the remote key-value backend that holds every
// persisted collection. Values are opaque byte slices, JSON by convention.
package store

import (
	"context"
	"errors"
)

// Logical keys used by the application.
const (
	KeyUsers   = "users"
	KeyPending = "pending"
)

var (
	ErrNotFound = errors.New("store: key not found")
	ErrConflict = errors.New("store: too many concurrent modifications")
)

// Txn is the view of the store inside Update. Reads observe the committed
// state of the watched keys; writes are buffered until the update commits.
type Txn interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte)
}

// Store is the adapter every service depends on.
type Store interface {
	// Get returns the raw value under key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Update runs fn against the given keys and commits its writes atomically.
	// If another writer changes a key in between, fn is retried.
	Update(ctx context.Context, fn func(Txn) error, keys ...string) error
	Ping(ctx context.Context) error
	Close() error
}

// DataKey returns the key holding a record collection.
func DataKey(table string) string {
	return "data_" + table
}
