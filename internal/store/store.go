// Package store defines the persistence boundary for save slots and the
// leaderboard: a flat key-value store holding JSON documents.
// Implementations include SQLite (local default), PostgreSQL, Redis, a Redis
// read-through cache in front of either SQL store, and in-memory (for
// testing).
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no value is stored under a key.
var ErrNotFound = errors.New("store: key not found")

// Store is the key-value interface. A Put replaces the whole value
// atomically; readers never observe a partially written record.
type Store interface {
	// Get returns the value stored under key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys returns every key starting with prefix, sorted.
	Keys(ctx context.Context, prefix string) ([]string, error)
}
