// Package store persists conversation state through pluggable key-value
// backends: in memory, one JSON file per key, or a SQLite table. EventLog
// stores a conversation's events in order on top of any of them.
package store

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrInvalidKey is returned for keys that are empty or cannot be mapped to
// the backend.
var ErrInvalidKey = errors.New("store: invalid key")

// Adapter is a persistence backend. Keys are slash-separated paths.
// Implementations must be safe for concurrent use.
type Adapter interface {
	// Get retrieves a value by key. Returns nil, false, nil if not found.
	Get(ctx context.Context, key string) (json.RawMessage, bool, error)

	// Set stores a value by key.
	Set(ctx context.Context, key string, value json.RawMessage) error

	// Delete removes a key. No error if the key doesn't exist.
	Delete(ctx context.Context, key string) error

	// Keys returns every key with the given prefix, sorted.
	Keys(ctx context.Context, prefix string) ([]string, error)
}
