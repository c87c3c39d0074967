package throttle

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound is returned by a Store when no value exists for a key.
var ErrKeyNotFound = errors.New("key not found")

// Store is the external key-value service backing attempt records. The
// store owns expiry: records persisted with a ttl self-clean without an
// explicit delete. Get/Put are plain reads and writes, not
// compare-and-swap; see Record for the consequences.
type Store interface {
	// Get returns the value for key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key with the given expiry.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
