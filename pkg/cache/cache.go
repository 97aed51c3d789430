// Package cache stores computed page plans so repeated runs over the same
// photographs and settings skip placement.
//
// Backends:
//   - FileCache: one JSON entry per key under a directory, guarded by a
//     file lock so concurrent CLI runs never read half-written entries
//   - RedisCache: a shared Redis instance for several machines or workers
//   - NullCache: caching disabled
//
// Keys come from a Keyer. ScopedKeyer prefixes keys so entries written by an
// older release are never read back by a newer one.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}

// DefaultTTL is how long plans are kept.
const DefaultTTL = 30 * 24 * time.Hour
