// Package cache stores decoded mod manifests between runs.
//
// # Backends
//
// [FileCache] keeps one file per key under a directory and is the default
// for the CLI. [RedisCache] shares entries between machines and between
// instances of `modkit serve`. [NullCache] disables caching.
//
// # Keys
//
// A [Keyer] builds keys from content hashes, so an edited manifest never
// hits a stale entry. [NewScopedKeyer] prefixes keys when several
// installations share one backend.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional expiry. A ttl of zero means the entry
// does not expire.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is a miss,
	// not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}
