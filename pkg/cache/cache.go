// Package cache stores compiled preview artifacts by content hash.
//
// The preview path compiles the same markup and variables repeatedly while a
// user inspects a template. Artifacts are keyed by [PreviewKey], a hash of
// both inputs, so an unchanged template is served without a compile request.
//
// Implementations:
//   - [FileCache]: JSON entry files under a directory, for the CLI
//   - [MemoryCache]: process-local map, for the editor session
//   - [RedisCache]: shared cache for server deployments
//   - [NullCache]: disables caching
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional per-entry expiry.
type Cache interface {
	// Get returns the data stored under key. A missing or expired entry is
	// a miss, not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}
