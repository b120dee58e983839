// Package cache provides the boundary cache for feasibility analyses.
//
// The core geometry and rule packages are cache-free and idempotent;
// caching exists only at this boundary so hosts can reuse parsed rule
// sets and repeated site analyses. Backends:
//   - FileCache: sharded JSON entries under a directory, for the CLI
//   - RedisCache: shared TTL-native store for multi-instance hosts
//   - NullCache: caching disabled
//
// Keys come from a Keyer so every stage of the analysis pipeline keys
// its results the same way regardless of backend.
package cache

import (
	"context"
	"time"
)

// Stage TTLs. Parsed rules and buildable areas are pure functions of
// their inputs and keep for a week; assembled reports carry timestamps
// and identifiers, so they roll over daily.
const (
	TTLRules  = 7 * 24 * time.Hour
	TTLSite   = 7 * 24 * time.Hour
	TTLReport = 24 * time.Hour
)

// Cache is the storage interface all backends implement.
type Cache interface {
	// Get retrieves a value. The second return reports a hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with a TTL. A zero TTL means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
