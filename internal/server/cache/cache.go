// Package cache provides the key/value store that fronts user lookups.
// Two backends exist: Redis for deployments and an in-process map for
// single-node runs and tests.
package cache

import (
	"context"
	"strconv"
	"time"
)

// DefaultUserTTL is how long a cached user projection lives.
const DefaultUserTTL = 3600 * time.Second

const userKeyPrefix = "user:"

// Cache is a byte-valued store with per-key expiry. Implementations wrap
// transport failures in common.ErrCacheUnavailable.
type Cache interface {
	// Get returns the value and true on a hit, nil and false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete reports whether the key existed.
	Delete(ctx context.Context, key string) (bool, error)
	Ping(ctx context.Context) error
	// Flush drops every key.
	Flush(ctx context.Context) error
}

// UserKey is the cache key of the user with the given id.
func UserKey(id int64) string {
	return userKeyPrefix + strconv.FormatInt(id, 10)
}
