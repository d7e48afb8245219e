package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const memoryCleanupInterval = 10 * time.Minute

// MemoryCache keeps entries in process memory. Entries are not shared
// between replicas, so it only fits single-instance deployments.
type MemoryCache struct {
	items *gocache.Cache
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: gocache.New(DefaultUserTTL, memoryCleanupInterval)}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := c.items.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, _ := v.([]byte)
	return clone(b), true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.items.Set(key, clone(value), ttl)
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) (bool, error) {
	_, existed := c.items.Get(key)
	c.items.Delete(key)
	return existed, nil
}

func (c *MemoryCache) Ping(context.Context) error {
	return nil
}

func (c *MemoryCache) Flush(context.Context) error {
	c.items.Flush()
	return nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}
