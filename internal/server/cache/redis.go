package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BakeNecko/sidus-heroes/internal/common"
	"github.com/redis/go-redis/v9"
)

const redisDialTimeout = 5 * time.Second

type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects lazily; call Ping to check the server is there.
func NewRedisCache(addr, password string, db int) *RedisCache {
	return NewRedisCacheFromClient(redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: redisDialTimeout,
	}))
}

func NewRedisCacheFromClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, unavailable("get", err)
	}
	return b, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return unavailable("set", err)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Del(ctx, key).Result()
	if err != nil {
		return false, unavailable("delete", err)
	}
	return n > 0, nil
}

func (c *RedisCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

// Flush empties the selected Redis database only.
func (c *RedisCache) Flush(ctx context.Context) error {
	if err := c.client.FlushDB(ctx).Err(); err != nil {
		return unavailable("flush", err)
	}
	return nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func unavailable(op string, err error) error {
	return fmt.Errorf("redis %s: %w: %v", op, common.ErrCacheUnavailable, err)
}
