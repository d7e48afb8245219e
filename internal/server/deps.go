package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/BakeNecko/sidus-heroes/internal/server/cache"
	"github.com/BakeNecko/sidus-heroes/internal/server/config"
	"github.com/BakeNecko/sidus-heroes/internal/server/repositories/repomanager"
)

// Deps holds the process-wide store and cache connections.
type Deps struct {
	Store repomanager.RepositoryManager
	Cache cache.Cache

	closers []func() error
}

// OpenDeps opens the store pool and the configured cache. Nothing is dialled
// yet; call Ping to check reachability.
func OpenDeps(cfg *config.Config) (*Deps, error) {
	rm, err := repomanager.NewPostgresRepositoryManager(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	d := &Deps{Store: rm, closers: []func() error{rm.Close}}

	c, err := NewCache(cfg)
	if err != nil {
		_ = d.Close()
		return nil, err
	}
	d.Cache = c
	if rc, ok := c.(*cache.RedisCache); ok {
		d.closers = append(d.closers, rc.Close)
	}
	return d, nil
}

// Ping checks the store, then the cache.
func (d *Deps) Ping(ctx context.Context) error {
	if err := d.Store.Ping(ctx); err != nil {
		return err
	}
	if err := d.Cache.Ping(ctx); err != nil {
		return fmt.Errorf("cache init error: %w", err)
	}
	return nil
}

// NewCache builds the cache selected by cfg.CacheBackend.
func NewCache(cfg *config.Config) (cache.Cache, error) {
	switch cfg.CacheBackend {
	case config.CacheBackendRedis:
		return cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB), nil
	case config.CacheBackendMemory:
		return cache.NewMemoryCache(), nil
	}
	return nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
}

// Close releases the connections in reverse order of opening.
func (d *Deps) Close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil
	return errors.Join(errs...)
}
