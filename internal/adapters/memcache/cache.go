// Package memcache is the in-process tier of the map cache.
package memcache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/samirrijal/fifteenmap/internal/core/ports"
)

// Cache implements ports.CacheService on top of patrickmn/go-cache.
type Cache struct {
	c *gocache.Cache
}

// New creates a cache. defaultTTL <= 0 keeps entries until process exit.
func New(defaultTTL, cleanupInterval time.Duration) *Cache {
	if defaultTTL <= 0 {
		defaultTTL = gocache.NoExpiration
	}
	return &Cache{c: gocache.New(defaultTTL, cleanupInterval)}
}

// Get returns the stored bytes, or ports.ErrCacheMiss.
func (m *Cache) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, ports.ErrCacheMiss
	}
	return v.([]byte), nil
}

// Set stores value. ttlSeconds <= 0 uses the cache default.
func (m *Cache) Set(_ context.Context, key string, value []byte, ttlSeconds int) error {
	ttl := gocache.DefaultExpiration
	if ttlSeconds > 0 {
		ttl = time.Duration(ttlSeconds) * time.Second
	}
	m.c.Set(key, value, ttl)
	return nil
}

// Delete removes a key.
func (m *Cache) Delete(_ context.Context, key string) error {
	m.c.Delete(key)
	return nil
}

// Len reports the number of stored entries, expired ones included until cleanup.
func (m *Cache) Len() int {
	return m.c.ItemCount()
}
