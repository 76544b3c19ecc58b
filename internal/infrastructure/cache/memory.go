package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/labelscan/backend/internal/domain"
)

// MemoryCache is a thread-safe, size-bounded LRU of parsed records with a
// cache-wide TTL
type MemoryCache struct {
	lru *expirable.LRU[string, *domain.NutritionRecord]
}

// NewMemoryCache creates a cache holding at most size records for ttl each.
// size <= 0 means unbounded, ttl <= 0 means records never expire.
func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		lru: expirable.NewLRU[string, *domain.NutritionRecord](size, nil, ttl),
	}
}

// Get retrieves a record from the cache
func (c *MemoryCache) Get(ctx context.Context, key string) (*domain.NutritionRecord, error) {
	record, ok := c.lru.Get(key)
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return record, nil
}

// Set stores a record in the cache
func (c *MemoryCache) Set(ctx context.Context, key string, record *domain.NutritionRecord) error {
	if record == nil {
		return domain.ErrInvalidRequest
	}
	c.lru.Add(key, record)
	return nil
}

// Delete removes a record from the cache
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.lru.Remove(key)
	return nil
}

// Exists checks if a key exists in the cache and is not expired
func (c *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := c.lru.Peek(key)
	return ok, nil
}

// Size returns the current number of items in the cache (for debugging/monitoring)
func (c *MemoryCache) Size() int {
	return c.lru.Len()
}

// Clear removes all items from the cache
func (c *MemoryCache) Clear() {
	c.lru.Purge()
}
