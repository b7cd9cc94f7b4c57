package cache

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Cache is an in-memory cache with TTL support
type Cache[V any] struct {
	mu       sync.RWMutex
	items    map[string]cacheItem[V]
	ttl      time.Duration
	now      func() time.Time
	hits     int64
	misses   int64
	stopOnce sync.Once
	stopChan chan struct{}
}

type cacheItem[V any] struct {
	value      V
	expiration time.Time
}

// New creates a new cache with the specified TTL
func New[V any](ttl time.Duration) *Cache[V] {
	c := &Cache[V]{
		items:    make(map[string]cacheItem[V]),
		ttl:      ttl,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}

	// Start cleanup goroutine
	go c.cleanup()

	return c
}

// Get retrieves a value from the cache
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	item, exists := c.items[key]
	c.mu.RUnlock()

	if !exists || c.now().After(item.expiration) {
		atomic.AddInt64(&c.misses, 1)
		var zero V
		return zero, false
	}

	atomic.AddInt64(&c.hits, 1)
	return item.value, true
}

// Set stores a value in the cache with the default TTL
func (c *Cache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value in the cache with a custom TTL
func (c *Cache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = cacheItem[V]{
		value:      value,
		expiration: c.now().Add(ttl),
	}
}

// Delete removes a value from the cache
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
}

// DeleteFunc removes every entry whose value matches fn
func (c *Cache[V]) DeleteFunc(fn func(V) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, item := range c.items {
		if fn(item.value) {
			delete(c.items, key)
			removed++
		}
	}
	return removed
}

// InvalidatePrefix removes all keys with the given prefix
func (c *Cache[V]) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.items {
		if strings.HasPrefix(key, prefix) {
			delete(c.items, key)
		}
	}
}

// Stats returns cache statistics
type Stats struct {
	ItemCount int   `json:"item_count"`
	HitCount  int64 `json:"hit_count"`
	MissCount int64 `json:"miss_count"`
}

// Stats returns a snapshot of the counters
func (c *Cache[V]) Stats() Stats {
	return Stats{
		ItemCount: c.Size(),
		HitCount:  atomic.LoadInt64(&c.hits),
		MissCount: atomic.LoadInt64(&c.misses),
	}
}

// cleanup periodically removes expired items
func (c *Cache[V]) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.stopChan:
			return
		}
	}
}

// removeExpired removes all expired items
func (c *Cache[V]) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, item := range c.items {
		if now.After(item.expiration) {
			delete(c.items, key)
		}
	}
}

// Stop stops the cleanup goroutine
func (c *Cache[V]) Stop() {
	c.stopOnce.Do(func() { close(c.stopChan) })
}

// Size returns the number of items in the cache
func (c *Cache[V]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
