package search

import (
	"sync"
	"time"
)

// Cache holds search results in memory for a fixed TTL.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]*cacheEntry[[]Result]
	now     func() time.Time
}

type cacheEntry[T any] struct {
	value     T
	expiresAt time.Time
}

// NewCache creates a cache with the given TTL.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]*cacheEntry[[]Result]),
		now:     time.Now,
	}
}

func cacheKey(provider, term string) string {
	return provider + "\x00" + term
}

// Get returns the cached results of provider for term if still valid.
func (c *Cache) Get(provider, term string) ([]Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[cacheKey(provider, term)]
	if !ok || c.now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.value, true
}

// Set caches the results of provider for term.
func (c *Cache) Set(provider, term string, results []Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(provider, term)] = &cacheEntry[[]Result]{
		value:     results,
		expiresAt: c.now().Add(c.ttl),
	}
}
