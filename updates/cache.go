package updates

import (
	"sync"
	"time"
)

// CacheEntry last-dispatched state for one key
type CacheEntry struct {
	Fingerprint    fingerprint
	LastDispatched time.Time
}

// Cache last-dispatched value/timestamp per key
//
// Written only by the dispatcher after a successful dispatch; read by the
// trigger evaluator for significance and cooldown decisions.
type Cache struct {
	entries map[Key]CacheEntry
	mu      sync.RWMutex
}

// NewCache creates an update cache
func NewCache() *Cache {
	return &Cache{entries: make(map[Key]CacheEntry)}
}

// Get returns the entry for a key
func (c *Cache) Get(key Key) (CacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e, ok
}

// Put records a successful dispatch for a key
func (c *Cache) Put(key Key, payload interface{}, dispatchedAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = CacheEntry{
		Fingerprint:    fingerprintOf(payload),
		LastDispatched: dispatchedAt,
	}
}

// Len returns the number of cached keys
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
