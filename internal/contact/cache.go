package contact

import "sync"

// Cache is a key/value memo with explicit key presence. A key mapped to
// the zero value is still present; Get cannot tell the two apart, HasKey can.
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	HasKey(key K) bool
	Set(key K, value V)
	Clear()
	Len() int
}

// InMemoryCache is a Cache backed by a map guarded by an RWMutex. Entries
// never expire; they are only dropped by Clear.
type InMemoryCache[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]V
}

// NewInMemoryCache returns an empty cache.
func NewInMemoryCache[K comparable, V any]() *InMemoryCache[K, V] {
	return &InMemoryCache[K, V]{entries: make(map[K]V)}
}

func (c *InMemoryCache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *InMemoryCache[K, V]) HasKey(key K) bool {
	_, ok := c.Get(key)
	return ok
}

func (c *InMemoryCache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	c.entries[key] = value
	c.mu.Unlock()
}

// Clear drops every entry.
func (c *InMemoryCache[K, V]) Clear() {
	c.mu.Lock()
	c.entries = make(map[K]V)
	c.mu.Unlock()
}

func (c *InMemoryCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
