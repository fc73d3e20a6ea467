/*
 * MIT License
 * Copyright (c) 2025 Zuplu
 */

package cache

import (
	"sync"
	"time"
)

type memoryEntry[V any] struct {
	storedAt time.Time
	value    V
}

// MemoryCache keeps entries for the process lifetime. Expired entries are never
// swept; they stay in the map until the next Set for the same key.
type MemoryCache[V any] struct {
	mu    sync.RWMutex
	ttl   time.Duration
	now   func() time.Time
	cache map[string]memoryEntry[V]
}

func NewMemoryCache[V any](ttl time.Duration) *MemoryCache[V] {
	return &MemoryCache[V]{
		ttl:   ttl,
		now:   time.Now,
		cache: make(map[string]memoryEntry[V]),
	}
}

// WithClock replaces the time source.
func (c *MemoryCache[V]) WithClock(now func() time.Time) *MemoryCache[V] {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
	return c
}

func (c *MemoryCache[V]) TTL() time.Duration {
	return c.ttl
}

func (c *MemoryCache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var zero V
	data, ok := c.cache[key]
	if !ok {
		return zero, false
	}
	if c.now().Sub(data.storedAt) >= c.ttl {
		return zero, false
	}
	return data.value, true
}

func (c *MemoryCache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[key] = memoryEntry[V]{storedAt: c.now(), value: value}
}

// Remaining returns how long the entry stays fresh, zero if absent or expired.
func (c *MemoryCache[V]) Remaining(key string) time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, ok := c.cache[key]
	if !ok {
		return 0
	}
	left := c.ttl - c.now().Sub(data.storedAt)
	if left < 0 {
		return 0
	}
	return left
}

// Len counts physically present entries, fresh or not.
func (c *MemoryCache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

func (c *MemoryCache[V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.cache)
}
