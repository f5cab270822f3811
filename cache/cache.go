// Package cache provides a bounded in-memory cache with least-recently-used
// eviction and per-entry TTL, plus the key normalization used to address it.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// Stats is a point-in-time snapshot of cache effectiveness counters.
type Stats struct {
	Hits    uint64  `json:"hits"`
	Misses  uint64  `json:"misses"`
	Size    int     `json:"size"`
	MaxSize int     `json:"maxSize"`
	HitRate float64 `json:"hitRate"`
}

type entry[T any] struct {
	key        string
	value      T
	insertedAt time.Time
	hitCount   uint64
}

// Cache is a fixed-capacity LRU cache with lazy TTL expiry. A single mutex
// guards the whole structure: eviction reorders the recency list, so per-key
// locking would not be sound.
type Cache[T any] struct {
	mu       sync.Mutex
	items    map[string]*list.Element
	order    *list.List // front = most recently used
	capacity int
	ttl      time.Duration
	hits     uint64
	misses   uint64

	now func() time.Time
}

// New returns a cache holding at most capacity entries, each valid for ttl
// after its last Set. Capacity must be positive.
func New[T any](capacity int, ttl time.Duration) *Cache[T] {
	if capacity <= 0 {
		capacity = 1
	}
	return &Cache[T]{
		items:    make(map[string]*list.Element, capacity),
		order:    list.New(),
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get returns the value stored under key, or the zero value and false when
// the key is absent or its entry has outlived the TTL. Expired entries are
// removed on the spot. A hit bumps the entry to most-recently-used.
func (c *Cache[T]) Get(key string) (T, bool) {
	var zero T

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.misses++
		return zero, false
	}

	ent := elem.Value.(*entry[T])
	if c.ttl > 0 && c.now().Sub(ent.insertedAt) > c.ttl {
		c.remove(elem)
		c.misses++
		return zero, false
	}

	ent.hitCount++
	c.order.MoveToFront(elem)
	c.hits++
	return ent.value, true
}

// Set stores value under key. An existing key keeps its recency position but
// its age resets. A new key at capacity evicts the least-recently-used entry
// first, so size never exceeds capacity.
func (c *Cache[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		ent := elem.Value.(*entry[T])
		ent.value = value
		ent.insertedAt = c.now()
		return
	}

	if c.order.Len() >= c.capacity {
		if oldest := c.order.Back(); oldest != nil {
			c.remove(oldest)
		}
	}

	elem := c.order.PushFront(&entry[T]{
		key:        key,
		value:      value,
		insertedAt: c.now(),
	})
	c.items[key] = elem
}

// Stats returns hit/miss counters and current occupancy. HitRate is 0 when
// the cache has never been probed.
func (c *Cache[T]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.hits + c.misses
	var rate float64
	if total > 0 {
		rate = float64(c.hits) / float64(total)
	}
	return Stats{
		Hits:    c.hits,
		Misses:  c.misses,
		Size:    c.order.Len(),
		MaxSize: c.capacity,
		HitRate: rate,
	}
}

// Len reports the number of live entries, expired or not.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Clear empties the cache and zeroes the hit/miss counters.
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element, c.capacity)
	c.order.Init()
	c.hits = 0
	c.misses = 0
}

func (c *Cache[T]) remove(elem *list.Element) {
	c.order.Remove(elem)
	delete(c.items, elem.Value.(*entry[T]).key)
}
