// Package lru provides a small generic least-recently-used cache with a
// soft size limit.
//
//	faces := lru.New[faceKey, text.Face](64)
//	faces.Set(k, face)
//	face, ok := faces.Get(k)
//
// When an insertion pushes the cache past its limit, the least recently
// used quarter of the entries is dropped in one pass, so eviction work is
// amortized over many insertions. Cache is safe for concurrent use and
// must not be copied after creation.
package lru

import (
	"slices"
	"sync"
	"sync/atomic"
)

// Cache is a thread-safe LRU cache with a soft limit.
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	items   map[K]*item[V]
	limit   int
	clock   int64 // monotonic access counter
	onEvict func(K, V)

	hits   atomic.Uint64
	misses atomic.Uint64
}

type item[V any] struct {
	value V
	used  int64
}

// Stats is a point-in-time view of cache usage.
type Stats struct {
	Len    int
	Limit  int
	Hits   uint64
	Misses uint64
}

// New creates a cache that trims itself once it holds more than limit
// entries. A limit of 0 means unbounded.
func New[K comparable, V any](limit int) *Cache[K, V] {
	return &Cache[K, V]{
		items: make(map[K]*item[V]),
		limit: limit,
	}
}

// OnEvict sets a callback invoked for every entry dropped by trimming,
// Delete, DeleteFunc or Clear. The callback runs with the cache locked and
// must not call back into the cache.
func (c *Cache[K, V]) OnEvict(fn func(K, V)) {
	c.mu.Lock()
	c.onEvict = fn
	c.mu.Unlock()
}

// Get returns the value for key and marks it as recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	it, ok := c.items[key]
	if !ok {
		c.misses.Add(1)
		var zero V
		return zero, false
	}
	c.hits.Add(1)
	c.clock++
	it.used = c.clock
	return it.value, true
}

// Set stores value under key, replacing any previous value.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLocked(key, value)
}

// GetOrCreate returns the cached value for key, or calls create and caches
// its result. create runs under the cache lock, so concurrent callers never
// create the same key twice. A create error is returned and nothing is
// cached.
func (c *Cache[K, V]) GetOrCreate(key K, create func() (V, error)) (V, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if it, ok := c.items[key]; ok {
		c.hits.Add(1)
		c.clock++
		it.used = c.clock
		return it.value, nil
	}
	c.misses.Add(1)
	v, err := create()
	if err != nil {
		var zero V
		return zero, err
	}
	c.setLocked(key, v)
	return v, nil
}

func (c *Cache[K, V]) setLocked(key K, value V) {
	c.clock++
	c.items[key] = &item[V]{value: value, used: c.clock}
	if c.limit > 0 && len(c.items) > c.limit {
		c.trimLocked()
	}
}

// Delete removes key and reports whether it was present.
func (c *Cache[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	it, ok := c.items[key]
	if !ok {
		return false
	}
	c.dropLocked(key, it)
	return true
}

// DeleteFunc removes every entry whose key satisfies match and returns how
// many were removed.
func (c *Cache[K, V]) DeleteFunc(match func(K) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for k, it := range c.items {
		if match(k) {
			c.dropLocked(k, it)
			n++
		}
	}
	return n
}

// Clear removes all entries. Hit and miss counters are kept.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for k, it := range c.items {
		c.dropLocked(k, it)
	}
	c.clock = 0
}

// Len returns the number of entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns usage statistics.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	n := len(c.items)
	c.mu.Unlock()
	return Stats{
		Len:    n,
		Limit:  c.limit,
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
	}
}

func (c *Cache[K, V]) dropLocked(key K, it *item[V]) {
	delete(c.items, key)
	if c.onEvict != nil {
		c.onEvict(key, it.value)
	}
}

// trimLocked drops the least recently used entries until the cache is at
// three quarters of its limit (at least one entry remains).
func (c *Cache[K, V]) trimLocked() {
	target := max(c.limit*3/4, 1)
	excess := len(c.items) - target
	if excess <= 0 {
		return
	}

	type aged struct {
		key  K
		used int64
	}
	order := make([]aged, 0, len(c.items))
	for k, it := range c.items {
		order = append(order, aged{k, it.used})
	}
	slices.SortFunc(order, func(a, b aged) int {
		switch {
		case a.used < b.used:
			return -1
		case a.used > b.used:
			return 1
		}
		return 0
	})
	for _, a := range order[:excess] {
		c.dropLocked(a.key, c.items[a.key])
	}
}
