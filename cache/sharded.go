package cache

import (
	"fmt"
	"hash/fnv"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

const (
	// ShardCount is the number of shards. Must be a power of 2 for fast
	// modulo via bitwise AND.
	ShardCount = 16

	shardMask = ShardCount - 1

	// DefaultBudget is the total byte budget used when New is given none.
	DefaultBudget = 64 << 20
)

// Hasher computes a hash for a key. Used for shard selection.
type Hasher[K any] func(K) uint64

// StringHasher computes the FNV-1a hash of a string key.
func StringHasher(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s)) // fnv.Write never returns an error
	return h.Sum64()
}

// Sizer reports the number of bytes a value is charged against the budget.
type Sizer[V any] func(V) int64

// Cache is a thread-safe, sharded LRU cache bounded by the summed size of
// its values. Each shard owns an equal slice of the budget and evicts its
// least recently used entries when the slice is exceeded.
type Cache[K comparable, V any] struct {
	shards      [ShardCount]*shard[K, V]
	hasher      Hasher[K]
	sizer       Sizer[V]
	shardBudget int64

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

type shard[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*entry[K, V]
	lru     lruList[K]

	// creates collapses concurrent GetOrCreate misses on one key.
	creates singleflight.Group
}

type entry[K comparable, V any] struct {
	value V
	node  *lruNode[K]
}

// New creates a cache holding at most budget bytes as measured by sizer.
// If budget <= 0, DefaultBudget is used.
func New[K comparable, V any](budget int64, hasher Hasher[K], sizer Sizer[V]) *Cache[K, V] {
	if budget <= 0 {
		budget = DefaultBudget
	}
	c := &Cache[K, V]{
		hasher:      hasher,
		sizer:       sizer,
		shardBudget: max(budget/ShardCount, 1),
	}
	for i := range c.shards {
		c.shards[i] = &shard[K, V]{
			entries: make(map[K]*entry[K, V]),
		}
	}
	return c
}

func (c *Cache[K, V]) shardFor(key K) *shard[K, V] {
	return c.shards[c.hasher(key)&shardMask]
}

// Get retrieves a cached value and marks it most recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	s := c.shardFor(key)
	s.mu.Lock()
	value, ok := s.lookup(key)
	s.mu.Unlock()

	if !ok {
		c.misses.Add(1)
		return value, false
	}
	c.hits.Add(1)
	return value, true
}

// lookup returns the value for key and marks it most recently used.
// s.mu must be held. The value is copied out so callers may use it after
// unlocking while Set replaces the entry.
func (s *shard[K, V]) lookup(key K) (V, bool) {
	e, ok := s.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	s.lru.MoveToFront(e.node)
	return e.value, true
}

// Set stores a value. Values larger than a shard's budget are not cached.
// The value is stored as-is; callers must not modify it afterwards.
func (c *Cache[K, V]) Set(key K, value V) {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	c.store(s, key, value)
}

// store inserts or replaces key. s.mu must be held.
func (c *Cache[K, V]) store(s *shard[K, V], key K, value V) {
	size := c.sizer(value)
	if size > c.shardBudget {
		if e, ok := s.entries[key]; ok {
			s.lru.Remove(e.node)
			delete(s.entries, key)
		}
		return
	}

	if e, ok := s.entries[key]; ok {
		e.value = value
		s.lru.Resize(e.node, size)
		s.lru.MoveToFront(e.node)
	} else {
		s.entries[key] = &entry[K, V]{value: value, node: s.lru.PushFront(key, size)}
	}

	for s.lru.Size() > c.shardBudget {
		oldest, ok := s.lru.RemoveOldest()
		if !ok {
			break
		}
		delete(s.entries, oldest.key)
		c.evictions.Add(1)
	}
}

// GetOrCreate returns the cached value for key or creates it.
//
// create runs without the shard lock held. Concurrent callers missing on
// the same key share the first caller's create instead of running their
// own. Errors are returned to every waiter and nothing is cached. A panic
// in create is re-raised in every waiting caller.
func (c *Cache[K, V]) GetOrCreate(key K, create func() (V, error)) (V, error) {
	s := c.shardFor(key)

	s.mu.Lock()
	value, ok := s.lookup(key)
	s.mu.Unlock()
	if ok {
		c.hits.Add(1)
		return value, nil
	}
	c.misses.Add(1)

	v, err, _ := s.creates.Do(flightKey(key), func() (any, error) {
		// A create for this key may have finished between the miss and Do.
		s.mu.Lock()
		value, ok := s.lookup(key)
		s.mu.Unlock()
		if ok {
			return value, nil
		}

		value, err := create()
		if err != nil {
			return value, err
		}
		s.mu.Lock()
		c.store(s, key, value)
		s.mu.Unlock()
		return value, nil
	})
	value, _ = v.(V)
	return value, err
}

// flightKey names key for singleflight. %#v keeps distinct comparable
// values distinct.
func flightKey[K comparable](key K) string {
	if s, ok := any(key).(string); ok {
		return s
	}
	return fmt.Sprintf("%#v", key)
}

// Delete removes key and reports whether it was present.
func (c *Cache[K, V]) Delete(key K) bool {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return false
	}
	s.lru.Remove(e.node)
	delete(s.entries, key)
	return true
}

// Clear removes all entries. Statistics are kept.
func (c *Cache[K, V]) Clear() {
	for _, s := range c.shards {
		s.mu.Lock()
		s.entries = make(map[K]*entry[K, V])
		s.lru.Clear()
		s.mu.Unlock()
	}
}

// Len returns the number of entries across all shards.
func (c *Cache[K, V]) Len() int {
	total := 0
	for _, s := range c.shards {
		s.mu.Lock()
		total += len(s.entries)
		s.mu.Unlock()
	}
	return total
}

// Size returns the summed size of all entries.
func (c *Cache[K, V]) Size() int64 {
	var total int64
	for _, s := range c.shards {
		s.mu.Lock()
		total += s.lru.Size()
		s.mu.Unlock()
	}
	return total
}

// Budget returns the total byte budget.
func (c *Cache[K, V]) Budget() int64 {
	return c.shardBudget * ShardCount
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Len       int     `json:"len"`
	Size      int64   `json:"size"`
	Budget    int64   `json:"budget"`
	Hits      uint64  `json:"hits"`
	Misses    uint64  `json:"misses"`
	HitRate   float64 `json:"hit_rate"`
	Evictions uint64  `json:"evictions"`
}

// Stats returns current cache statistics.
func (c *Cache[K, V]) Stats() Stats {
	hits := c.hits.Load()
	misses := c.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}
	return Stats{
		Len:       c.Len(),
		Size:      c.Size(),
		Budget:    c.Budget(),
		Hits:      hits,
		Misses:    misses,
		HitRate:   hitRate,
		Evictions: c.evictions.Load(),
	}
}

// ResetStats resets the hit, miss and eviction counters.
func (c *Cache[K, V]) ResetStats() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.evictions.Store(0)
}
