// Package cache provides a sharded LRU cache bounded by total entry size.
//
// The tile server keeps encoded tiles in it. Tiles of different side
// lengths and formats vary in size by orders of magnitude, so the bound
// is a byte budget rather than an entry count.
//
//	c := cache.New(64<<20, cache.StringHasher, func(b []byte) int64 { return int64(len(b)) })
//	png, err := c.GetOrCreate(key, func() ([]byte, error) { return render(key) })
//
// # Concurrency
//
// Keys are spread over 16 shards, each with its own mutex. GetOrCreate
// runs the create function outside the shard lock and collapses
// concurrent misses for the same key into a single call.
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
