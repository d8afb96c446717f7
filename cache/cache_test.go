package cache

import (
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func byteSize(b []byte) int64 { return int64(len(b)) }

// oneShard sends every key to shard 0 so eviction order is observable.
func oneShard(string) uint64 { return 0 }

func TestNewDefaults(t *testing.T) {
	c := New[string, []byte](0, StringHasher, byteSize)
	if c.Budget() != DefaultBudget {
		t.Errorf("Budget() = %d, want %d", c.Budget(), DefaultBudget)
	}
	if c.Len() != 0 || c.Size() != 0 {
		t.Errorf("new cache not empty: len %d size %d", c.Len(), c.Size())
	}
}

func TestGetSet(t *testing.T) {
	c := New[string, []byte](1<<20, StringHasher, byteSize)
	c.Set("a", []byte("hello"))

	got, ok := c.Get("a")
	if !ok || string(got) != "hello" {
		t.Errorf("Get(a) = %q, %v", got, ok)
	}
	if _, ok := c.Get("b"); ok {
		t.Error("Get(b) found a missing key")
	}
	if c.Size() != 5 {
		t.Errorf("Size() = %d, want 5", c.Size())
	}

	c.Set("a", []byte("hi"))
	if c.Size() != 2 || c.Len() != 1 {
		t.Errorf("after replace: size %d len %d, want 2 and 1", c.Size(), c.Len())
	}
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	// 16 * 100 bytes: each shard holds 100.
	c := New[string, []byte](ShardCount*100, oneShard, byteSize)
	chunk := make([]byte, 40)

	c.Set("a", chunk)
	c.Set("b", chunk)
	c.Get("a") // b is now oldest
	c.Set("c", chunk)

	if _, ok := c.Get("b"); ok {
		t.Error("b survived eviction")
	}
	for _, k := range []string{"a", "c"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("%s was evicted", k)
		}
	}
	if st := c.Stats(); st.Evictions != 1 || st.Size != 80 {
		t.Errorf("stats = %+v, want 1 eviction and 80 bytes", st)
	}
}

func TestOversizedValueNotCached(t *testing.T) {
	c := New[string, []byte](ShardCount*10, oneShard, byteSize)
	c.Set("small", []byte("abc"))
	c.Set("big", make([]byte, 11))
	if _, ok := c.Get("big"); ok {
		t.Error("oversized value was cached")
	}
	if _, ok := c.Get("small"); !ok {
		t.Error("oversized value evicted an unrelated entry")
	}

	c.Set("small", make([]byte, 11))
	if _, ok := c.Get("small"); ok {
		t.Error("replacing with an oversized value kept the stale entry")
	}
}

func TestGetOrCreate(t *testing.T) {
	c := New[string, []byte](1<<20, StringHasher, byteSize)
	calls := 0
	create := func() ([]byte, error) {
		calls++
		return []byte("v"), nil
	}

	for range 3 {
		v, err := c.GetOrCreate("k", create)
		if err != nil || string(v) != "v" {
			t.Fatalf("GetOrCreate = %q, %v", v, err)
		}
	}
	if calls != 1 {
		t.Errorf("create called %d times, want 1", calls)
	}
	if st := c.Stats(); st.Hits != 2 || st.Misses != 1 {
		t.Errorf("stats = %+v, want 2 hits 1 miss", st)
	}
}

func TestGetOrCreateError(t *testing.T) {
	c := New[string, []byte](1<<20, StringHasher, byteSize)
	boom := errors.New("boom")
	if _, err := c.GetOrCreate("k", func() ([]byte, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if c.Len() != 0 {
		t.Error("failed create was cached")
	}
	v, err := c.GetOrCreate("k", func() ([]byte, error) { return []byte("ok"), nil })
	if err != nil || string(v) != "ok" {
		t.Errorf("retry = %q, %v", v, err)
	}
}

func TestGetOrCreateCollapsesConcurrentMisses(t *testing.T) {
	c := New[string, []byte](1<<20, StringHasher, byteSize)
	var calls atomic.Int32
	release := make(chan struct{})
	started := make(chan struct{})

	create := func() ([]byte, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		return []byte("tile"), nil
	}

	const waiters = 8
	var wg sync.WaitGroup
	results := make([][]byte, waiters+1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _ = c.GetOrCreate("k", create)
	}()
	<-started
	for i := 1; i <= waiters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = c.GetOrCreate("k", create)
		}()
	}
	close(release)
	wg.Wait()

	if n := calls.Load(); n != 1 {
		t.Errorf("create ran %d times, want 1", n)
	}
	for i, r := range results {
		if string(r) != "tile" {
			t.Errorf("caller %d got %q", i, r)
		}
	}
}

func TestGetOrCreatePanicReleasesKey(t *testing.T) {
	c := New[string, []byte](1<<20, StringHasher, byteSize)

	func() {
		defer func() {
			if recover() == nil {
				t.Error("panic in create was swallowed")
			}
		}()
		_, _ = c.GetOrCreate("k", func() ([]byte, error) { panic("create failed") })
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		v, err := c.GetOrCreate("k", func() ([]byte, error) { return []byte("ok"), nil })
		if err != nil || string(v) != "ok" {
			t.Errorf("after panic = %q, %v", v, err)
		}
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("GetOrCreate blocked after a panicking create")
	}
}

func TestGetWhileReplacing(t *testing.T) {
	c := New[string, []byte](1<<20, StringHasher, byteSize)
	c.Set("k", make([]byte, 16))

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		for i := range 1000 {
			c.Set("k", make([]byte, 8+i%16))
		}
	}()
	go func() {
		defer wg.Done()
		for range 1000 {
			if v, ok := c.Get("k"); ok && (len(v) < 8 || len(v) > 23) {
				t.Errorf("Get returned %d bytes", len(v))
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for range 1000 {
			v, err := c.GetOrCreate("k", func() ([]byte, error) { return make([]byte, 8), nil })
			if err != nil || len(v) < 8 || len(v) > 23 {
				t.Errorf("GetOrCreate returned %d bytes, %v", len(v), err)
				return
			}
		}
	}()
	wg.Wait()
}

func TestDeleteClear(t *testing.T) {
	c := New[string, []byte](1<<20, StringHasher, byteSize)
	for i := range 50 {
		c.Set(strconv.Itoa(i), []byte{byte(i)})
	}
	if !c.Delete("7") || c.Delete("7") {
		t.Error("Delete did not report presence correctly")
	}
	if c.Len() != 49 {
		t.Errorf("Len() = %d, want 49", c.Len())
	}
	c.Clear()
	if c.Len() != 0 || c.Size() != 0 {
		t.Errorf("after Clear: len %d size %d", c.Len(), c.Size())
	}
}

func TestStatsHitRate(t *testing.T) {
	c := New[string, []byte](1<<20, StringHasher, byteSize)
	c.Set("a", []byte("x"))
	c.Get("a")
	c.Get("a")
	c.Get("a")
	c.Get("missing")
	if st := c.Stats(); st.HitRate != 0.75 {
		t.Errorf("HitRate = %v, want 0.75", st.HitRate)
	}
	c.ResetStats()
	if st := c.Stats(); st.Hits != 0 || st.Misses != 0 || st.HitRate != 0 {
		t.Errorf("after ResetStats: %+v", st)
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := New[string, []byte](ShardCount*256, StringHasher, byteSize)
	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 500 {
				k := strconv.Itoa((g*31 + i) % 97)
				if i%3 == 0 {
					c.Set(k, make([]byte, 16))
				} else {
					_, _ = c.GetOrCreate(k, func() ([]byte, error) { return make([]byte, 8), nil })
				}
			}
		}()
	}
	wg.Wait()
	if c.Size() > c.Budget() {
		t.Errorf("Size() = %d exceeds budget %d", c.Size(), c.Budget())
	}
}

func TestLRUList(t *testing.T) {
	var l lruList[string]
	a := l.PushFront("a", 1)
	l.PushFront("b", 2)
	c := l.PushFront("c", 3)
	if l.Len() != 3 || l.Size() != 6 {
		t.Fatalf("len %d size %d", l.Len(), l.Size())
	}
	l.MoveToFront(a)
	l.Resize(c, 10)
	if l.Size() != 13 {
		t.Errorf("Size() after resize = %d, want 13", l.Size())
	}
	oldest, _ := l.RemoveOldest()
	if oldest.key != "b" {
		t.Errorf("oldest = %s, want b", oldest.key)
	}
	l.Remove(a)
	l.Remove(c)
	if l.Len() != 0 || l.Size() != 0 || l.head != nil || l.tail != nil {
		t.Errorf("list not empty: %+v", l)
	}
	if _, ok := l.RemoveOldest(); ok {
		t.Error("RemoveOldest on empty list")
	}
}

func BenchmarkGetOrCreateHit(b *testing.B) {
	c := New[string, []byte](1<<20, StringHasher, byteSize)
	c.Set("tile", make([]byte, 1024))
	create := func() ([]byte, error) { return nil, nil }
	b.ReportAllocs()
	for b.Loop() {
		_, _ = c.GetOrCreate("tile", create)
	}
}
