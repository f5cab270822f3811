package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeClock lets tests drive TTL expiry deterministically.
type fakeClock struct {
	t time.Time
}

func (f *fakeClock) Now() time.Time { return f.t }

func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func newClockedCache[T any](capacity int, ttl time.Duration) (*Cache[T], *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)}
	c := New[T](capacity, ttl)
	c.now = clock.Now
	return c, clock
}

func TestCacheBound(t *testing.T) {
	c := New[int](3, time.Minute)

	for i := 0; i < 10; i++ {
		c.Set(fmt.Sprintf("k%d", i), i)
		if c.Len() > 3 {
			t.Fatalf("size %d exceeds capacity after %d sets", c.Len(), i+1)
		}
	}

	// Only the three most recent survive.
	for i := 0; i < 7; i++ {
		if _, ok := c.Get(fmt.Sprintf("k%d", i)); ok {
			t.Fatalf("k%d should have been evicted", i)
		}
	}
	for i := 7; i < 10; i++ {
		if _, ok := c.Get(fmt.Sprintf("k%d", i)); !ok {
			t.Fatalf("k%d missing", i)
		}
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := New[string](2, time.Minute)

	c.Set("a", "1")
	c.Set("b", "2")

	// Touch "a" so "b" is the LRU entry.
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a missing")
	}

	c.Set("c", "3")

	if _, ok := c.Get("b"); ok {
		t.Fatal("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a should have survived")
	}
	if _, ok := c.Get("c"); !ok {
		t.Fatal("c missing")
	}
}

func TestCacheTTLBoundary(t *testing.T) {
	ttl := 100 * time.Millisecond
	c, clock := newClockedCache[string](4, ttl)

	c.Set("k", "v")

	clock.Advance(ttl - time.Millisecond)
	if v, ok := c.Get("k"); !ok || v != "v" {
		t.Fatalf("get before expiry = (%q, %v), want (v, true)", v, ok)
	}

	clock.Advance(2 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Fatal("get after expiry should miss")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry not removed, len = %d", c.Len())
	}
}

func TestCacheSetResetsAgeNotRecency(t *testing.T) {
	ttl := 100 * time.Millisecond
	c, clock := newClockedCache[string](2, ttl)

	c.Set("a", "1")
	clock.Advance(60 * time.Millisecond)
	c.Set("b", "2")

	// Refreshing "a" resets its age but leaves it least recently used.
	c.Set("a", "refreshed")
	clock.Advance(60 * time.Millisecond)

	if v, ok := c.Get("a"); !ok || v != "refreshed" {
		t.Fatalf("refreshed entry = (%q, %v), want (refreshed, true)", v, ok)
	}

	c2, _ := newClockedCache[string](2, time.Minute)
	c2.Set("a", "1")
	c2.Set("b", "2")
	c2.Set("a", "updated")
	c2.Set("c", "3")
	// "a" kept its old recency slot, so it is the one evicted.
	if _, ok := c2.Get("a"); ok {
		t.Fatal("a should have been evicted despite the update")
	}
	if _, ok := c2.Get("b"); !ok {
		t.Fatal("b should have survived")
	}
}

func TestCacheStats(t *testing.T) {
	c := New[int](2, time.Minute)

	if got := c.Stats(); got.HitRate != 0 {
		t.Fatalf("unused cache hitRate = %v, want 0", got.HitRate)
	}

	c.Set("a", 1)
	c.Get("a")
	c.Get("a")
	c.Get("missing")

	got := c.Stats()
	if got.Hits != 2 || got.Misses != 1 {
		t.Fatalf("hits/misses = %d/%d, want 2/1", got.Hits, got.Misses)
	}
	if got.Size != 1 || got.MaxSize != 2 {
		t.Fatalf("size/maxSize = %d/%d, want 1/2", got.Size, got.MaxSize)
	}
	if want := 2.0 / 3.0; got.HitRate != want {
		t.Fatalf("hitRate = %v, want %v", got.HitRate, want)
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := New[int](16, time.Minute)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := fmt.Sprintf("k%d", (g*500+i)%64)
				c.Set(key, i)
				c.Get(key)
				if i%100 == 0 {
					c.Stats()
					c.Len()
				}
			}
		}(g)
	}
	wg.Wait()

	got := c.Stats()
	if got.Size > 16 {
		t.Fatalf("size %d exceeds capacity under concurrent load", got.Size)
	}
	if got.Hits+got.Misses == 0 {
		t.Fatal("expected lookups recorded")
	}
}

func TestCacheClear(t *testing.T) {
	c := New[int](4, time.Minute)
	c.Set("a", 1)
	c.Get("a")
	c.Get("missing")

	c.Clear()

	if c.Len() != 0 {
		t.Fatalf("len after clear = %d", c.Len())
	}
	got := c.Stats()
	if got.Hits != 0 || got.Misses != 0 {
		t.Fatalf("counters after clear = %d/%d, want 0/0", got.Hits, got.Misses)
	}
}
