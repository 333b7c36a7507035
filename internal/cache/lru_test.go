package cache

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func newTestCache(size int, ttl time.Duration) (*LRUCache[int64], *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[int64](size, ttl)
	c.now = clock.now
	return c, clock
}

func TestLRUCache_GetSet(t *testing.T) {
	c, _ := newTestCache(10, time.Minute)
	c.Set("a", 1)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("expected 1, got %d (ok=%v)", v, ok)
	}
	c.Set("a", 2)
	if v, _ := c.Get("a"); v != 2 {
		t.Fatalf("expected overwrite, got %d", v)
	}
	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected miss after delete")
	}
}

func TestLRUCache_Expiry(t *testing.T) {
	c, clock := newTestCache(10, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	clock.t = clock.t.Add(30 * time.Second)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("entry expired too early")
	}
	clock.t = clock.t.Add(31 * time.Second)
	if _, ok := c.Get("a"); ok {
		t.Fatal("reading must not extend expiry")
	}
	if n := c.CleanExpired(); n != 1 {
		t.Fatalf("expected 1 cleaned entry, got %d", n)
	}
	if c.Size() != 0 {
		t.Fatalf("expected empty cache, got %d", c.Size())
	}
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestCache(2, time.Hour)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatal("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a was recently used and should stay")
	}
	if c.Size() != 2 {
		t.Fatalf("expected size 2, got %d", c.Size())
	}
}

func TestManager_StartStop(t *testing.T) {
	c, clock := newTestCache(10, time.Millisecond)
	c.Set("a", 1)
	clock.t = clock.t.Add(time.Second)

	m := NewManager(nil)
	m.Register(c)
	m.StartCleanup(5 * time.Millisecond)

	deadline := time.Now().Add(2 * time.Second)
	for c.Size() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	m.Stop()
	if c.Size() != 0 {
		t.Fatal("manager did not sweep expired entries")
	}
}
