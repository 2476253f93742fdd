package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestLRUCacheGetSet(t *testing.T) {
	c := NewLRUCache[string](10, time.Minute)

	if _, found := c.Get("missing"); found {
		t.Error("Get on empty cache must miss")
	}

	c.Set("a", "first")
	got, found := c.Get("a")
	if !found || got != "first" {
		t.Errorf("Get(a) = (%q, %v), want (first, true)", got, found)
	}

	c.Set("a", "second")
	got, _ = c.Get("a")
	if got != "second" {
		t.Errorf("Get(a) after update = %q, want second", got)
	}
	if c.Size() != 1 {
		t.Errorf("Size() = %d, want 1", c.Size())
	}
}

func TestLRUCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](3, time.Minute)

	for i := 0; i < 3; i++ {
		c.Set(fmt.Sprintf("k%d", i), i)
	}

	// Touch k0 so k1 becomes the eviction candidate
	c.Get("k0")
	c.Set("k3", 3)

	if _, found := c.Get("k1"); found {
		t.Error("k1 should have been evicted")
	}
	for _, key := range []string{"k0", "k2", "k3"} {
		if _, found := c.Get(key); !found {
			t.Errorf("%s should still be cached", key)
		}
	}
}

func TestLRUCacheTTLExpiry(t *testing.T) {
	c := NewLRUCache[string](10, 10*time.Millisecond)

	c.Set("a", "value")
	time.Sleep(20 * time.Millisecond)

	if _, found := c.Get("a"); found {
		t.Error("expired entry must miss")
	}
	if c.Size() != 0 {
		t.Errorf("Size() after lazy eviction = %d, want 0", c.Size())
	}
}

func TestLRUCacheCleanExpired(t *testing.T) {
	c := NewLRUCache[string](10, 10*time.Millisecond)

	c.Set("a", "1")
	c.Set("b", "2")
	time.Sleep(20 * time.Millisecond)
	c.Set("c", "3")

	// The short TTL has not elapsed for c yet
	if removed := c.CleanExpired(); removed != 2 {
		t.Errorf("CleanExpired() = %d, want 2", removed)
	}
	if c.Size() != 1 {
		t.Errorf("Size() = %d, want 1", c.Size())
	}
}

func TestLRUCacheDelete(t *testing.T) {
	c := NewLRUCache[string](10, time.Minute)

	c.Set("a", "value")
	c.Delete("a")
	c.Delete("never-existed")

	if _, found := c.Get("a"); found {
		t.Error("deleted entry must miss")
	}
}

func TestManagerCleansRegisteredCaches(t *testing.T) {
	c := NewLRUCache[string](10, 5*time.Millisecond)
	c.Set("a", "1")

	m := NewManager()
	m.Register(c)
	m.StartCleanup(10 * time.Millisecond)
	defer m.Stop()

	deadline := time.Now().Add(time.Second)
	for c.Size() > 0 {
		if time.Now().After(deadline) {
			t.Fatal("manager never cleaned the expired entry")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestManagerStopIsIdempotent(t *testing.T) {
	m := NewManager()
	m.StartCleanup(time.Millisecond)
	m.Stop()
	m.Stop()
}
