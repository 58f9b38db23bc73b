package countries

import (
	"sync"
	"testing"
	"time"
)

func newTestCache(ttl time.Duration) (*Cache[string], *time.Time) {
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	c := NewCache[string](ttl)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestCacheGetSet(t *testing.T) {
	c, _ := newTestCache(time.Hour)

	if _, ok := c.Get("japan"); ok {
		t.Fatal("Get on empty cache returned ok")
	}
	c.Set("japan", "tokyo")
	if v, ok := c.Get("japan"); !ok || v != "tokyo" {
		t.Errorf("Get() = %q, %v, want tokyo, true", v, ok)
	}
}

func TestCacheExpiry(t *testing.T) {
	c, now := newTestCache(time.Hour)
	c.Set("japan", "tokyo")

	*now = now.Add(59 * time.Minute)
	if _, ok := c.Get("japan"); !ok {
		t.Error("entry expired too early")
	}

	*now = now.Add(time.Minute)
	if _, ok := c.Get("japan"); ok {
		t.Error("entry should expire exactly at its TTL")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d before purge, want 1", c.Len())
	}
	if removed := c.Purge(); removed != 1 {
		t.Errorf("Purge() = %d, want 1", removed)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d after purge, want 0", c.Len())
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := NewCache[int](time.Minute)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Set("k", i)
				c.Get("k")
			}
		}(i)
	}
	wg.Wait()
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}
