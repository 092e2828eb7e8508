package cache

import (
	"testing"
	"time"
)

func TestLRUCacheSetGet(t *testing.T) {
	c := NewLRUCache(4, time.Hour)

	c.Set("a", "alpha")
	c.Set("b", 2)

	if val, ok := c.Get("a"); !ok || val != "alpha" {
		t.Fatalf("expected alpha, got %v (ok=%v)", val, ok)
	}
	if val, ok := c.Get("b"); !ok || val != 2 {
		t.Fatalf("expected 2, got %v (ok=%v)", val, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Fatalf("expected a miss for an unknown key")
	}
	if c.Len() != 2 {
		t.Fatalf("expected 2 live entries, got %d", c.Len())
	}
}

func TestLRUCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache(3, time.Hour)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	// Touch "a" so "b" becomes the eviction candidate.
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("expected a to be present")
	}
	c.Set("d", 4)

	if _, ok := c.Get("b"); ok {
		t.Fatalf("expected b to be evicted")
	}
	for _, key := range []string{"a", "c", "d"} {
		if _, ok := c.Get(key); !ok {
			t.Fatalf("expected %q to survive the eviction", key)
		}
	}
	if c.Len() != 3 {
		t.Fatalf("expected the cache to hold its capacity, got %d", c.Len())
	}
}

func TestLRUCacheUpdateDoesNotGrow(t *testing.T) {
	c := NewLRUCache(2, time.Hour)

	c.Set("a", 1)
	c.Set("a", 2)
	if c.Len() != 1 {
		t.Fatalf("expected updating a key to keep one entry, got %d", c.Len())
	}
	if val, _ := c.Get("a"); val != 2 {
		t.Fatalf("expected the updated value, got %v", val)
	}
}

func TestLRUCacheTTLExpiry(t *testing.T) {
	c := NewLRUCache(10, 10*time.Millisecond)

	c.Set("key", "value")
	if _, ok := c.Get("key"); !ok {
		t.Fatalf("expected the fresh entry to be served")
	}

	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("key"); ok {
		t.Fatalf("expected the entry to expire")
	}
}

func TestLRUCacheClear(t *testing.T) {
	c := NewLRUCache(4, time.Hour)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Clear()
	if c.Len() != 0 {
		t.Fatalf("expected an empty cache after Clear, got %d entries", c.Len())
	}
	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected cleared entries to be gone")
	}
}

func TestHashKeyStable(t *testing.T) {
	if HashKey("prompt") != HashKey("prompt") {
		t.Fatalf("expected identical prompts to hash identically")
	}
	if HashKey("prompt") == HashKey("other prompt") {
		t.Fatalf("expected distinct prompts to hash differently")
	}
}

func TestLRUCacheDumpRestore(t *testing.T) {
	c := NewLRUCache(4, time.Hour)
	c.Set("a", "alpha")
	c.Set("b", "beta")

	dump := c.Dump()
	if len(dump) != 2 {
		t.Fatalf("expected 2 dumped entries, got %d", len(dump))
	}

	// An already-expired entry must not survive a restore.
	dump["stale"] = CacheEntry{Value: "old", ExpiresAt: time.Now().Add(-time.Minute)}

	restored := NewLRUCache(4, time.Hour)
	restored.Restore(dump)

	if restored.Len() != 2 {
		t.Fatalf("expected the expired entry to be skipped, got %d entries", restored.Len())
	}
	if val, ok := restored.Get("a"); !ok || val != "alpha" {
		t.Fatalf("expected alpha after restore, got %v (ok=%v)", val, ok)
	}
	if _, ok := restored.Get("stale"); ok {
		t.Fatalf("expected the stale entry to be dropped")
	}
}

func TestLRUCacheRestoreRespectsCapacity(t *testing.T) {
	big := NewLRUCache(10, time.Hour)
	for _, key := range []string{"a", "b", "c", "d", "e"} {
		big.Set(key, key)
	}

	small := NewLRUCache(2, time.Hour)
	small.Restore(big.Dump())
	if small.Len() != 2 {
		t.Fatalf("expected the restore to evict down to capacity, got %d", small.Len())
	}
}
