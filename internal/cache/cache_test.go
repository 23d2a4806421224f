// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func newTestMemory(t *testing.T, capacity int) (*Memory, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewMemory(capacity, time.Minute, time.Hour)
	c.mu.Lock()
	c.now = clock.Now
	c.mu.Unlock()
	t.Cleanup(func() { _ = c.Close() })
	return c, clock
}

func TestMemoryBasicOperations(t *testing.T) {
	c, _ := newTestMemory(t, 10)
	ctx := context.Background()

	c.Set(ctx, "key1", []byte("value1"), 0)
	value, ok := c.Get(ctx, "key1")
	if !ok {
		t.Fatal("Expected key1 to exist")
	}
	if string(value) != "value1" {
		t.Errorf("Expected value1, got %s", value)
	}

	if _, ok := c.Get(ctx, "key2"); ok {
		t.Error("Expected key2 to not exist")
	}

	stats := c.GetStats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.Entries != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.HitRate() != 50 {
		t.Errorf("HitRate() = %v, want 50", stats.HitRate())
	}
}

func TestMemoryStoresCopy(t *testing.T) {
	c, _ := newTestMemory(t, 10)
	ctx := context.Background()

	buf := []byte("original")
	c.Set(ctx, "k", buf, 0)
	buf[0] = 'X'

	got, _ := c.Get(ctx, "k")
	if string(got) != "original" {
		t.Errorf("cached value changed with caller buffer: %s", got)
	}
}

func TestMemoryExpiration(t *testing.T) {
	c, clock := newTestMemory(t, 10)
	ctx := context.Background()

	c.Set(ctx, "default", []byte("a"), 0)
	c.Set(ctx, "short", []byte("b"), 10*time.Second)

	clock.Advance(30 * time.Second)
	if _, ok := c.Get(ctx, "short"); ok {
		t.Error("Expected short to be expired")
	}
	if _, ok := c.Get(ctx, "default"); !ok {
		t.Error("Expected default to still be cached")
	}

	clock.Advance(time.Minute)
	if _, ok := c.Get(ctx, "default"); ok {
		t.Error("Expected default to be expired")
	}

	if got := c.GetStats().Expirations; got != 2 {
		t.Errorf("Expirations = %d, want 2", got)
	}
}

func TestMemoryLRUEviction(t *testing.T) {
	c, _ := newTestMemory(t, 3)
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		c.Set(ctx, k, []byte(k), 0)
	}

	// Touch "a" so "b" becomes least recently used.
	c.Get(ctx, "a")
	c.Set(ctx, "d", []byte("d"), 0)

	if _, ok := c.Get(ctx, "b"); ok {
		t.Error("Expected b to be evicted")
	}
	for _, k := range []string{"a", "c", "d"} {
		if _, ok := c.Get(ctx, k); !ok {
			t.Errorf("Expected %s to be cached", k)
		}
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}
	if got := c.GetStats().Evictions; got != 1 {
		t.Errorf("Evictions = %d, want 1", got)
	}
}

func TestMemoryOverwrite(t *testing.T) {
	c, _ := newTestMemory(t, 2)
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v1"), 0)
	c.Set(ctx, "k", []byte("v2"), 0)

	got, _ := c.Get(ctx, "k")
	if string(got) != "v2" {
		t.Errorf("Get() = %s, want v2", got)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestMemoryDeleteAndClear(t *testing.T) {
	c, _ := newTestMemory(t, 10)
	ctx := context.Background()

	c.Set(ctx, "a", []byte("1"), 0)
	c.Set(ctx, "b", []byte("2"), 0)
	c.Set(ctx, "c", []byte("3"), 0)

	c.Delete("a")
	c.Delete("missing")
	if _, ok := c.Get(ctx, "a"); ok {
		t.Error("Expected a to be deleted")
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d", c.Len())
	}
	if _, ok := c.Get(ctx, "b"); ok {
		t.Error("Expected b to be cleared")
	}

	// The list must still work after Clear.
	c.Set(ctx, "d", []byte("4"), 0)
	if _, ok := c.Get(ctx, "d"); !ok {
		t.Error("Expected d after Clear")
	}
}

func TestMemoryCleanup(t *testing.T) {
	c, clock := newTestMemory(t, 10)
	ctx := context.Background()

	c.Set(ctx, "old1", []byte("x"), time.Second)
	c.Set(ctx, "old2", []byte("x"), time.Second)
	c.Set(ctx, "fresh", []byte("x"), time.Hour)

	clock.Advance(time.Minute)
	if removed := c.cleanup(); removed != 2 {
		t.Errorf("cleanup() removed %d, want 2", removed)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
	if !c.GetStats().LastCleanup.Equal(clock.Now()) {
		t.Error("LastCleanup not updated")
	}
}

func TestMemoryDefaults(t *testing.T) {
	c := NewMemory(0, 0, 0)
	defer c.Close()

	if c.capacity != DefaultCapacity {
		t.Errorf("capacity = %d, want %d", c.capacity, DefaultCapacity)
	}
	if c.ttl != DefaultTTL {
		t.Errorf("ttl = %v, want %v", c.ttl, DefaultTTL)
	}

	// Close is idempotent.
	if err := c.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}
}

func TestMemoryConcurrency(t *testing.T) {
	c, _ := newTestMemory(t, 50)
	ctx := context.Background()

	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", (g*200+i)%80)
				c.Set(ctx, key, []byte(key), 0)
				c.Get(ctx, key)
			}
		}(g)
	}
	wg.Wait()

	if c.Len() > 50 {
		t.Errorf("Len() = %d exceeds capacity", c.Len())
	}
}
