// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

package cache

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/productrec/internal/metrics"
)

const (
	// DefaultTTL applies when a Set call passes a non-positive TTL.
	DefaultTTL = 5 * time.Minute

	// DefaultCapacity bounds the memory cache when no capacity is configured.
	DefaultCapacity = 10000

	// DefaultCleanupInterval is how often expired entries are swept.
	DefaultCleanupInterval = time.Minute
)

// entry is a node in the LRU list.
type entry struct {
	key       string
	value     []byte
	expiresAt time.Time
	prev      *entry
	next      *entry
}

// Stats tracks cache performance counters.
type Stats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	Expirations int64
	Entries     int64
	LastCleanup time.Time
}

// HitRate returns hits as a percentage of lookups.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// Memory is a thread-safe in-process cache with per-entry TTL and a
// capacity bound enforced by least-recently-used eviction.
//
// Expired entries are removed lazily on Get and periodically by a
// background sweep that runs until Close.
type Memory struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	items    map[string]*entry

	// head.next is the most recently used entry, tail.prev the least.
	head *entry
	tail *entry

	stats Stats

	stop     chan struct{}
	stopOnce sync.Once
	now      func() time.Time
}

// NewMemory creates a memory cache and starts its cleanup loop.
// Non-positive arguments select the package defaults.
func NewMemory(capacity int, ttl, cleanupInterval time.Duration) *Memory {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if cleanupInterval <= 0 {
		cleanupInterval = DefaultCleanupInterval
	}

	c := &Memory{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*entry),
		head:     &entry{},
		tail:     &entry{},
		stop:     make(chan struct{}),
		now:      time.Now,
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	c.stats.LastCleanup = c.now()

	go c.cleanupLoop(cleanupInterval)

	return c
}

// Name identifies the backend in metrics.
func (c *Memory) Name() string { return "memory" }

// Get returns the cached value for key. The returned slice must not be
// modified.
func (c *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		metrics.RecordCacheOperation(c.Name(), "get", "miss")
		return nil, false
	}

	if c.now().After(e.expiresAt) {
		c.removeLocked(e)
		c.stats.Misses++
		c.stats.Expirations++
		metrics.RecordCacheOperation(c.Name(), "get", "miss")
		return nil, false
	}

	c.moveToFrontLocked(e)
	c.stats.Hits++
	metrics.RecordCacheOperation(c.Name(), "get", "hit")
	return e.value, true
}

// Set stores a copy of value under key. A non-positive ttl uses the
// cache default.
func (c *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.ttl
	}
	stored := make([]byte, len(value))
	copy(stored, value)

	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(ttl)
	if e, ok := c.items[key]; ok {
		e.value = stored
		e.expiresAt = expiresAt
		c.moveToFrontLocked(e)
	} else {
		e := &entry{key: key, value: stored, expiresAt: expiresAt}
		c.addToFrontLocked(e)
		c.items[key] = e

		for len(c.items) > c.capacity {
			c.removeLocked(c.tail.prev)
			c.stats.Evictions++
		}
	}

	c.stats.Entries = int64(len(c.items))
	metrics.RecordCacheOperation(c.Name(), "set", "ok")
}

// Delete removes key.
func (c *Memory) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		c.removeLocked(e)
		c.stats.Entries = int64(len(c.items))
	}
}

// Clear removes all entries.
func (c *Memory) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.Evictions += int64(len(c.items))
	c.items = make(map[string]*entry)
	c.head.next = c.tail
	c.tail.prev = c.head
	c.stats.Entries = 0
}

// Len returns the number of entries, including expired ones not yet swept.
func (c *Memory) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// GetStats returns a snapshot of the cache counters.
func (c *Memory) GetStats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Entries = int64(len(c.items))
	return s
}

// Close stops the cleanup loop. The cache remains usable.
func (c *Memory) Close() error {
	c.stopOnce.Do(func() { close(c.stop) })
	return nil
}

func (c *Memory) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

// cleanup removes every expired entry and returns how many were removed.
func (c *Memory) cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for e := c.tail.prev; e != c.head; {
		prev := e.prev
		if now.After(e.expiresAt) {
			c.removeLocked(e)
			removed++
		}
		e = prev
	}

	c.stats.Expirations += int64(removed)
	c.stats.Entries = int64(len(c.items))
	c.stats.LastCleanup = now
	metrics.SetCacheEntries(c.Name(), len(c.items))
	return removed
}

// List operations below must be called with mu held.

func (c *Memory) addToFrontLocked(e *entry) {
	e.prev = c.head
	e.next = c.head.next
	c.head.next.prev = e
	c.head.next = e
}

func (c *Memory) moveToFrontLocked(e *entry) {
	e.prev.next = e.next
	e.next.prev = e.prev
	c.addToFrontLocked(e)
}

func (c *Memory) removeLocked(e *entry) {
	e.prev.next = e.next
	e.next.prev = e.prev
	delete(c.items, e.key)
}
