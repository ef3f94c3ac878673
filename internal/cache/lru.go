// Librarium - Library Circulation and Discovery Backend
// Copyright 2026 Librarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/librarium-app/librarium

// Package cache provides a thread-safe LRU cache with TTL used for
// oracle-generated book summaries. Summaries are expensive (an external
// model call) and stable for a given book, so a small bounded cache
// absorbs repeat reads.
package cache

import (
	"sync"
	"time"

	"github.com/librarium-app/librarium/internal/metrics"
)

// entry is a node in the doubly-linked LRU list.
type entry struct {
	key       string
	value     string
	prev      *entry
	next      *entry
	expiresAt time.Time
}

// LRUCache is a thread-safe Least Recently Used cache with TTL.
// Get, Add, and eviction are all O(1): a doubly-linked list keeps
// recency order and a map gives direct node lookup. Expiry is lazy;
// expired entries are dropped when touched.
type LRUCache struct {
	mu sync.RWMutex

	capacity int
	ttl      time.Duration

	// name labels the cache in metrics.
	name string

	items map[string]*entry

	// head.next is most recently used, tail.prev is least recently used.
	head *entry
	tail *entry

	hits   int64
	misses int64
}

// NewLRUCache creates an LRU cache with the given capacity and TTL.
// The name labels the cache's metrics series.
func NewLRUCache(name string, capacity int, ttl time.Duration) *LRUCache {
	if capacity <= 0 {
		capacity = 1000
	}
	if ttl <= 0 {
		ttl = time.Hour
	}

	c := &LRUCache{
		capacity: capacity,
		ttl:      ttl,
		name:     name,
		items:    make(map[string]*entry, capacity),
		head:     &entry{},
		tail:     &entry{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// Get retrieves a value. Found entries move to the front (most recently
// used); expired entries are removed and count as misses.
func (c *LRUCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, exists := c.items[key]; exists {
		if time.Now().After(e.expiresAt) {
			c.removeEntry(e)
			metrics.CacheEvictions.WithLabelValues(c.name).Inc()
			c.miss()
			return "", false
		}
		c.moveToFront(e)
		c.hits++
		metrics.RecordCacheHit(c.name)
		return e.value, true
	}

	c.miss()
	return "", false
}

// Add inserts or refreshes an entry. At capacity the least recently
// used entry is evicted.
func (c *LRUCache) Add(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := time.Now().Add(c.ttl)
	if e, exists := c.items[key]; exists {
		e.value = value
		e.expiresAt = expiresAt
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value, expiresAt: expiresAt}
	c.addToFront(e)
	c.items[key] = e

	for len(c.items) > c.capacity {
		c.evictOldest()
		metrics.CacheEvictions.WithLabelValues(c.name).Inc()
	}
	metrics.CacheSize.WithLabelValues(c.name).Set(float64(len(c.items)))
}

// Remove drops an entry, returning true if it existed. Used to
// invalidate a summary when its book changes.
func (c *LRUCache) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, exists := c.items[key]; exists {
		c.removeEntry(e)
		metrics.CacheSize.WithLabelValues(c.name).Set(float64(len(c.items)))
		return true
	}
	return false
}

// Len returns the current number of entries.
func (c *LRUCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Clear removes all entries.
func (c *LRUCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*entry, c.capacity)
	c.head.next = c.tail
	c.tail.prev = c.head
	metrics.CacheSize.WithLabelValues(c.name).Set(0)
}

// CleanupExpired removes all expired entries and returns how many were
// dropped.
func (c *LRUCache) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for e := c.tail.prev; e != c.head; {
		prev := e.prev
		if now.After(e.expiresAt) {
			c.removeEntry(e)
			removed++
		}
		e = prev
	}
	if removed > 0 {
		metrics.CacheEvictions.WithLabelValues(c.name).Add(float64(removed))
		metrics.CacheSize.WithLabelValues(c.name).Set(float64(len(c.items)))
	}
	return removed
}

// Stats returns hit/miss counters and the current size.
func (c *LRUCache) Stats() (hits, misses int64, size int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses, len(c.items)
}

// Internal methods, called with the lock held.

func (c *LRUCache) miss() {
	c.misses++
	metrics.RecordCacheMiss(c.name)
}

func (c *LRUCache) addToFront(e *entry) {
	e.prev = c.head
	e.next = c.head.next
	c.head.next.prev = e
	c.head.next = e
}

func (c *LRUCache) moveToFront(e *entry) {
	e.prev.next = e.next
	e.next.prev = e.prev
	c.addToFront(e)
}

func (c *LRUCache) removeEntry(e *entry) {
	e.prev.next = e.next
	e.next.prev = e.prev
	delete(c.items, e.key)
}

func (c *LRUCache) evictOldest() {
	oldest := c.tail.prev
	if oldest == c.head {
		return
	}
	c.removeEntry(oldest)
}
