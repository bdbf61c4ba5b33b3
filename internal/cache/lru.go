// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package cache holds the in-process category caches and the Valkey-backed
// broadcaster that fans invalidations out to sibling instances.
package cache

import (
	"sync"
	"time"
)

// entry is a node in the LRU's doubly-linked list.
type entry[V any] struct {
	key       string
	value     V
	expiresAt time.Time
	prev      *entry[V]
	next      *entry[V]
}

// LRU is a fixed-capacity, fixed-TTL least-recently-used cache.
//
// Expiry is measured from the time an entry was written; reading an entry
// moves it to the front of the eviction order but never extends its life.
// All methods are safe for concurrent use.
type LRU[V any] struct {
	mu sync.Mutex

	capacity int
	ttl      time.Duration
	now      func() time.Time

	items map[string]*entry[V]
	// head.next is the most recently used, tail.prev the least.
	head *entry[V]
	tail *entry[V]

	hits   int64
	misses int64
}

// LRUOption configures an LRU.
type LRUOption func(*lruConfig)

type lruConfig struct {
	now func() time.Time
}

// WithClock replaces time.Now as the LRU's time source.
func WithClock(now func() time.Time) LRUOption {
	return func(c *lruConfig) { c.now = now }
}

// NewLRU creates a cache holding at most capacity entries for ttl each.
func NewLRU[V any](capacity int, ttl time.Duration, opts ...LRUOption) *LRU[V] {
	if capacity <= 0 {
		capacity = 100
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	cfg := lruConfig{now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}

	c := &LRU[V]{
		capacity: capacity,
		ttl:      ttl,
		now:      cfg.now,
		items:    make(map[string]*entry[V], capacity),
		head:     &entry[V]{},
		tail:     &entry[V]{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// Get returns the value stored under key if it exists and has not expired.
func (c *LRU[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		if c.now().Before(e.expiresAt) {
			c.moveToFront(e)
			c.hits++
			return e.value, true
		}
		c.remove(e)
	}
	c.misses++
	var zero V
	return zero, false
}

// Set stores value under key, resetting its TTL. The least recently used
// entry is evicted when the cache is full.
func (c *LRU[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(c.ttl)
	if e, ok := c.items[key]; ok {
		e.value = value
		e.expiresAt = expiresAt
		c.moveToFront(e)
		return
	}

	e := &entry[V]{key: key, value: value, expiresAt: expiresAt}
	c.addToFront(e)
	c.items[key] = e
	for len(c.items) > c.capacity {
		c.remove(c.tail.prev)
	}
}

// Delete removes key and reports whether it was present.
func (c *LRU[V]) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		c.remove(e)
		return true
	}
	return false
}

// Clear drops every entry. Hit and miss counters are kept.
func (c *LRU[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*entry[V], c.capacity)
	c.head.next = c.tail
	c.tail.prev = c.head
}

// CleanupExpired removes all expired entries and returns how many were dropped.
func (c *LRU[V]) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for e := c.tail.prev; e != c.head; {
		prev := e.prev
		if !now.Before(e.expiresAt) {
			c.remove(e)
			removed++
		}
		e = prev
	}
	return removed
}

// Len returns the number of stored entries, including expired ones not yet
// cleaned up.
func (c *LRU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns a snapshot of the cache's size and counters.
func (c *LRU[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Size:     len(c.items),
		Capacity: c.capacity,
		TTL:      c.ttl.String(),
		Hits:     c.hits,
		Misses:   c.misses,
	}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}

func (c *LRU[V]) addToFront(e *entry[V]) {
	e.prev = c.head
	e.next = c.head.next
	c.head.next.prev = e
	c.head.next = e
}

func (c *LRU[V]) unlink(e *entry[V]) {
	e.prev.next = e.next
	e.next.prev = e.prev
}

func (c *LRU[V]) moveToFront(e *entry[V]) {
	c.unlink(e)
	c.addToFront(e)
}

func (c *LRU[V]) remove(e *entry[V]) {
	c.unlink(e)
	delete(c.items, e.key)
}

// Stats describes one cache for the admin stats and health endpoints.
type Stats struct {
	Name     string  `json:"name"`
	Size     int     `json:"size"`
	Capacity int     `json:"capacity"`
	TTL      string  `json:"ttl"`
	Hits     int64   `json:"hits"`
	Misses   int64   `json:"misses"`
	HitRate  float64 `json:"hitRate"`
}

// Utilization returns Size/Capacity.
func (s Stats) Utilization() float64 {
	if s.Capacity == 0 {
		return 0
	}
	return float64(s.Size) / float64(s.Capacity)
}
