// Copyright 2026 The Kivinge Authors
// SPDX-License-Identifier: Apache-2.0

package mailfs

import (
	"container/list"
	"time"

	"github.com/kivinge/kivinge/lib/clock"
)

// ttlCache is a staleness-bounded cache: entries older than the TTL
// are treated identically to a miss. Only successful fetches are
// stored — a failed fetch is retried on the next call (fail-open, so
// transient remote errors are never remembered past the request that
// observed them).
//
// Not safe for concurrent use; the Driver serializes access.
type ttlCache[K comparable, V any] struct {
	clock   clock.Clock
	ttl     time.Duration
	entries map[K]ttlEntry[V]
}

type ttlEntry[V any] struct {
	value     V
	fetchedAt time.Time
}

func newTTLCache[K comparable, V any](clk clock.Clock, ttl time.Duration) *ttlCache[K, V] {
	return &ttlCache[K, V]{
		clock:   clk,
		ttl:     ttl,
		entries: make(map[K]ttlEntry[V]),
	}
}

// getOrFetch returns the cached value when present and fresh,
// otherwise invokes fetch exactly once and stores the result on
// success, refreshing its timestamp.
func (c *ttlCache[K, V]) getOrFetch(key K, fetch func() (V, error)) (V, error) {
	now := c.clock.Now()
	if entry, ok := c.entries[key]; ok && now.Sub(entry.fetchedAt) < c.ttl {
		return entry.value, nil
	}

	value, err := fetch()
	if err != nil {
		var zero V
		return zero, err
	}
	c.entries[key] = ttlEntry[V]{value: value, fetchedAt: now}
	return value, nil
}

// lruCache is a count-bounded cache with least-recently-used eviction
// and no time-based expiry. Used for attachment bodies, which are
// immutable — only memory residency matters, not staleness.
//
// Not safe for concurrent use; the Driver serializes access.
type lruCache[K comparable, V any] struct {
	capacity int
	elements map[K]*list.Element
	order    *list.List // front = most recently used
}

type lruEntry[K comparable, V any] struct {
	key   K
	value V
}

func newLRUCache[K comparable, V any](capacity int) *lruCache[K, V] {
	return &lruCache[K, V]{
		capacity: capacity,
		elements: make(map[K]*list.Element),
		order:    list.New(),
	}
}

// getOrFetch returns the cached value when resident (refreshing its
// LRU position), otherwise invokes fetch exactly once and stores the
// result on success, evicting the least recently used entry when over
// capacity. Failures are not cached.
func (c *lruCache[K, V]) getOrFetch(key K, fetch func() (V, error)) (V, error) {
	if element, ok := c.elements[key]; ok {
		c.order.MoveToFront(element)
		return element.Value.(lruEntry[K, V]).value, nil
	}

	value, err := fetch()
	if err != nil {
		var zero V
		return zero, err
	}

	c.elements[key] = c.order.PushFront(lruEntry[K, V]{key: key, value: value})
	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.elements, oldest.Value.(lruEntry[K, V]).key)
	}
	return value, nil
}

// len reports the number of resident entries.
func (c *lruCache[K, V]) len() int {
	return c.order.Len()
}
