// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package lrucache provides a thread-safe, fixed-capacity least-recently-used cache of strings.

When created with compression enabled, values are stored zstd-compressed whenever
that saves space and are decompressed transparently by [Cache.Get].
*/
package lrucache

import (
	"container/list"
	"errors"
	"sync"

	"github.com/klauspost/compress/zstd"
)

var ErrInvalidSize = errors.New("must provide a positive size")

// Cache is a fixed-capacity LRU cache mapping strings to strings.
// Instances must be constructed with [New].
type Cache struct {
	size      int
	evictList *list.List
	items     map[string]*list.Element
	lock      sync.Mutex

	hits   uint64
	misses uint64

	enc *zstd.Encoder
	dec *zstd.Decoder
}

type entry struct {
	key        string
	plain      string
	packed     []byte
	compressed bool
}

// Stats is a snapshot of cache usage counters.
type Stats struct {
	Len    int
	Hits   uint64
	Misses uint64
}

// New creates a cache holding at most size entries.
func New(size int, compress bool) (*Cache, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}

	c := &Cache{
		size:      size,
		evictList: list.New(),
		items:     make(map[string]*list.Element),
	}

	if compress {
		// nil writer and reader: only EncodeAll/DecodeAll are used.
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
		if err != nil {
			return nil, err
		}

		dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
		if err != nil {
			return nil, err
		}

		c.enc = enc
		c.dec = dec
	}

	return c, nil
}

// Add stores value under key, marking it most recently used.
// It reports whether an older entry was evicted to make room.
func (c *Cache) Add(key, value string) bool {
	ent := c.pack(key, value)

	c.lock.Lock()
	defer c.lock.Unlock()

	if el, ok := c.items[key]; ok {
		c.evictList.MoveToFront(el)
		el.Value = ent

		return false
	}

	c.items[key] = c.evictList.PushFront(ent)

	if c.evictList.Len() <= c.size {
		return false
	}

	if oldest := c.evictList.Back(); oldest != nil {
		c.removeElement(oldest)
	}

	return true
}

// Get returns the value stored under key and marks it most recently used.
func (c *Cache) Get(key string) (string, bool) {
	c.lock.Lock()

	el, ok := c.items[key]
	if !ok {
		c.misses++
		c.lock.Unlock()

		return "", false
	}

	c.hits++
	c.evictList.MoveToFront(el)
	ent, _ := el.Value.(*entry)
	c.lock.Unlock()

	return c.unpack(ent)
}

// Remove deletes key and reports whether it was present.
func (c *Cache) Remove(key string) bool {
	c.lock.Lock()
	defer c.lock.Unlock()

	el, ok := c.items[key]
	if ok {
		c.removeElement(el)
	}

	return ok
}

// Purge drops every entry. Counters are kept.
func (c *Cache) Purge() {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.evictList.Init()
	clear(c.items)
}

// Keys returns all keys from the oldest to the newest.
func (c *Cache) Keys() []string {
	c.lock.Lock()
	defer c.lock.Unlock()

	keys := make([]string, 0, len(c.items))
	for el := c.evictList.Back(); el != nil; el = el.Prev() {
		if ent, ok := el.Value.(*entry); ok {
			keys = append(keys, ent.key)
		}
	}

	return keys
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.evictList.Len()
}

// Stats returns the current usage counters.
func (c *Cache) Stats() Stats {
	c.lock.Lock()
	defer c.lock.Unlock()

	return Stats{Len: c.evictList.Len(), Hits: c.hits, Misses: c.misses}
}

func (c *Cache) removeElement(el *list.Element) {
	c.evictList.Remove(el)

	if ent, ok := el.Value.(*entry); ok {
		delete(c.items, ent.key)
	}
}

// pack compresses value when enabled and smaller. Safe without the lock:
// zstd.Encoder supports concurrent EncodeAll calls.
func (c *Cache) pack(key, value string) *entry {
	if c.enc != nil && value != "" {
		packed := c.enc.EncodeAll([]byte(value), nil)
		if len(packed) < len(value) {
			return &entry{key: key, packed: packed, compressed: true}
		}
	}

	return &entry{key: key, plain: value}
}

// unpack treats a failed decompression as a miss.
func (c *Cache) unpack(ent *entry) (string, bool) {
	if ent == nil {
		return "", false
	}

	if !ent.compressed {
		return ent.plain, true
	}

	if c.dec == nil {
		return "", false
	}

	decoded, err := c.dec.DecodeAll(ent.packed, nil)
	if err != nil {
		return "", false
	}

	return string(decoded), true
}
