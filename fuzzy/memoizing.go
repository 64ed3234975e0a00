// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package fuzzy

import (
	"strings"
	"sync"

	"codeberg.org/pixivfe/i18ncheck/fuzzy/lrucache"
)

const (
	hitMarker  = "\x01"
	missMarker = "\x00"
)

// Memoizing caches search results of another Matcher by exact query.
// Adding strings invalidates the cache.
type Memoizing struct {
	inner Matcher
	cache *lrucache.Cache

	// Held for writing while the corpus changes so no stale result is cached.
	mu sync.RWMutex
}

// NewMemoizing wraps inner with a cache of at most size queries.
func NewMemoizing(inner Matcher, size int, compress bool) (*Memoizing, error) {
	cache, err := lrucache.New(size, compress)
	if err != nil {
		return nil, err
	}

	return &Memoizing{inner: inner, cache: cache}, nil
}

func (m *Memoizing) Add(s string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.inner.Add(s)
	m.cache.Purge()
}

func (m *Memoizing) AddMany(ss []string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.inner.AddMany(ss)
	m.cache.Purge()
}

func (m *Memoizing) Search(query string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if cached, ok := m.cache.Get(query); ok {
		if match, found := strings.CutPrefix(cached, hitMarker); found {
			return match, true
		}

		return "", false
	}

	match, found := m.inner.Search(query)
	if found {
		m.cache.Add(query, hitMarker+match)
	} else {
		m.cache.Add(query, missMarker)
	}

	return match, found
}

// Stats exposes the underlying cache counters.
func (m *Memoizing) Stats() lrucache.Stats {
	return m.cache.Stats()
}
