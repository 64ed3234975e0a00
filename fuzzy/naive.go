// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package fuzzy

import (
	"sync"

	"github.com/agnivade/levenshtein"
)

// Naive computes the edit distance to every string in the corpus.
type Naive struct {
	threshold float64

	mu    sync.RWMutex
	items []string
	seen  map[string]struct{}
}

// NewNaive returns an empty Naive matcher.
func NewNaive(threshold float64) *Naive {
	return &Naive{
		threshold: threshold,
		seen:      make(map[string]struct{}),
	}
}

func (n *Naive) Add(s string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.add(s)
}

func (n *Naive) AddMany(ss []string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, s := range ss {
		n.add(s)
	}
}

func (n *Naive) add(s string) {
	if _, ok := n.seen[s]; ok {
		return
	}

	n.seen[s] = struct{}{}
	n.items = append(n.items, s)
}

func (n *Naive) Search(query string) (string, bool) {
	qlen := runeLen(query)
	if qlen == 0 {
		return "", false
	}

	limit := maxDistance(qlen, n.threshold)

	n.mu.RLock()
	defer n.mu.RUnlock()

	best, bestDist := -1, limit

	for i, candidate := range n.items {
		d := levenshtein.ComputeDistance(query, candidate)
		if d > limit {
			continue
		}

		if best == -1 || d < bestDist {
			best, bestDist = i, d

			if d == 0 {
				break
			}
		}
	}

	if best == -1 {
		return "", false
	}

	return n.items[best], true
}

// Len returns the number of distinct strings in the corpus.
func (n *Naive) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return len(n.items)
}
