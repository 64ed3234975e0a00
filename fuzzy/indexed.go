// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package fuzzy

import (
	"sync"

	"github.com/agnivade/levenshtein"
)

// Indexed prunes candidates with a character-frequency lower bound before
// computing exact edit distances. It returns the same result as Naive.
//
// For query q and candidate s, every edit changes the L1 distance between their
// rune frequency vectors by at most two, and the length difference by at most
// one, so max(|len(q)-len(s)|, ceil(L1/2)) never exceeds the edit distance.
type Indexed struct {
	threshold float64

	mu       sync.RWMutex
	items    []string
	lengths  []int
	seen     map[string]struct{}
	postings map[rune][]posting
}

type posting struct {
	item  int
	count int
}

// NewIndexed returns an empty Indexed matcher.
func NewIndexed(threshold float64) *Indexed {
	return &Indexed{
		threshold: threshold,
		seen:      make(map[string]struct{}),
		postings:  make(map[rune][]posting),
	}
}

func (x *Indexed) Add(s string) {
	x.mu.Lock()
	defer x.mu.Unlock()

	x.add(s)
}

func (x *Indexed) AddMany(ss []string) {
	x.mu.Lock()
	defer x.mu.Unlock()

	for _, s := range ss {
		x.add(s)
	}
}

func (x *Indexed) add(s string) {
	if _, ok := x.seen[s]; ok {
		return
	}

	x.seen[s] = struct{}{}

	idx := len(x.items)
	x.items = append(x.items, s)
	x.lengths = append(x.lengths, runeLen(s))

	for r, c := range frequencies(s) {
		x.postings[r] = append(x.postings[r], posting{item: idx, count: c})
	}
}

func (x *Indexed) Search(query string) (string, bool) {
	qlen := runeLen(query)
	if qlen == 0 {
		return "", false
	}

	limit := maxDistance(qlen, x.threshold)

	x.mu.RLock()
	defer x.mu.RUnlock()

	if len(x.items) == 0 {
		return "", false
	}

	overlap := make([]int, len(x.items))

	for r, qc := range frequencies(query) {
		for _, p := range x.postings[r] {
			overlap[p.item] += min(qc, p.count)
		}
	}

	best, bestDist := -1, limit

	for i, candidate := range x.items {
		if lowerBound(qlen, x.lengths[i], overlap[i]) > bestDist {
			continue
		}

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

	return x.items[best], true
}

// Len returns the number of distinct strings in the corpus.
func (x *Indexed) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()

	return len(x.items)
}

func lowerBound(qlen, slen, overlap int) int {
	l1 := qlen + slen - 2*overlap
	bound := (l1 + 1) / 2

	diff := qlen - slen
	if diff < 0 {
		diff = -diff
	}

	return max(bound, diff)
}

func frequencies(s string) map[rune]int {
	freq := make(map[rune]int, len(s))
	for _, r := range s {
		freq[r]++
	}

	return freq
}
