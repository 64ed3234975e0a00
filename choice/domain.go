// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package choice

import (
	"cmp"
	"math"
	"slices"
	"strconv"
)

// Domain is a set of consecutive integers: a single value, a closed range,
// or a range unbounded on one or both sides. Bounds are inclusive.
//
// It describes both the possible values of a count argument and the values
// selected by one choice segment.
type Domain struct {
	Lo, Hi                   int64
	LoUnbounded, HiUnbounded bool
}

// Constant is the domain holding only n.
func Constant(n int64) Domain {
	return Domain{Lo: n, Hi: n}
}

// Between is the closed range [lo, hi]. Reversed bounds are swapped.
func Between(lo, hi int64) Domain {
	if lo > hi {
		lo, hi = hi, lo
	}

	return Domain{Lo: lo, Hi: hi}
}

// AtLeast is [lo, +inf).
func AtLeast(lo int64) Domain {
	return Domain{Lo: lo, HiUnbounded: true}
}

// AtMost is (-inf, hi].
func AtMost(hi int64) Domain {
	return Domain{Hi: hi, LoUnbounded: true}
}

// Unbounded is every integer.
func Unbounded() Domain {
	return Domain{LoUnbounded: true, HiUnbounded: true}
}

// IsConstant reports whether the domain holds exactly one value.
func (d Domain) IsConstant() bool {
	return !d.LoUnbounded && !d.HiUnbounded && d.Lo == d.Hi
}

// Contains reports whether every value of other is also in d.
func (d Domain) Contains(other Domain) bool {
	lowOK := d.LoUnbounded || (!other.LoUnbounded && d.Lo <= other.Lo)
	highOK := d.HiUnbounded || (!other.HiUnbounded && d.Hi >= other.Hi)

	return lowOK && highOK
}

// String describes the domain the way a type checker would: "3", "int<2, 4>",
// "int<min, 4>", "int<2, max>" or "int".
func (d Domain) String() string {
	switch {
	case d.LoUnbounded && d.HiUnbounded:
		return "int"
	case d.IsConstant():
		return strconv.FormatInt(d.Lo, 10)
	}

	lo, hi := "min", "max"
	if !d.LoUnbounded {
		lo = strconv.FormatInt(d.Lo, 10)
	}

	if !d.HiUnbounded {
		hi = strconv.FormatInt(d.Hi, 10)
	}

	return "int<" + lo + ", " + hi + ">"
}

// Set is a union of domains kept as sorted, disjoint, non-adjacent intervals.
type Set struct {
	intervals []Domain
}

// Add merges d into the set.
func (s *Set) Add(d Domain) {
	s.intervals = append(s.intervals, d)

	slices.SortFunc(s.intervals, compareLow)

	merged := s.intervals[:1]

	for _, next := range s.intervals[1:] {
		last := &merged[len(merged)-1]

		if touches(*last, next) {
			if next.HiUnbounded || (!last.HiUnbounded && next.Hi > last.Hi) {
				last.Hi = next.Hi
				last.HiUnbounded = next.HiUnbounded
			}

			continue
		}

		merged = append(merged, next)
	}

	s.intervals = merged
}

// Empty reports whether nothing was added.
func (s *Set) Empty() bool {
	return len(s.intervals) == 0
}

// Covers reports whether every value of d is in the set.
func (s *Set) Covers(d Domain) bool {
	for _, iv := range s.intervals {
		if iv.Contains(d) {
			return true
		}
	}

	return false
}

// Intervals returns the merged intervals in ascending order.
func (s *Set) Intervals() []Domain {
	return slices.Clone(s.intervals)
}

func compareLow(a, b Domain) int {
	switch {
	case a.LoUnbounded && b.LoUnbounded:
		return 0
	case a.LoUnbounded:
		return -1
	case b.LoUnbounded:
		return 1
	}

	return cmp.Compare(a.Lo, b.Lo)
}

// touches reports whether next, which starts no lower than last, overlaps
// last or begins right after it.
func touches(last, next Domain) bool {
	if last.HiUnbounded || next.LoUnbounded {
		return true
	}

	if last.Hi == math.MaxInt64 {
		return true
	}

	return next.Lo <= last.Hi+1
}
