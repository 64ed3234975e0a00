// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package fuzzy finds the closest known string to a query for "did you mean" suggestions.

A candidate matches when its edit distance to the query, divided by the
query's length in runes, does not exceed the threshold. Among matches the
smallest distance wins and ties go to the string inserted first.
*/
package fuzzy

import (
	"errors"
	"fmt"
	"math"
	"unicode/utf8"
)

// DefaultThreshold is the default maximum distance-to-length ratio.
const DefaultThreshold = 0.25

// Algorithm names accepted by New.
const (
	AlgorithmNaive   = "naive"
	AlgorithmIndexed = "indexed"
)

var (
	ErrUnknownAlgorithm = errors.New("unknown fuzzy algorithm")
	ErrInvalidThreshold = errors.New("threshold must be within (0, 1]")
)

// Matcher is a corpus of strings that can be searched approximately.
type Matcher interface {
	Add(s string)
	AddMany(ss []string)
	Search(query string) (string, bool)
}

// New returns a matcher for the named algorithm.
func New(algorithm string, threshold float64) (Matcher, error) {
	if threshold <= 0 || threshold > 1 || math.IsNaN(threshold) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidThreshold, threshold)
	}

	switch algorithm {
	case AlgorithmNaive:
		return NewNaive(threshold), nil
	case AlgorithmIndexed, "":
		return NewIndexed(threshold), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, algorithm)
	}
}

// maxDistance is the largest edit distance accepted for a query of queryLen runes.
// The epsilon keeps ratios such as 3/10 at a threshold of 0.3 inclusive.
func maxDistance(queryLen int, threshold float64) int {
	return int(math.Floor(threshold*float64(queryLen) + 1e-9))
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// Null never matches anything.
type Null struct{}

func (Null) Add(string) {}

func (Null) AddMany([]string) {}

func (Null) Search(string) (string, bool) {
	return "", false
}
