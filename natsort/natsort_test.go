// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package natsort

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompare(t *testing.T) {
	t.Parallel()

	cases := []struct {
		a, b string
		want int
	}{
		{"file2", "file10", -1},
		{"file10", "file2", 1},
		{"same", "same", 0},
		{"B", "a", -1},
		{"01x", "1x", -1},
		{"1x", "01x", 1},
	}

	for _, tc := range cases {
		t.Run(tc.a+"_"+tc.b, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, Compare(tc.a, tc.b))
		})
	}
}

func TestCompareFold(t *testing.T) {
	t.Parallel()

	assert.Negative(t, CompareFold("file2", "file10"))
	assert.Negative(t, CompareFold("apple", "Banana"))
	assert.Positive(t, CompareFold("b", "A"))
	assert.Zero(t, CompareFold("same", "same"))
	assert.NotZero(t, CompareFold("Same", "same"))
}

// Compact after sorting must only drop exact duplicates.
func TestCompareKeepsNumericallyEqualNames(t *testing.T) {
	t.Parallel()

	names := []string{"1x", "01x", "1x", "001x"}
	slices.SortFunc(names, Compare)

	assert.Equal(t, []string{"001x", "01x", "1x"}, slices.Compact(names))
}
