// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package natsort provides the natural string orderings shared by catalogs, loaders and reports.
package natsort

import (
	"strings"

	"github.com/maruel/natural"
)

// Compare orders strings naturally, so "file2" sorts before "file10".
// Strings that natural ordering treats as equal, such as "01x" and "1x",
// fall back to a byte comparison so the order is total.
func Compare(a, b string) int {
	switch {
	case natural.Less(a, b):
		return -1
	case natural.Less(b, a):
		return 1
	}

	return strings.Compare(a, b)
}

// CompareFold orders strings naturally ignoring case, then by Compare.
func CompareFold(a, b string) int {
	if c := Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
		return c
	}

	return Compare(a, b)
}
