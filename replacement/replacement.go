// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package replacement checks ":name" placeholders in translation strings
// against the replacement names passed at a call site.
//
// A name may appear as ":name", ":Name" or ":NAME"; the casing selects how the
// substituted value is cased. Exactly one variant is expected.
package replacement

import (
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"codeberg.org/pixivfe/i18ncheck/diagnostic"
	"codeberg.org/pixivfe/i18ncheck/natsort"
)

// Problem is one finding about a placeholder name.
type Problem struct {
	Identifier diagnostic.Identifier
	Name       string
	Message    string
}

// Analyze reports names that never appear in value and names that appear in
// more than one casing. Names are checked in natural order.
func Analyze(value string, names []string) []Problem {
	if len(names) == 0 {
		return nil
	}

	sorted := slices.Clone(names)
	slices.SortFunc(sorted, natsort.Compare)
	sorted = slices.Compact(sorted)

	upper := cases.Upper(language.Und)

	var problems []Problem

	for _, name := range sorted {
		switch count := countVariants(value, name, upper); {
		case count == 0:
			problems = append(problems, Problem{
				Identifier: diagnostic.InvalidReplacementUnused,
				Name:       name,
				Message:    "Unused translation replacement: " + diagnostic.Quote(name),
			})
		case count > 1:
			problems = append(problems, Problem{
				Identifier: diagnostic.InvalidReplacementMultipleVariants,
				Name:       name,
				Message:    "Replacement string matches multiple variants: " + diagnostic.Quote(name),
			})
		}
	}

	return problems
}

// Variants returns the distinct spellings of name: as given, with an upper-cased
// first letter, and fully upper-cased.
func Variants(name string) []string {
	return variants(name, cases.Upper(language.Und))
}

func variants(name string, upper cases.Caser) []string {
	out := []string{name}

	for _, v := range []string{ucfirst(name, upper), upper.String(name)} {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}

	return out
}

func countVariants(value, name string, upper cases.Caser) int {
	count := 0

	for _, v := range variants(name, upper) {
		if strings.Contains(value, ":"+v) {
			count++
		}
	}

	return count
}

func ucfirst(s string, upper cases.Caser) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}

	return upper.String(string(r)) + s[size:]
}
