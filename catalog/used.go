// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package catalog

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"slices"

	"codeberg.org/pixivfe/i18ncheck/fuzzy"
	"codeberg.org/pixivfe/i18ncheck/keypath"
	"codeberg.org/pixivfe/i18ncheck/natsort"
)

// UsedRecord is one (key, locale) pair referenced by analysed code.
// Locale is keypath.Wildcard when the call applies to every locale.
type UsedRecord struct {
	Key    string `json:"key"`
	Locale string `json:"locale"`
	File   string `json:"file"`
	Line   int    `json:"line"`
}

// Encode returns the record as base64-encoded JSON, suitable for passing
// between processes as a single token.
func (r UsedRecord) Encode() (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("encoding used record: %w", err)
	}

	return base64.StdEncoding.EncodeToString(data), nil
}

// DecodeUsedRecord reverses UsedRecord.Encode.
func DecodeUsedRecord(s string) (UsedRecord, error) {
	var r UsedRecord

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return r, fmt.Errorf("decoding used record: %w", err)
	}

	if err := json.Unmarshal(data, &r); err != nil {
		return r, fmt.Errorf("decoding used record: %w", err)
	}

	return r, nil
}

// Unused is a catalog entry that no UsedRecord referenced.
type Unused struct {
	Locale string
	Key    string
	File   string
	Line   int

	// Candidate is a similar key that is used, or empty.
	Candidate string
}

// DiffUsed lists catalog entries referenced neither for their own locale nor
// for the wildcard locale. Suggestions come only from keys that were used.
func (c *Catalog) DiffUsed(used []UsedRecord) []Unused {
	usedKeys := make(map[string]map[keypath.Key]struct{})
	usedNames := make(map[string][]string)

	for _, r := range used {
		k := c.resolver.Parse(r.Key)

		set := usedKeys[r.Locale]
		if set == nil {
			set = make(map[keypath.Key]struct{})
			usedKeys[r.Locale] = set
		}

		set[k] = struct{}{}
		usedNames[r.Locale] = append(usedNames[r.Locale], k.String())
	}

	isUsed := func(locale string, k keypath.Key) bool {
		if _, ok := usedKeys[locale][k]; ok {
			return true
		}

		_, ok := usedKeys[keypath.Wildcard][k]

		return ok
	}

	var unused []Unused

	for _, locale := range c.foundLocales {
		var matcher fuzzy.Matcher

		for _, k := range c.order[locale] {
			if isUsed(locale, k) {
				continue
			}

			if matcher == nil {
				matcher = c.usedMatcher(usedNames[locale], usedNames[keypath.Wildcard])
			}

			e := c.data[locale][k]
			u := Unused{Locale: locale, Key: k.String(), File: e.file, Line: e.line}

			if u.File == "" {
				u.File = UnknownFile
			}

			if candidate, ok := matcher.Search(u.Key); ok {
				u.Candidate = candidate
			}

			unused = append(unused, u)
		}
	}

	slices.SortStableFunc(unused, func(a, b Unused) int {
		if n := natsort.CompareFold(a.Locale, b.Locale); n != 0 {
			return n
		}

		return natsort.CompareFold(a.Key, b.Key)
	})

	return unused
}

func (c *Catalog) usedMatcher(names ...[]string) fuzzy.Matcher {
	if c.opts.NewMatcher == nil {
		return fuzzy.Null{}
	}

	m := c.opts.NewMatcher()
	for _, n := range names {
		m.AddMany(n)
	}

	return m
}
