// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package locale recognises locale identifiers such as "en", "pt_BR" or "zh_Hans_CN".
package locale

import (
	"strings"

	"golang.org/x/text/language"
)

// Normalize rewrites a loosely written identifier into the underscore form:
// "-" becomes "_", the language is lower-cased and everything after the first
// separator is upper-cased.
func Normalize(id string) string {
	id = strings.ReplaceAll(id, "-", "_")

	lang, rest, found := strings.Cut(id, "_")
	if !found {
		return strings.ToLower(id)
	}

	return strings.ToLower(lang) + "_" + strings.ToUpper(rest)
}

// Tag parses an identifier written with either separator.
func Tag(id string) (language.Tag, error) {
	return language.Parse(strings.ReplaceAll(id, "_", "-"))
}

// Exists reports whether id names a known language, optionally with script
// and region. In strict mode id must already be in canonical underscore form
// ("pt_BR", not "pt-br").
func Exists(id string, strict bool) bool {
	if id == "" {
		return false
	}

	if !strict {
		id = Normalize(id)
	}

	tag, err := Tag(id)
	if err != nil || tag == language.Und {
		return false
	}

	if base, confidence := tag.Base(); confidence == language.No || base.String() == "und" {
		return false
	}

	if strict {
		return strings.ReplaceAll(tag.String(), "-", "_") == id
	}

	return true
}
