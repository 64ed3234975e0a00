// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package rules turns translation calls found in source code into diagnostics.

Each rule is a Check: a function of the call, the translations it may resolve
to and a read-only Env. Select picks the checks to run from Options, and a
Runner applies them to many calls in parallel while collecting the keys the
calls used, so unused catalog entries can be reported at the end.
*/
package rules

import (
	"slices"

	"codeberg.org/pixivfe/i18ncheck/catalog"
	"codeberg.org/pixivfe/i18ncheck/choice"
	"codeberg.org/pixivfe/i18ncheck/diagnostic"
	"codeberg.org/pixivfe/i18ncheck/keypath"
	"codeberg.org/pixivfe/i18ncheck/natsort"
)

// Catalog is the read-only view of loaded translations the rules need.
// *catalog.Catalog implements it.
type Catalog interface {
	Get(locale, key string) (string, bool)
	HasLocale(locale string) bool
	BaseLocale() string
	FoundLocales() []string
	LocaleFiles(locale string) []string
	SearchForSimilarKeys(key string) (string, bool)
	Diagnostics() []diagnostic.Diagnostic
	DiffUsed(used []catalog.UsedRecord) []catalog.Unused
}

// Call is one use of the translation API in analysed code.
type Call struct {
	Function string
	File     string
	Line     int

	// Keys holds the constant values the key argument may take.
	// Empty means the key is computed at run time.
	Keys []string
	// KeyType describes the key expression, for dynamic keys.
	KeyType string

	// Locales holds the constant values of the locale argument.
	// Empty means the call applies to every found locale.
	Locales    []string
	LocaleType string

	// Number is the domain of the count argument of pluralised calls.
	Number *choice.Domain

	// Replacements holds the placeholder names passed to the call.
	// Nil means no replacement argument was given.
	Replacements []string
	ReplaceType  string
}

// Translation is the lookup of one key in one locale.
type Translation struct {
	Key    string
	Locale string
	Value  string
	Found  bool
}

// Text returns the value, or the key itself when nothing was found. That is
// what the translator displays for a missing entry.
func (t Translation) Text() string {
	if t.Found {
		return t.Value
	}

	return t.Key
}

// Translations looks up every key of the call in every applicable locale.
// Keys are visited in natural order so diagnostics come out stable.
func (c Call) Translations(cat Catalog) []Translation {
	keys := sortedKeys(c.Keys)
	locales := c.Locales

	if len(locales) == 0 {
		locales = cat.FoundLocales()
	}

	out := make([]Translation, 0, len(keys)*len(locales))

	for _, key := range keys {
		for _, locale := range locales {
			value, found := cat.Get(locale, key)
			out = append(out, Translation{Key: key, Locale: locale, Value: value, Found: found})
		}
	}

	return out
}

// Used lists the (key, locale) pairs the call references. A call without
// explicit locales uses its keys in every locale.
func (c Call) Used() []catalog.UsedRecord {
	locales := c.Locales
	if len(locales) == 0 {
		locales = []string{keypath.Wildcard}
	}

	var used []catalog.UsedRecord

	for _, key := range sortedKeys(c.Keys) {
		for _, locale := range locales {
			used = append(used, catalog.UsedRecord{Key: key, Locale: locale, File: c.File, Line: c.Line})
		}
	}

	return used
}

// metadata describes the call, merged with extra.
func (c Call) metadata(extra map[string]string) map[string]string {
	meta := map[string]string{diagnostic.MetaKeyType: c.KeyType}

	if c.Function != "" {
		meta[diagnostic.MetaFunction] = c.Function
	}

	if c.Replacements != nil {
		meta[diagnostic.MetaReplaceType] = c.ReplaceType
	}

	if len(c.Locales) > 0 {
		meta[diagnostic.MetaLocaleType] = c.LocaleType
	}

	for k, v := range extra {
		meta[k] = v
	}

	return meta
}

// diagnostic starts a finding at the call site.
func (c Call) diagnostic(id diagnostic.Identifier, message string) diagnostic.Diagnostic {
	return diagnostic.New(id, message).At(c.File, c.Line)
}

func sortedKeys(keys []string) []string {
	sorted := slices.Clone(keys)

	slices.SortFunc(sorted, natsort.Compare)

	return slices.Compact(sorted)
}
