// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package rules

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"codeberg.org/pixivfe/i18ncheck/choice"
	"codeberg.org/pixivfe/i18ncheck/diagnostic"
	"codeberg.org/pixivfe/i18ncheck/locale"
	"codeberg.org/pixivfe/i18ncheck/replacement"
)

// Env is shared, read-only state for every check.
type Env struct {
	Catalog Catalog

	// StrictLocales requires locale identifiers in canonical form.
	StrictLocales bool
}

// Check inspects one call. It must not keep or modify ts.
type Check func(env Env, call Call, ts []Translation) []diagnostic.Diagnostic

// groupedKeyPattern matches keys with at least one dot-separated group, with
// an optional namespace. Keys like these are unlikely to be literal text.
var groupedKeyPattern = regexp.MustCompile(`^(.+::)?(\w\w*(?:[_-]\w\w*)*)(?:\.(\w\w*(?:[_-]\w\w*)*))$`)

// MissingKey reports keys absent from any locale other than the base locale.
// Locales are listed in lookup order.
func MissingKey(env Env, call Call, ts []Translation) []diagnostic.Diagnostic {
	base := env.Catalog.BaseLocale()

	var (
		diags   []diagnostic.Diagnostic
		key     string
		missing []string
	)

	flush := func() {
		if len(missing) == 0 {
			return
		}

		d := call.diagnostic(
			diagnostic.MissingTranslationString,
			fmt.Sprintf("Missing translation string %s for locales: %s", diagnostic.Quote(key), strings.Join(missing, ", ")),
		).WithMeta(call.metadata(map[string]string{
			diagnostic.MetaKey:              key,
			diagnostic.MetaMissingInLocales: strings.Join(missing, ","),
		}))

		if key != "" {
			if similar, ok := env.Catalog.SearchForSimilarKeys(key); ok && similar != key {
				d = d.WithTip("Did you mean this similar key: " + diagnostic.Quote(similar))
			}
		}

		diags = append(diags, d)
		missing = nil
	}

	for _, t := range ts {
		if t.Key != key {
			flush()

			key = t.Key
		}

		if !t.Found && t.Locale != base {
			missing = append(missing, t.Locale)
		}
	}

	flush()

	return diags
}

// LikelyMissingInBaseLocale reports grouped keys without a base locale entry.
// Ungrouped keys are often the text itself and are left alone.
func LikelyMissingInBaseLocale(env Env, call Call, ts []Translation) []diagnostic.Diagnostic {
	base := env.Catalog.BaseLocale()

	var diags []diagnostic.Diagnostic

	for _, t := range ts {
		if t.Locale != base || t.Found || !groupedKeyPattern.MatchString(t.Key) {
			continue
		}

		diags = append(diags, call.diagnostic(
			diagnostic.MissingTranslationStringInBaseLocale,
			fmt.Sprintf("Likely missing translation string %s for base locale: %s", diagnostic.Quote(t.Key), base),
		).WithMeta(call.metadata(map[string]string{
			diagnostic.MetaKey:    t.Key,
			diagnostic.MetaLocale: t.Locale,
		})))
	}

	return diags
}

// DynamicKey reports calls whose key is not a known constant.
func DynamicKey(_ Env, call Call, _ []Translation) []diagnostic.Diagnostic {
	if len(call.Keys) > 0 {
		return nil
	}

	keyType := call.KeyType
	if keyType == "" {
		keyType = "unknown"
	}

	return []diagnostic.Diagnostic{
		call.diagnostic(
			diagnostic.DynamicTranslationString,
			"Disallowed dynamic translation string of type: "+keyType,
		).WithMeta(call.metadata(nil)),
	}
}

// InvalidChoice checks pluralised values against the count's domain.
func InvalidChoice(_ Env, call Call, ts []Translation) []diagnostic.Diagnostic {
	if call.Number == nil {
		return nil
	}

	var diags []diagnostic.Diagnostic

	for _, t := range ts {
		value := t.Text()

		for _, p := range choice.Analyze(value, call.Number) {
			diags = append(diags, valueDiagnostic(call, t, value, p.Identifier, p.Message))
		}
	}

	return diags
}

// InvalidReplacement checks that every placeholder passed is used once.
func InvalidReplacement(_ Env, call Call, ts []Translation) []diagnostic.Diagnostic {
	if call.Replacements == nil {
		return nil
	}

	var diags []diagnostic.Diagnostic

	for _, t := range ts {
		value := t.Text()

		for _, p := range replacement.Analyze(value, call.Replacements) {
			diags = append(diags, valueDiagnostic(call, t, value, p.Identifier, p.Message))
		}
	}

	return diags
}

func valueDiagnostic(call Call, t Translation, value string, id diagnostic.Identifier, message string) diagnostic.Diagnostic {
	return call.diagnostic(id, message).
		WithTip(diagnostic.KeyValueTip(t.Locale, t.Key, value)).
		WithMeta(call.metadata(map[string]string{
			diagnostic.MetaLocale: t.Locale,
			diagnostic.MetaKey:    t.Key,
			diagnostic.MetaValue:  value,
		}))
}

// InvalidLocale checks explicit locale arguments: that the catalog has them
// and that they name a real locale. Both problems are reported independently.
func InvalidLocale(env Env, call Call, _ []Translation) []diagnostic.Diagnostic {
	var diags []diagnostic.Diagnostic

	for _, l := range call.Locales {
		meta := call.metadata(map[string]string{diagnostic.MetaLocale: l})

		if !env.Catalog.HasLocale(l) {
			diags = append(diags, call.diagnostic(
				diagnostic.InvalidLocaleNoTranslations,
				"Locale has no available translation strings: "+l,
			).WithMeta(meta))
		}

		if !locale.Exists(l, env.StrictLocales) {
			diags = append(diags, call.diagnostic(
				diagnostic.InvalidLocaleUnknown,
				"Unknown locale: "+l,
			).WithMeta(meta))
		}
	}

	return diags
}

// InvalidEncoding reports keys and found values that are not valid UTF-8.
func InvalidEncoding(_ Env, call Call, ts []Translation) []diagnostic.Diagnostic {
	var (
		diags   []diagnostic.Diagnostic
		lastKey string
	)

	for i, t := range ts {
		if (i == 0 || t.Key != lastKey) && !utf8.ValidString(t.Key) {
			diags = append(diags, call.diagnostic(
				diagnostic.InvalidCharacterEncoding,
				"Invalid character encoding for key "+diagnostic.Quote(t.Key),
			).WithMeta(call.metadata(map[string]string{diagnostic.MetaKey: t.Key})))
		}

		lastKey = t.Key

		if t.Found && !utf8.ValidString(t.Value) {
			diags = append(diags, call.diagnostic(
				diagnostic.InvalidCharacterEncoding,
				fmt.Sprintf("Invalid character encoding for value %s in locale %s", diagnostic.Quote(t.Value), diagnostic.Quote(t.Locale)),
			).WithMeta(call.metadata(map[string]string{
				diagnostic.MetaLocale: t.Locale,
				diagnostic.MetaKey:    t.Key,
				diagnostic.MetaValue:  t.Value,
			})))
		}
	}

	return diags
}
