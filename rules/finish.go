// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package rules

import (
	"codeberg.org/pixivfe/i18ncheck/catalog"
	"codeberg.org/pixivfe/i18ncheck/diagnostic"
	"codeberg.org/pixivfe/i18ncheck/locale"
)

// LoaderDiagnostics returns the problems found while loading the catalog.
// With checkLocales set, every found locale that is not a real locale is
// reported against its first file.
func LoaderDiagnostics(cat Catalog, checkLocales, strict bool) []diagnostic.Diagnostic {
	diags := cat.Diagnostics()

	if !checkLocales {
		return diags
	}

	for _, l := range cat.FoundLocales() {
		if locale.Exists(l, strict) {
			continue
		}

		file := catalog.UnknownFile
		if files := cat.LocaleFiles(l); len(files) > 0 {
			file = files[0]
		}

		diags = append(diags, diagnostic.New(diagnostic.InvalidLocaleUnknown, "Unknown locale: "+l).
			At(file, diagnostic.UnknownLine).
			WithMeta(map[string]string{diagnostic.MetaLocale: l}))
	}

	return diags
}

// Unused reports catalog entries that no call referenced.
func Unused(cat Catalog, used []catalog.UsedRecord) []diagnostic.Diagnostic {
	var diags []diagnostic.Diagnostic

	for _, u := range cat.DiffUsed(used) {
		d := diagnostic.New(
			diagnostic.PossiblyUnusedTranslationString,
			"Possibly unused translation string "+diagnostic.Quote(u.Key)+" for locale: "+u.Locale,
		).At(u.File, u.Line).WithMeta(map[string]string{
			diagnostic.MetaKey:    u.Key,
			diagnostic.MetaLocale: u.Locale,
		})

		if u.Candidate != "" {
			d = d.WithTip("Did you mean this similar key: " + diagnostic.Quote(u.Candidate))
		}

		diags = append(diags, d)
	}

	return diags
}

// Finish returns the run-level diagnostics: catalog problems first, then
// unused entries when enabled.
func Finish(cat Catalog, opts Options, used []catalog.UsedRecord) []diagnostic.Diagnostic {
	diags := LoaderDiagnostics(cat, opts.InvalidLocales, opts.StrictLocales)

	if opts.UnusedKeys {
		diags = append(diags, Unused(cat, used)...)
	}

	return diags
}
