// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package diagnostic defines the findings produced by catalog loading and rule evaluation.

Diagnostics are plain data. Rendering them is left to the report package.
*/
package diagnostic

import (
	"cmp"
	"slices"
)

// UnknownLine marks a diagnostic whose source line could not be determined.
const UnknownLine = -1

// Identifier is a stable tag that downstream tooling can filter on.
type Identifier string

const (
	MissingTranslationString             Identifier = "missingTranslationString"
	MissingTranslationStringInBaseLocale Identifier = "missingTranslationStringInBaseLocale"
	DynamicTranslationString             Identifier = "dynamicTranslationString"
	InvalidChoiceMalformed               Identifier = "invalidChoice.malformed"
	InvalidChoiceNonNumeric              Identifier = "invalidChoice.nonNumeric"
	InvalidChoiceMissingCase             Identifier = "invalidChoice.missingCase"
	InvalidReplacementUnused             Identifier = "invalidReplacement.unused"
	InvalidReplacementMultipleVariants   Identifier = "invalidReplacement.multipleVariants"
	InvalidLocaleUnknown                 Identifier = "invalidLocale.unknown"
	InvalidLocaleNoTranslations          Identifier = "invalidLocale.noTranslations"
	InvalidCharacterEncoding             Identifier = "invalidCharacterEncoding"
	ConflictingKey                       Identifier = "conflictingKey"
	PossiblyUnusedTranslationString      Identifier = "possiblyUnusedTranslationString"
	TranslationLoaderError               Identifier = "translationLoaderError"
)

// Metadata keys shared by the rules.
const (
	MetaKey              = "key"
	MetaLocale           = "locale"
	MetaValue            = "value"
	MetaKeyType          = "keyType"
	MetaLocaleType       = "localeType"
	MetaReplaceType      = "replaceType"
	MetaMissingInLocales = "missingInLocales"
	MetaFunction         = "function"
)

// Diagnostic is a single finding attached to a file and line.
type Diagnostic struct {
	Message    string            `json:"message"`
	Identifier Identifier        `json:"identifier"`
	File       string            `json:"file,omitempty"`
	Line       int               `json:"line"`
	Tip        string            `json:"tip,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// New returns a diagnostic with an unknown line.
func New(id Identifier, message string) Diagnostic {
	return Diagnostic{
		Identifier: id,
		Message:    message,
		Line:       UnknownLine,
	}
}

// At returns a copy of d attached to file and line.
func (d Diagnostic) At(file string, line int) Diagnostic {
	d.File = file
	d.Line = line

	return d
}

// WithTip returns a copy of d carrying tip.
func (d Diagnostic) WithTip(tip string) Diagnostic {
	d.Tip = tip

	return d
}

// WithMeta returns a copy of d with the given metadata merged in.
//
// The receiver's map is never modified.
func (d Diagnostic) WithMeta(kv map[string]string) Diagnostic {
	if len(kv) == 0 {
		return d
	}

	merged := make(map[string]string, len(d.Metadata)+len(kv))
	for k, v := range d.Metadata {
		merged[k] = v
	}

	for k, v := range kv {
		merged[k] = v
	}

	d.Metadata = merged

	return d
}

// HasLine reports whether the source line is known.
func (d Diagnostic) HasLine() bool {
	return d.Line > 0
}

// SortStable orders diagnostics by file and line, keeping the emission order of ties.
func SortStable(diags []Diagnostic) {
	slices.SortStableFunc(diags, func(a, b Diagnostic) int {
		return cmp.Or(
			cmp.Compare(a.File, b.File),
			cmp.Compare(a.Line, b.Line),
		)
	})
}
