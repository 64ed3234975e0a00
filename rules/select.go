// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package rules

// Options enables individual rules.
type Options struct {
	MissingKeys         bool `yaml:"missingKeys" env:"MISSING_KEYS"`
	MissingInBaseLocale bool `yaml:"missingInBaseLocale" env:"MISSING_IN_BASE_LOCALE"`
	DisallowDynamicKeys bool `yaml:"disallowDynamicKeys" env:"DISALLOW_DYNAMIC_KEYS"`
	InvalidChoices      bool `yaml:"invalidChoices" env:"INVALID_CHOICES"`
	InvalidReplacements bool `yaml:"invalidReplacements" env:"INVALID_REPLACEMENTS"`
	InvalidLocales      bool `yaml:"invalidLocales" env:"INVALID_LOCALES"`
	InvalidEncoding     bool `yaml:"invalidEncoding" env:"INVALID_ENCODING"`
	UnusedKeys          bool `yaml:"unusedKeys" env:"UNUSED_KEYS"`
	StrictLocales       bool `yaml:"strictLocales" env:"STRICT_LOCALES"`
}

// DefaultOptions enables every rule except the dynamic key ban, with lenient
// locale matching.
func DefaultOptions() Options {
	return Options{
		MissingKeys:         true,
		MissingInBaseLocale: true,
		InvalidChoices:      true,
		InvalidReplacements: true,
		InvalidLocales:      true,
		InvalidEncoding:     true,
		UnusedKeys:          true,
	}
}

// Select returns the per-call checks enabled by opts, in reporting order.
// Unused keys and catalog problems are reported by Finish.
func Select(opts Options) []Check {
	var checks []Check

	if opts.DisallowDynamicKeys {
		checks = append(checks, DynamicKey)
	}

	if opts.MissingKeys {
		checks = append(checks, MissingKey)
	}

	if opts.MissingInBaseLocale {
		checks = append(checks, LikelyMissingInBaseLocale)
	}

	if opts.InvalidChoices {
		checks = append(checks, InvalidChoice)
	}

	if opts.InvalidReplacements {
		checks = append(checks, InvalidReplacement)
	}

	if opts.InvalidLocales {
		checks = append(checks, InvalidLocale)
	}

	if opts.InvalidEncoding {
		checks = append(checks, InvalidEncoding)
	}

	return checks
}
