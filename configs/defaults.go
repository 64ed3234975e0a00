// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"codeberg.org/pixivfe/i18ncheck/catalog/loader"
	"codeberg.org/pixivfe/i18ncheck/extract"
	"codeberg.org/pixivfe/i18ncheck/fuzzy"
	"codeberg.org/pixivfe/i18ncheck/report"
	"codeberg.org/pixivfe/i18ncheck/rules"
)

const (
	defaultCatalogPath = "./lang"
	defaultBaseLocale  = "en"

	// Suggestions cached per catalog matcher.
	defaultFuzzyCacheSize = 4096
)

// SetDefaults populates the configuration with default values.
func (cfg *Config) SetDefaults() {
	cfg.Catalog.Path = defaultCatalogPath
	cfg.Catalog.BaseLocale = defaultBaseLocale

	cfg.Catalog.Formats = make([]string, 0, len(loader.Formats))
	for _, f := range loader.Formats {
		cfg.Catalog.Formats = append(cfg.Catalog.Formats, string(f))
	}

	cfg.Catalog.ValidateEncoding = true

	cfg.Rules = rules.DefaultOptions()

	cfg.Fuzzy.Enabled = true
	cfg.Fuzzy.Algorithm = fuzzy.AlgorithmIndexed
	cfg.Fuzzy.Threshold = fuzzy.DefaultThreshold
	cfg.Fuzzy.Memoize = true
	cfg.Fuzzy.CacheSize = defaultFuzzyCacheSize
	cfg.Fuzzy.Compress = false

	cfg.Analysis.Dir = "."
	cfg.Analysis.Patterns = []string{"./..."}
	cfg.Analysis.Tests = false
	cfg.Analysis.Workers = 0
	cfg.Analysis.Functions = extract.DefaultFunctions()

	cfg.Log.Level = "info"
	cfg.Log.Format = "console"

	cfg.Report.Format = string(report.Console)
	cfg.Report.Output = ""
	cfg.Report.Pretty = false
}
