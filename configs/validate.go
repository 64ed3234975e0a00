// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"codeberg.org/pixivfe/i18ncheck/catalog/loader"
	"codeberg.org/pixivfe/i18ncheck/fuzzy"
	"codeberg.org/pixivfe/i18ncheck/report"
)

// validation errors.
var (
	errEmptyCatalogPath   = errors.New("catalog.path cannot be empty")
	errEmptyBaseLocale    = errors.New("catalog.baseLocale cannot be empty")
	errUnknownFormat      = errors.New("unknown catalog format")
	errInvalidThreshold   = errors.New("fuzzy.threshold must be within (0, 1]")
	errUnknownAlgorithm   = errors.New("unknown fuzzy.algorithm")
	errNegativeCacheSize  = errors.New("fuzzy.cacheSize cannot be negative")
	errNegativeWorkers    = errors.New("analysis.workers cannot be negative")
	errUnknownLogLevel    = errors.New("unknown log.level")
	errUnknownLogFormat   = errors.New("unknown log.format")
)

// validate checks the configuration and normalises a few fields.
func (cfg *Config) validate() error {
	var errs []error

	cfg.Catalog.Path = strings.TrimSpace(cfg.Catalog.Path)
	if cfg.Catalog.Path == "" {
		errs = append(errs, errEmptyCatalogPath)
	}

	cfg.Catalog.BaseLocale = strings.TrimSpace(cfg.Catalog.BaseLocale)
	if cfg.Catalog.BaseLocale == "" {
		errs = append(errs, errEmptyBaseLocale)
	}

	for i, f := range cfg.Catalog.Formats {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "yml" {
			f = string(loader.YAML)
		}

		cfg.Catalog.Formats[i] = f

		if !slices.Contains(loader.Formats, loader.Format(f)) {
			errs = append(errs, fmt.Errorf("%w: %q", errUnknownFormat, f))
		}
	}

	if cfg.Fuzzy.Threshold <= 0 || cfg.Fuzzy.Threshold > 1 || math.IsNaN(cfg.Fuzzy.Threshold) {
		errs = append(errs, fmt.Errorf("%w, got %v", errInvalidThreshold, cfg.Fuzzy.Threshold))
	}

	switch cfg.Fuzzy.Algorithm {
	case fuzzy.AlgorithmNaive, fuzzy.AlgorithmIndexed:
	default:
		errs = append(errs, fmt.Errorf("%w: %q", errUnknownAlgorithm, cfg.Fuzzy.Algorithm))
	}

	if cfg.Fuzzy.CacheSize < 0 {
		errs = append(errs, errNegativeCacheSize)
	}

	if cfg.Analysis.Workers < 0 {
		errs = append(errs, errNegativeWorkers)
	}

	for _, f := range cfg.Analysis.Functions {
		if err := f.Validate(); err != nil {
			errs = append(errs, err)
		}
	}

	if _, err := zerolog.ParseLevel(cfg.Log.Level); err != nil || cfg.Log.Level == "" {
		errs = append(errs, fmt.Errorf("%w: %q", errUnknownLogLevel, cfg.Log.Level))
	}

	switch cfg.Log.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("%w: %q", errUnknownLogFormat, cfg.Log.Format))
	}

	format, err := report.ParseFormat(cfg.Report.Format)
	if err != nil {
		errs = append(errs, err)
	} else {
		cfg.Report.Format = string(format)
	}

	return errors.Join(errs...)
}
