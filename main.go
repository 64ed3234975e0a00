// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
i18ncheck statically checks how Go code uses its translation catalogs.

It loads the catalogs under a directory, finds translation calls in Go
packages and reports missing keys, malformed plural choices, unused
replacements, unknown locales and catalog entries no call uses.

Exit status is 0 when nothing was found, 1 when problems were reported and
2 when the check itself failed.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"codeberg.org/pixivfe/i18ncheck/catalog"
	config "codeberg.org/pixivfe/i18ncheck/configs"
	"codeberg.org/pixivfe/i18ncheck/diagnostic"
	"codeberg.org/pixivfe/i18ncheck/extract"
	"codeberg.org/pixivfe/i18ncheck/fuzzy"
	"codeberg.org/pixivfe/i18ncheck/report"
	"codeberg.org/pixivfe/i18ncheck/rules"
)

const (
	exitOK       = 0
	exitProblems = 1
	exitFailure  = 2

	// Calls checked before their used keys are handed to the collector.
	batchSize = 1024

	reportFilePerm = 0o644
)

// main is the entry point of the application.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout)

	stop()
	os.Exit(code)
}

// run loads the configuration, checks the project and writes the report.
func run(ctx context.Context, args []string, stdout io.Writer) int {
	config.SetupLogging(os.Stderr, "info", "console")

	cfg := &config.Config{}
	if err := cfg.Load(args); err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")

		return exitFailure
	}

	cfg.SetupLogging()
	cfg.Print()

	diags, err := check(ctx, cfg)
	if err != nil {
		if diagnostic.IsInternal(err) {
			log.Error().Err(err).Msg("Internal error")
		} else {
			log.Error().Err(err).Msg("Check failed")
		}

		return exitFailure
	}

	if err := writeReport(cfg, diags, stdout); err != nil {
		log.Error().Err(err).Msg("Failed to write report")

		return exitFailure
	}

	if len(diags) > 0 {
		return exitProblems
	}

	return exitOK
}

// check runs every enabled rule over the calls found in the configured packages.
func check(ctx context.Context, cfg *config.Config) ([]diagnostic.Diagnostic, error) {
	newMatcher, err := matcherFactory(cfg)
	if err != nil {
		return nil, err
	}

	cat, err := catalog.Scan(cfg.Catalog.Path, catalog.Options{
		BaseLocale:       cfg.Catalog.BaseLocale,
		Formats:          cfg.CatalogFormats(),
		ValidateEncoding: cfg.Catalog.ValidateEncoding,
		NewMatcher:       newMatcher,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load catalogs: %w", err)
	}

	calls, err := extract.Calls(ctx, extract.Options{
		Dir:       cfg.Analysis.Dir,
		Patterns:  cfg.Analysis.Patterns,
		Functions: cfg.Analysis.Functions,
		Tests:     cfg.Analysis.Tests,
		Workers:   cfg.Analysis.Workers,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to extract translation calls: %w", err)
	}

	runner := rules.NewRunner(cat, cfg.Rules, cfg.Analysis.Workers)
	collector := &rules.Collector{}

	var diags []diagnostic.Diagnostic

	for start := 0; start < len(calls); start += batchSize {
		res, err := runner.Run(ctx, calls[start:min(start+batchSize, len(calls))])
		if err != nil {
			return nil, err
		}

		diags = append(diags, res.Diagnostics...)

		if err := collector.Add(res.Used...); err != nil {
			return nil, err
		}
	}

	used, err := collector.Drain()
	if err != nil {
		return nil, err
	}

	return append(diags, rules.Finish(cat, cfg.Rules, used)...), nil
}

// matcherFactory returns the constructor for the catalog's suggestion
// matchers, or nil when suggestions are disabled.
func matcherFactory(cfg *config.Config) (func() fuzzy.Matcher, error) {
	if !cfg.Fuzzy.Enabled {
		return nil, nil
	}

	if _, err := fuzzy.New(cfg.Fuzzy.Algorithm, cfg.Fuzzy.Threshold); err != nil {
		return nil, err
	}

	return func() fuzzy.Matcher {
		m, err := fuzzy.New(cfg.Fuzzy.Algorithm, cfg.Fuzzy.Threshold)
		if err != nil {
			return fuzzy.Null{}
		}

		if !cfg.Fuzzy.Memoize || cfg.Fuzzy.CacheSize == 0 {
			return m
		}

		memo, err := fuzzy.NewMemoizing(m, cfg.Fuzzy.CacheSize, cfg.Fuzzy.Compress)
		if err != nil {
			log.Warn().Err(err).Msg("Suggestion cache disabled")

			return m
		}

		return memo
	}, nil
}

func writeReport(cfg *config.Config, diags []diagnostic.Diagnostic, stdout io.Writer) (err error) {
	w := stdout

	if cfg.Report.Output != "" {
		f, openErr := os.OpenFile(cfg.Report.Output, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, reportFilePerm) // #nosec G304 -- path from configuration
		if openErr != nil {
			return fmt.Errorf("creating %s: %w", cfg.Report.Output, openErr)
		}

		defer func() {
			err = errors.Join(err, f.Close())
		}()

		w = f
	}

	switch report.Format(cfg.Report.Format) {
	case report.JSON:
		return report.WriteJSON(w, diags, cfg.Report.Pretty)
	default:
		logger := log.Logger
		if cfg.Report.Output != "" {
			logger = zerolog.New(w).With().Timestamp().Logger()
		}

		report.Log(logger, diags)

		return nil
	}
}
