// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"flag"
	"fmt"
	"io"
)

const defaultConfigPath = "./i18ncheck.yaml"

type commandLine struct {
	config    string
	configSet bool

	set      map[string]bool
	catalog  string
	base     string
	format   string
	output   string
	level    string
	pretty   bool
	patterns []string
}

// parseCommandLine parses flags; remaining arguments are package patterns.
func parseCommandLine(args []string) (*commandLine, error) {
	cl := &commandLine{set: make(map[string]bool)}

	fs := flag.NewFlagSet("i18ncheck", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cl.config, "config", defaultConfigPath, "Path to a configuration file in YAML format.")
	fs.StringVar(&cl.catalog, "catalog", "", "Directory holding the translation catalogs.")
	fs.StringVar(&cl.base, "base-locale", "", "Locale the source language is written in.")
	fs.StringVar(&cl.format, "format", "", "Report format: console or json.")
	fs.StringVar(&cl.output, "output", "", "Write the report to this file instead of stdout.")
	fs.StringVar(&cl.level, "log-level", "", "Log level: debug, info, warn or error.")
	fs.BoolVar(&cl.pretty, "pretty", false, "Indent the JSON report.")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parsing command line: %w", err)
	}

	fs.Visit(func(f *flag.Flag) {
		cl.set[f.Name] = true
	})

	cl.configSet = cl.set["config"]
	cl.patterns = fs.Args()

	return cl, nil
}

// apply overrides cfg with the flags given explicitly.
func (cl *commandLine) apply(cfg *Config) {
	if cl.set["catalog"] {
		cfg.Catalog.Path = cl.catalog
	}

	if cl.set["base-locale"] {
		cfg.Catalog.BaseLocale = cl.base
	}

	if cl.set["format"] {
		cfg.Report.Format = cl.format
	}

	if cl.set["output"] {
		cfg.Report.Output = cl.output
	}

	if cl.set["log-level"] {
		cfg.Log.Level = cl.level
	}

	if cl.set["pretty"] {
		cfg.Report.Pretty = cl.pretty
	}

	if len(cl.patterns) > 0 {
		cfg.Analysis.Patterns = cl.patterns
	}
}
