// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"

	"codeberg.org/pixivfe/i18ncheck/catalog/loader"
	"codeberg.org/pixivfe/i18ncheck/extract"
	"codeberg.org/pixivfe/i18ncheck/rules"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "I18NCHECK_"

// Config holds the checker configuration.
type Config struct {
	Build buildInfo `env:"-" yaml:"-"`

	Catalog struct {
		Path             string   `env:"PATH"              yaml:"path"`
		BaseLocale       string   `env:"BASE_LOCALE"       yaml:"baseLocale"`
		Formats          []string `env:"FORMATS"           yaml:"formats"`
		ValidateEncoding bool     `env:"VALIDATE_ENCODING" yaml:"validateEncoding"`
	} `envPrefix:"CATALOG_" yaml:"catalog"`

	Rules rules.Options `envPrefix:"RULES_" yaml:"rules"`

	Fuzzy struct {
		Enabled   bool    `env:"ENABLED"    yaml:"enabled"`
		Algorithm string  `env:"ALGORITHM"  yaml:"algorithm"`
		Threshold float64 `env:"THRESHOLD"  yaml:"threshold"`
		Memoize   bool    `env:"MEMOIZE"    yaml:"memoize"`
		CacheSize int     `env:"CACHE_SIZE" yaml:"cacheSize"`
		// Compress stores cached suggestions zstd-compressed.
		Compress bool `env:"COMPRESS" yaml:"compress"`
	} `envPrefix:"FUZZY_" yaml:"fuzzy"`

	Analysis struct {
		Dir       string                 `env:"DIR"      yaml:"dir"`
		Patterns  []string               `env:"PATTERNS" yaml:"patterns"`
		Tests     bool                   `env:"TESTS"    yaml:"tests"`
		Workers   int                    `env:"WORKERS"  yaml:"workers"`
		Functions []extract.FunctionSpec `env:"-"        yaml:"functions"`
	} `envPrefix:"ANALYSIS_" yaml:"analysis"`

	Log struct {
		Level  string `env:"LEVEL"  yaml:"level"`
		Format string `env:"FORMAT" yaml:"format"`
	} `envPrefix:"LOG_" yaml:"log"`

	Report struct {
		Format string `env:"FORMAT" yaml:"format"`
		// Output is a file path; empty writes to stdout.
		Output string `env:"OUTPUT" yaml:"output"`
		Pretty bool   `env:"PRETTY" yaml:"pretty"`
	} `envPrefix:"REPORT_" yaml:"report"`
}

// Load builds the configuration from defaults, a YAML file, a .env file,
// the environment and finally command line arguments, then validates it.
func (cfg *Config) Load(args []string) error {
	flags, err := parseCommandLine(args)
	if err != nil {
		return err
	}

	// Config file precedence:
	// 1. Command-line flag (-config)
	// 2. Environment variable (I18NCHECK_CONFIG)
	// 3. Default path with fallback check
	var configFilePath string

	switch {
	case flags.configSet:
		configFilePath = flags.config
	case os.Getenv(EnvPrefix+"CONFIG") != "":
		configFilePath = os.Getenv(EnvPrefix + "CONFIG")
	default:
		configFilePath = flags.config
		if _, err := os.Stat(configFilePath); os.IsNotExist(err) {
			ymlPath := "./i18ncheck.yml"
			if _, statErr := os.Stat(ymlPath); statErr == nil {
				configFilePath = ymlPath
			}
		}
	}

	cfg.SetDefaults()
	cfg.Build.load()

	if err := cfg.readYAML(configFilePath); err != nil {
		return fmt.Errorf("error loading YAML config: %w", err)
	}

	if err := useDotEnv(); err != nil {
		return fmt.Errorf("error using .env file: %w", err)
	}

	if err := cfg.readEnv(); err != nil {
		return fmt.Errorf("error loading environment variables: %w", err)
	}

	flags.apply(cfg)

	if err := cfg.validate(); err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	return nil
}

func (cfg *Config) readEnv() error {
	return env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix})
}

// CatalogFormats returns the configured catalog formats.
func (cfg *Config) CatalogFormats() []loader.Format {
	formats := make([]loader.Format, 0, len(cfg.Catalog.Formats))
	for _, f := range cfg.Catalog.Formats {
		formats = append(formats, loader.Format(f))
	}

	return formats
}
