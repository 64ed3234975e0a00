// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog/log"
)

// Print logs the version and, at debug level, the effective configuration.
func (cfg *Config) Print() {
	log.Info().
		Str("version", cfg.Build.Version()).
		Str("revision", cfg.Build.Revision()).
		Str("go", cfg.Build.GoVersion).
		Msg("Starting i18ncheck")

	ev := log.Debug()
	if !ev.Enabled() {
		return
	}

	configYAML, err := cfg.YAML()
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal config to YAML for printing")

		return
	}

	ev.Msg("Effective configuration:\n" + string(configYAML))
}

// YAML marshals the configuration.
func (cfg *Config) YAML() ([]byte, error) {
	return yaml.MarshalWithOptions(cfg, yaml.Indent(2))
}
