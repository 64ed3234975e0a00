// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const dotEnvFile = ".env"

// useDotEnv loads environment variables from a .env file in the current
// working directory. A missing file is not an error.
func useDotEnv() error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	return loadDotEnv(filepath.Join(cwd, dotEnvFile))
}

// loadDotEnv sets the variables of the .env file at envPath that are not
// already set in the environment.
func loadDotEnv(envPath string) error {
	err := godotenv.Load(envPath)

	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Debug().
			Str("path", envPath).
			Msg("No .env file found, skipping")

		return nil
	case err != nil:
		return fmt.Errorf("loading %s: %w", envPath, err)
	}

	log.Debug().
		Str("path", envPath).
		Msg("Loaded configuration from .env file")

	return nil
}
