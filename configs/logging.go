// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetupLogging configures the global logger from cfg.Log. Logs go to stderr
// so the report can own stdout.
func (cfg *Config) SetupLogging() {
	SetupLogging(os.Stderr, cfg.Log.Level, cfg.Log.Format)
}

// SetupLogging points the global logger at f. Unknown levels keep the
// current global level.
func SetupLogging(f *os.File, level, format string) {
	zerolog.TimeFieldFormat = time.RFC3339

	if lvl, err := zerolog.ParseLevel(level); err == nil && level != "" {
		zerolog.SetGlobalLevel(lvl)
	}

	var w io.Writer = f
	if format != "json" {
		w = ConsoleWriter(f)
	}

	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}

// isTerminal returns true if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ConsoleWriter returns a writer for zerolog that has NoColor:!isTerminal(f).
func ConsoleWriter(f *os.File) io.Writer {
	noColor := !isTerminal(f)

	w := zerolog.ConsoleWriter{Out: f, NoColor: noColor, TimeFormat: time.DateTime}

	if !noColor {
		w.FormatPrepare = func(m map[string]any) error {
			// file:line reads better than two fields in a terminal
			if file, ok := m["file"].(string); ok {
				if line, ok := m["line"]; ok {
					m["file"] = file + ":" + toString(line)
					delete(m, "line")
				}
			}

			return nil
		}
	}

	return w
}

func toString(v any) string {
	switch v := v.(type) {
	case string:
		return v
	default:
		b, _ := zerolog.InterfaceMarshalFunc(v)

		return string(b)
	}
}
