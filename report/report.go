// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package report renders diagnostics for people and for tools.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"codeberg.org/pixivfe/i18ncheck/diagnostic"
	"codeberg.org/pixivfe/i18ncheck/natsort"
)

// Format selects how diagnostics are rendered.
type Format string

const (
	Console Format = "console"
	JSON    Format = "json"
)

// ErrUnknownFormat is returned by ParseFormat.
var ErrUnknownFormat = errors.New("unknown report format")

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case Console, JSON:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Message is one diagnostic in the JSON report.
type Message struct {
	Message    string                `json:"message"`
	Line       int                   `json:"line"`
	Identifier diagnostic.Identifier `json:"identifier"`
	Tip        string                `json:"tip,omitempty"`
	Metadata   map[string]string     `json:"metadata,omitempty"`
}

type fileReport struct {
	Errors   int       `json:"errors"`
	Messages []Message `json:"messages"`
}

const skeleton = `{"totals":{"errors":0,"files":0},"files":{},"errors":[]}`

// MarshalJSON builds the JSON report. Files appear in natural order and
// their messages by line; diagnostics without a file go to "errors".
func MarshalJSON(diags []diagnostic.Diagnostic, indent bool) ([]byte, error) {
	sorted := slices.Clone(diags)
	diagnostic.SortStable(sorted)

	byFile := make(map[string][]Message)

	var general []Message

	for _, d := range sorted {
		m := Message{
			Message:    d.Message,
			Line:       d.Line,
			Identifier: d.Identifier,
			Tip:        d.Tip,
			Metadata:   d.Metadata,
		}

		if d.File == "" {
			general = append(general, m)

			continue
		}

		byFile[d.File] = append(byFile[d.File], m)
	}

	files := slices.SortedFunc(maps.Keys(byFile), natsort.CompareFold)

	doc := []byte(skeleton)

	var err error

	if doc, err = sjson.SetBytes(doc, "totals.errors", len(diags)); err != nil {
		return nil, fmt.Errorf("setting error total: %w", err)
	}

	if doc, err = sjson.SetBytes(doc, "totals.files", len(files)); err != nil {
		return nil, fmt.Errorf("setting file total: %w", err)
	}

	for _, file := range files {
		raw, err := json.Marshal(fileReport{Errors: len(byFile[file]), Messages: byFile[file]})
		if err != nil {
			return nil, fmt.Errorf("encoding messages for %s: %w", file, err)
		}

		if doc, err = sjson.SetRawBytes(doc, "files."+fieldPath(file), raw); err != nil {
			return nil, fmt.Errorf("adding %s: %w", file, err)
		}
	}

	if len(general) > 0 {
		raw, err := json.Marshal(general)
		if err != nil {
			return nil, fmt.Errorf("encoding general messages: %w", err)
		}

		if doc, err = sjson.SetRawBytes(doc, "errors", raw); err != nil {
			return nil, fmt.Errorf("adding general messages: %w", err)
		}
	}

	if indent {
		return pretty.Pretty(doc), nil
	}

	return append(doc, '\n'), nil
}

// fieldPath escapes name for use as a single sjson path component.
func fieldPath(name string) string {
	var b strings.Builder

	// Force an object key even when name is numeric.
	b.WriteByte(':')

	for i := range len(name) {
		switch c := name[i]; c {
		case '.', '|', '#', '@', '*', '?', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}

	return b.String()
}

// WriteJSON writes the JSON report to w.
func WriteJSON(w io.Writer, diags []diagnostic.Diagnostic, indent bool) error {
	data, err := MarshalJSON(diags, indent)
	if err != nil {
		return err
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	return nil
}

// Log emits one warning per diagnostic on logger.
func Log(logger zerolog.Logger, diags []diagnostic.Diagnostic) {
	sorted := slices.Clone(diags)
	diagnostic.SortStable(sorted)

	for _, d := range sorted {
		ev := logger.Warn().Str("identifier", string(d.Identifier))

		if d.File != "" {
			ev = ev.Str("file", d.File)
		}

		if d.HasLine() {
			ev = ev.Int("line", d.Line)
		}

		if d.Tip != "" {
			ev = ev.Str("tip", d.Tip)
		}

		ev.Msg(d.Message)
	}

	if len(sorted) > 0 {
		logger.Warn().Int("errors", len(sorted)).Msg("Found translation problems")
	} else {
		logger.Info().Msg("No translation problems found")
	}
}
