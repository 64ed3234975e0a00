// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package loader reads a single translation catalog file into a flat key/value map.

Every supported format is flattened the same way: nested maps join their keys
with dots and lists use the element index as a path segment. Group formats
(PHP arrays and YAML) prefix every key with the file's group name.

Loaders never return errors. Unreadable or malformed files, non-string values
and invalid encodings are reported as diagnostics and loading carries on.
*/
package loader

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"unicode/utf8"

	"codeberg.org/pixivfe/i18ncheck/diagnostic"
)

// Format identifies a catalog file syntax.
type Format string

const (
	JSON Format = "json"
	PHP  Format = "php"
	YAML Format = "yaml"
	TOML Format = "toml"
	PO   Format = "po"
)

// Formats lists every supported format.
var Formats = []Format{JSON, PHP, YAML, TOML, PO}

// Grouped reports whether keys of the format are prefixed with a group name.
func (f Format) Grouped() bool {
	return f == PHP || f == YAML
}

// FormatForExtension maps a file extension, with or without the leading dot,
// to its format.
func FormatForExtension(ext string) (Format, bool) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "json":
		return JSON, true
	case "php":
		return PHP, true
	case "yaml", "yml":
		return YAML, true
	case "toml":
		return TOML, true
	case "po":
		return PO, true
	}

	return "", false
}

// Options tunes loading.
type Options struct {
	// ValidateEncoding reports keys and values that are not valid UTF-8.
	// Such entries are still loaded.
	ValidateEncoding bool
}

// Result is the content of one file.
type Result struct {
	Translations map[string]string
	Lines        map[string]int

	// Keys lists translation keys in file order.
	Keys []string

	Diagnostics []diagnostic.Diagnostic
}

// Line returns the source line of key, or diagnostic.UnknownLine.
func (r Result) Line(key string) int {
	if line, ok := r.Lines[key]; ok {
		return line
	}

	return diagnostic.UnknownLine
}

type parseFunc func(b *builder, data []byte)

var parsers = map[Format]parseFunc{
	JSON: parseJSON,
	PHP:  parsePHP,
	YAML: parseYAML,
	TOML: parseTOML,
	PO:   parsePO,
}

// Load reads and parses path. For group formats, group is the key prefix.
func Load(format Format, path, group string, opts Options) Result {
	data, err := os.ReadFile(path)
	if err != nil {
		b := newBuilder(path, group, opts)
		b.fail(fmt.Sprintf("Failed to read file: %v", err), diagnostic.UnknownLine)

		return b.result()
	}

	return Parse(format, path, group, data, opts)
}

// Parse parses data as if it were read from path.
func Parse(format Format, path, group string, data []byte, opts Options) Result {
	b := newBuilder(path, group, opts)

	parse, ok := parsers[format]
	if !ok {
		b.fail(fmt.Sprintf("Unsupported catalog format %q", format), diagnostic.UnknownLine)

		return b.result()
	}

	if !format.Grouped() {
		b.group = ""
	}

	parse(b, data)

	return b.result()
}

// builder accumulates the entries of one file.
type builder struct {
	file   string
	group  string
	opts   Options
	failed bool

	translations map[string]string
	lines        map[string]int
	keys         []string
	diags        []diagnostic.Diagnostic
}

func newBuilder(file, group string, opts Options) *builder {
	return &builder{
		file:         file,
		group:        group,
		opts:         opts,
		translations: make(map[string]string),
		lines:        make(map[string]int),
	}
}

// path joins a parent path and a child segment. The group is the root parent.
func (b *builder) path(parent, segment string) string {
	if parent == "" {
		parent = b.group
	}

	if parent == "" {
		return segment
	}

	return parent + "." + segment
}

// set stores a string leaf. An empty key with an empty value is dropped silently.
func (b *builder) set(key, value string, line int) {
	if key == "" && value == "" {
		return
	}

	if _, exists := b.translations[key]; !exists {
		b.keys = append(b.keys, key)
	}

	b.translations[key] = value
	b.lines[key] = line
}

// invalid reports a non-string leaf and removes any earlier value for key.
func (b *builder) invalid(key, repr string, line int) {
	if _, exists := b.translations[key]; exists {
		delete(b.translations, key)
		delete(b.lines, key)
		b.keys = slices.DeleteFunc(b.keys, func(k string) bool { return k == key })
	}

	b.report(fmt.Sprintf("Invalid value: %s", repr), line, key)
}

func (b *builder) report(message string, line int, key string) {
	d := diagnostic.New(diagnostic.TranslationLoaderError, message).At(b.file, line)
	if key != "" {
		d = d.WithMeta(map[string]string{diagnostic.MetaKey: key})
	}

	b.diags = append(b.diags, d)
}

// fail discards everything loaded so far and records a file-level problem.
func (b *builder) fail(message string, line int) {
	b.failed = true
	b.translations = make(map[string]string)
	b.lines = make(map[string]int)
	b.keys = nil
	b.diags = append(b.diags, diagnostic.New(diagnostic.TranslationLoaderError, message).At(b.file, line))
}

func (b *builder) result() Result {
	if b.opts.ValidateEncoding && !b.failed {
		b.validateEncoding()
	}

	return Result{
		Translations: b.translations,
		Lines:        b.lines,
		Keys:         b.keys,
		Diagnostics:  b.diags,
	}
}

func (b *builder) validateEncoding() {
	for _, key := range b.keys {
		line := b.lines[key]

		if !utf8.ValidString(key) {
			b.diags = append(b.diags, diagnostic.New(
				diagnostic.InvalidCharacterEncoding,
				"Invalid character encoding for key "+diagnostic.Quote(key),
			).At(b.file, line))
		}

		if value := b.translations[key]; !utf8.ValidString(value) {
			b.diags = append(b.diags, diagnostic.New(
				diagnostic.InvalidCharacterEncoding,
				"Invalid character encoding for value "+diagnostic.Quote(value)+" of key "+diagnostic.Quote(key),
			).At(b.file, line))
		}
	}
}

// lineIndex maps byte offsets to 1-based line numbers.
type lineIndex []int

func newLineIndex(data []byte) lineIndex {
	idx := lineIndex{}

	for i, c := range data {
		if c == '\n' {
			idx = append(idx, i)
		}
	}

	return idx
}

// at returns the line holding byte offset pos.
func (idx lineIndex) at(pos int) int {
	n, _ := slices.BinarySearch(idx, pos)

	return n + 1
}

// findLine returns the line of the first occurrence of needle, or UnknownLine.
// Repeated text earlier in the file yields the wrong line.
func findLine(src string, idx lineIndex, needle string) int {
	pos := strings.Index(src, needle)
	if pos < 0 {
		return diagnostic.UnknownLine
	}

	return idx.at(pos)
}
