// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pelletier/go-toml/v2/unstable"

	"codeberg.org/pixivfe/i18ncheck/diagnostic"
	"codeberg.org/pixivfe/i18ncheck/natsort"
)

func parseTOML(b *builder, data []byte) {
	var doc map[string]any

	meta, err := toml.Decode(string(data), &doc)
	if err != nil {
		line := diagnostic.UnknownLine

		var perr toml.ParseError
		if errors.As(err, &perr) {
			line = perr.Position.Line
			err = errors.New(perr.Message)
		}

		b.fail("Failed to parse file with error: "+err.Error(), line)

		return
	}

	w := tomlWalker{
		b:     b,
		order: make(map[string]int),
		lines: scanTOMLKeyLines(data),
	}

	for i, key := range meta.Keys() {
		joined := strings.Join(key, "\x00")
		if _, seen := w.order[joined]; !seen {
			w.order[joined] = i
		}
	}

	w.table(nil, doc)
}

type tomlWalker struct {
	b     *builder
	order map[string]int
	lines map[string]int
}

// table visits children in document order. Keys the decoder did not report
// come last in natural order.
func (w *tomlWalker) table(segments []string, table map[string]any) {
	names := slices.Collect(maps.Keys(table))

	slices.SortFunc(names, func(a, b string) int {
		ia, oka := w.order[strings.Join(append(slices.Clone(segments), a), "\x00")]
		ib, okb := w.order[strings.Join(append(slices.Clone(segments), b), "\x00")]

		switch {
		case oka && okb && ia != ib:
			return ia - ib
		case oka != okb:
			if oka {
				return -1
			}

			return 1
		}

		return natsort.Compare(a, b)
	})

	for _, name := range names {
		w.value(append(slices.Clone(segments), name), table[name])
	}
}

func (w *tomlWalker) value(segments []string, v any) {
	path := strings.Join(segments, ".")
	line := w.line(segments)

	switch v := v.(type) {
	case string:
		w.b.set(path, v, line)
	case map[string]any:
		if len(v) == 0 {
			w.b.invalid(path, "[]", line)

			return
		}

		w.table(segments, v)
	case []map[string]any:
		if len(v) == 0 {
			w.b.invalid(path, "[]", line)

			return
		}

		for i, t := range v {
			w.value(append(slices.Clone(segments), strconv.Itoa(i)), t)
		}
	case []any:
		if len(v) == 0 {
			w.b.invalid(path, "[]", line)

			return
		}

		for i, item := range v {
			w.value(append(slices.Clone(segments), strconv.Itoa(i)), item)
		}
	default:
		w.b.invalid(path, tomlRepr(v), line)
	}
}

// line looks up the assignment of segments. Array elements share the line of
// the array itself.
func (w *tomlWalker) line(segments []string) int {
	for n := len(segments); n > 0; n-- {
		if line, ok := w.lines[strings.Join(segments[:n], "\x00")]; ok {
			return line
		}

		if _, err := strconv.Atoi(segments[n-1]); err != nil {
			break
		}
	}

	// Keys inside arrays of tables are recorded without the element index.
	var named []string

	for _, s := range segments {
		if _, err := strconv.Atoi(s); err != nil {
			named = append(named, s)
		}
	}

	if line, ok := w.lines[strings.Join(named, "\x00")]; ok {
		return line
	}

	return diagnostic.UnknownLine
}

func tomlRepr(v any) string {
	encoded, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}

	return string(encoded)
}

// scanTOMLKeyLines records the first line of every table header and key,
// including keys inside inline tables. Keys under arrays are recorded without
// element indexes.
func scanTOMLKeyLines(data []byte) map[string]int {
	lines := make(map[string]int)

	var (
		p     unstable.Parser
		table []string
	)

	p.Reset(data)

	for p.NextExpression() {
		expr := p.Expression()

		switch expr.Kind {
		case unstable.Table, unstable.ArrayTable:
			table = recordTOMLKey(&p, lines, nil, expr)
		case unstable.KeyValue:
			recordTOMLKeyValue(&p, lines, table, expr)
		}
	}

	return lines
}

func recordTOMLKeyValue(p *unstable.Parser, lines map[string]int, prefix []string, kv *unstable.Node) {
	path := recordTOMLKey(p, lines, prefix, kv)
	recordTOMLValue(p, lines, path, kv.Value())
}

func recordTOMLValue(p *unstable.Parser, lines map[string]int, path []string, v *unstable.Node) {
	switch v.Kind {
	case unstable.InlineTable:
		for it := v.Children(); it.Next(); {
			recordTOMLKeyValue(p, lines, path, it.Node())
		}
	case unstable.Array:
		for it := v.Children(); it.Next(); {
			recordTOMLValue(p, lines, path, it.Node())
		}
	}
}

// recordTOMLKey appends the dotted key of n to prefix and records the line of
// its first part.
func recordTOMLKey(p *unstable.Parser, lines map[string]int, prefix []string, n *unstable.Node) []string {
	path := slices.Clone(prefix)
	line := diagnostic.UnknownLine

	for it := n.Key(); it.Next(); {
		part := it.Node()
		if line == diagnostic.UnknownLine {
			line = p.Shape(part.Raw).Start.Line
		}

		path = append(path, string(part.Data))
	}

	joined := strings.Join(path, "\x00")
	if _, ok := lines[joined]; !ok {
		lines[joined] = line
	}

	return path
}
