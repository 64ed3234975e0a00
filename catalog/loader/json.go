// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package loader

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"codeberg.org/pixivfe/i18ncheck/diagnostic"
)

func parseJSON(b *builder, data []byte) {
	if !gjson.ValidBytes(data) {
		b.fail("Failed to parse JSON: "+jsonSyntaxError(data), diagnostic.UnknownLine)

		return
	}

	root := gjson.ParseBytes(data)

	// Only nested lists are keyed by index; a list at the top has no keys.
	if !root.IsObject() {
		b.fail(fmt.Sprintf("Invalid data type: %q", jsonTypeName(root)), diagnostic.UnknownLine)

		return
	}

	w := jsonWalker{b: b, src: string(data), lines: newLineIndex(data)}
	w.walk("", root)
}

type jsonWalker struct {
	b     *builder
	src   string
	lines lineIndex
}

func (w *jsonWalker) walk(prefix string, node gjson.Result) {
	isArray := node.IsArray()
	index := 0

	node.ForEach(func(key, value gjson.Result) bool {
		segment := key.String()
		if isArray {
			segment = strconv.Itoa(index)
			index++
		}

		w.leaf(w.b.path(prefix, segment), value, key.Index, key.Raw)

		return true
	})
}

// leaf handles one value. keyIndex and rawKey locate the key in the source
// when known.
func (w *jsonWalker) leaf(path string, value gjson.Result, keyIndex int, rawKey string) {
	line := w.line(path, value, keyIndex, rawKey)

	switch {
	case value.Type == gjson.String:
		w.b.set(path, value.Str, line)
	case value.Type == gjson.JSON && !isEmptyJSON(value):
		w.walk(path, value)
	case value.Type == gjson.JSON:
		w.b.invalid(path, "[]", line)
	default:
		w.b.invalid(path, value.Raw, line)
	}
}

// line prefers the parser's byte offsets and falls back to searching for the
// encoded key text, which can pick an earlier duplicate.
func (w *jsonWalker) line(path string, value gjson.Result, keyIndex int, rawKey string) int {
	switch {
	case keyIndex > 0:
		return w.lines.at(keyIndex)
	case value.Index > 0:
		return w.lines.at(value.Index)
	case rawKey != "":
		return findLine(w.src, w.lines, rawKey)
	}

	encoded, err := json.Marshal(path)
	if err != nil {
		return diagnostic.UnknownLine
	}

	return findLine(w.src, w.lines, string(encoded))
}

func isEmptyJSON(value gjson.Result) bool {
	empty := true

	value.ForEach(func(_, _ gjson.Result) bool {
		empty = false

		return false
	})

	return empty
}

func jsonTypeName(value gjson.Result) string {
	switch value.Type {
	case gjson.String:
		return "string"
	case gjson.Number:
		if strings.ContainsAny(value.Raw, ".eE") {
			return "double"
		}

		return "integer"
	case gjson.True, gjson.False:
		return "boolean"
	case gjson.Null:
		return "NULL"
	case gjson.JSON:
		if value.IsArray() {
			return "array"
		}

		return "object"
	}

	return "unknown"
}

// jsonSyntaxError describes why data is not valid JSON. gjson only reports
// validity, so the decoder from the standard library supplies the reason.
func jsonSyntaxError(data []byte) string {
	var v any

	if err := json.Unmarshal(data, &v); err != nil {
		return err.Error()
	}

	return "Syntax error"
}
