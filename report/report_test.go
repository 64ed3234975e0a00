// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"codeberg.org/pixivfe/i18ncheck/diagnostic"
)

func sample() []diagnostic.Diagnostic {
	return []diagnostic.Diagnostic{
		diagnostic.New(diagnostic.MissingTranslationString, "second").At("src/page10.go", 4),
		diagnostic.New(diagnostic.MissingTranslationString, "first").At("src/page2.go", 9).WithTip("a tip"),
		diagnostic.New(diagnostic.MissingTranslationString, "earlier").At("src/page2.go", 3),
		diagnostic.New(diagnostic.InvalidLocaleUnknown, "general"),
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want Format
		err  bool
	}{
		{"console", Console, false},
		{" JSON ", JSON, false},
		{"xml", "", true},
	}

	for _, tc := range cases {
		got, err := ParseFormat(tc.in)
		if tc.err {
			assert.ErrorIs(t, err, ErrUnknownFormat)

			continue
		}

		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
}

func TestMarshalJSON(t *testing.T) {
	t.Parallel()

	data, err := MarshalJSON(sample(), false)
	require.NoError(t, err)
	require.True(t, gjson.ValidBytes(data))

	doc := gjson.ParseBytes(data)
	assert.Equal(t, int64(4), doc.Get("totals.errors").Int())
	assert.Equal(t, int64(2), doc.Get("totals.files").Int())

	var files []string

	doc.Get("files").ForEach(func(key, _ gjson.Result) bool {
		files = append(files, key.String())

		return true
	})
	assert.Equal(t, []string{"src/page2.go", "src/page10.go"}, files)

	page2 := doc.Get(`files.src/page2\.go`)
	assert.Equal(t, int64(2), page2.Get("errors").Int())
	assert.Equal(t, "earlier", page2.Get("messages.0.message").String())
	assert.Equal(t, "first", page2.Get("messages.1.message").String())
	assert.Equal(t, "a tip", page2.Get("messages.1.tip").String())
	assert.False(t, page2.Get("messages.0.tip").Exists())
	assert.Equal(t, int64(3), page2.Get("messages.0.line").Int())

	general := doc.Get("errors").Array()
	require.Len(t, general, 1)
	assert.Equal(t, "general", general[0].Get("message").String())
	assert.Equal(t, string(diagnostic.InvalidLocaleUnknown), general[0].Get("identifier").String())
}

func TestMarshalJSONEmpty(t *testing.T) {
	t.Parallel()

	data, err := MarshalJSON(nil, false)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, map[string]any{
		"totals": map[string]any{"errors": float64(0), "files": float64(0)},
		"files":  map[string]any{},
		"errors": []any{},
	}, decoded)
}

func TestMarshalJSONPretty(t *testing.T) {
	t.Parallel()

	compact, err := MarshalJSON(sample(), false)
	require.NoError(t, err)

	indented, err := MarshalJSON(sample(), true)
	require.NoError(t, err)

	assert.Greater(t, bytes.Count(indented, []byte("\n")), 10)
	assert.JSONEq(t, string(compact), string(indented))
}

func TestFieldPath(t *testing.T) {
	t.Parallel()

	data, err := MarshalJSON([]diagnostic.Diagnostic{
		diagnostic.New(diagnostic.MissingTranslationString, "odd").At("a*b?.c", 1),
		diagnostic.New(diagnostic.MissingTranslationString, "numeric").At("42", 1),
	}, false)
	require.NoError(t, err)

	var decoded struct {
		Files map[string]fileReport `json:"files"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded.Files, "a*b?.c")
	assert.Contains(t, decoded.Files, "42")
}

func TestLog(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	Log(zerolog.New(&buf), sample())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)

	first := gjson.Parse(lines[0])
	assert.Equal(t, "warn", first.Get("level").String())
	assert.Equal(t, "general", first.Get("message").String())
	assert.False(t, first.Get("line").Exists())

	second := gjson.Parse(lines[1])
	assert.Equal(t, "src/page10.go", second.Get("file").String())
	assert.Equal(t, int64(4), second.Get("line").Int())

	assert.Equal(t, "a tip", gjson.Parse(lines[3]).Get("tip").String())
	assert.Equal(t, int64(4), gjson.Parse(lines[4]).Get("errors").Int())
}

func TestLogNothing(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	Log(zerolog.New(&buf), nil)

	assert.Contains(t, buf.String(), "No translation problems found")
}
