// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/pixivfe/i18ncheck/diagnostic"
)

func messages(diags []diagnostic.Diagnostic) []string {
	out := make([]string, 0, len(diags))
	for _, d := range diags {
		out = append(out, d.Message)
	}

	return out
}

func TestParseJSON(t *testing.T) {
	t.Parallel()

	data := `{
  "welcome": "Hello",
  "nested": {
    "inner": "Value"
  },
  "list": ["a", "b"],
  "count": 5,
  "empty": [],
  "flag": true
}`

	res := Parse(JSON, "lang/en.json", "ignored", []byte(data), Options{})

	assert.Equal(t, map[string]string{
		"welcome":      "Hello",
		"nested.inner": "Value",
		"list.0":       "a",
		"list.1":       "b",
	}, res.Translations)
	assert.Equal(t, []string{"welcome", "nested.inner", "list.0", "list.1"}, res.Keys)
	assert.Equal(t, 2, res.Line("welcome"))
	assert.Equal(t, 4, res.Line("nested.inner"))
	assert.Equal(t, 6, res.Line("list.1"))
	assert.Equal(t, diagnostic.UnknownLine, res.Line("missing"))

	assert.Equal(t, []string{"Invalid value: 5", "Invalid value: []", "Invalid value: true"}, messages(res.Diagnostics))

	for i, line := range []int{7, 8, 9} {
		assert.Equal(t, line, res.Diagnostics[i].Line)
		assert.Equal(t, diagnostic.TranslationLoaderError, res.Diagnostics[i].Identifier)
		assert.Equal(t, "lang/en.json", res.Diagnostics[i].File)
	}
}

func TestParseJSONFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		message string
	}{
		{name: "string", data: `"text"`, message: `Invalid data type: "string"`},
		{name: "integer", data: `12`, message: `Invalid data type: "integer"`},
		{name: "double", data: `1.5`, message: `Invalid data type: "double"`},
		{name: "null", data: `null`, message: `Invalid data type: "NULL"`},
		{name: "boolean", data: `false`, message: `Invalid data type: "boolean"`},
		{name: "list", data: `["a", "b"]`, message: `Invalid data type: "array"`},
		{name: "empty list", data: ` [] `, message: `Invalid data type: "array"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res := Parse(JSON, "en.json", "", []byte(tt.data), Options{})

			assert.Empty(t, res.Translations)
			require.Len(t, res.Diagnostics, 1)
			assert.Equal(t, tt.message, res.Diagnostics[0].Message)
			assert.Equal(t, diagnostic.UnknownLine, res.Diagnostics[0].Line)
		})
	}

	t.Run("syntax error", func(t *testing.T) {
		t.Parallel()

		res := Parse(JSON, "en.json", "", []byte(`{"a": "b",}`), Options{})

		require.Len(t, res.Diagnostics, 1)
		assert.Contains(t, res.Diagnostics[0].Message, "Failed to parse JSON: ")
		assert.Empty(t, res.Translations)
	})

	t.Run("empty file", func(t *testing.T) {
		t.Parallel()

		res := Parse(JSON, "en.json", "", []byte(""), Options{})

		require.Len(t, res.Diagnostics, 1)
		assert.Contains(t, res.Diagnostics[0].Message, "Failed to parse JSON: ")
	})
}

func TestParseJSONEmptyPair(t *testing.T) {
	t.Parallel()

	res := Parse(JSON, "en.json", "", []byte(`{"": "", "a": ""}`), Options{})

	assert.Equal(t, map[string]string{"a": ""}, res.Translations)
	assert.Equal(t, []string{"a"}, res.Keys)
	assert.Empty(t, res.Diagnostics)
}

func TestParsePHP(t *testing.T) {
	t.Parallel()

	data := `<?php

return [
    'welcome' => 'Hello, :name',
    'nested' => [
        'inner' => "Line\nBreak",
    ],
    'list' => ['a', 'b'],
    'count' => 5,
    'joined' => 'a' . 'b', // trailing comment
];
`

	res := Parse(PHP, "lang/en/messages.php", "messages", []byte(data), Options{})

	assert.Equal(t, map[string]string{
		"messages.welcome":      "Hello, :name",
		"messages.nested.inner": "Line\nBreak",
		"messages.list.0":       "a",
		"messages.list.1":       "b",
		"messages.joined":       "ab",
	}, res.Translations)
	assert.Equal(t, 4, res.Line("messages.welcome"))
	assert.Equal(t, 6, res.Line("messages.nested.inner"))
	assert.Equal(t, 8, res.Line("messages.list.1"))
	assert.Equal(t, 10, res.Line("messages.joined"))

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "Invalid value: 5", res.Diagnostics[0].Message)
	assert.Equal(t, 9, res.Diagnostics[0].Line)
	assert.Equal(t, "messages.count", res.Diagnostics[0].Metadata[diagnostic.MetaKey])
}

func TestParsePHPSyntax(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
		want map[string]string
	}{
		{
			name: "long array syntax",
			data: `<?php return array('a' => 'x', 'b' => array('c' => 'y'));`,
			want: map[string]string{"g.a": "x", "g.b.c": "y"},
		},
		{
			name: "declare and namespace",
			data: "<?php\ndeclare(strict_types=1);\nnamespace App\\Lang;\n\nreturn ['a' => 'x'];",
			want: map[string]string{"g.a": "x"},
		},
		{
			name: "integer keys continue after explicit index",
			data: `<?php return [5 => 'five', 'six', '7' => 'seven', 'eight'];`,
			want: map[string]string{"g.5": "five", "g.6": "six", "g.7": "seven", "g.8": "eight"},
		},
		{
			name: "duplicate key keeps last value",
			data: `<?php return ['a' => 'first', 'a' => 'second'];`,
			want: map[string]string{"g.a": "second"},
		},
		{
			name: "escapes",
			data: `<?php return ['a' => 'it\'s \n', 'b' => "\x41\u{1F600}\101\$x"];`,
			want: map[string]string{"g.a": `it's \n`, "g.b": "A\U0001F600A$x"},
		},
		{
			name: "block comments",
			data: "<?php /* header\n comment */ return [ # note\n 'a' => 'x' ];",
			want: map[string]string{"g.a": "x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res := Parse(PHP, "g.php", "g", []byte(tt.data), Options{})

			assert.Empty(t, res.Diagnostics)
			assert.Equal(t, tt.want, res.Translations)
		})
	}
}

func TestParsePHPFailures(t *testing.T) {
	t.Parallel()

	t.Run("unsupported expression", func(t *testing.T) {
		t.Parallel()

		res := Parse(PHP, "g.php", "g", []byte("<?php\nreturn [\n  'a' => foo(),\n];"), Options{})

		require.Len(t, res.Diagnostics, 1)
		assert.Equal(t, 3, res.Diagnostics[0].Line)
		assert.Contains(t, res.Diagnostics[0].Message, "Failed to parse file with error: ")
		assert.Contains(t, res.Diagnostics[0].Message, "on line 3")
		assert.Empty(t, res.Translations)
	})

	t.Run("no return", func(t *testing.T) {
		t.Parallel()

		res := Parse(PHP, "g.php", "g", []byte("<?php\n// nothing here\n"), Options{})

		require.Len(t, res.Diagnostics, 1)
		assert.Equal(t, `Invalid data type "integer"`, res.Diagnostics[0].Message)
		assert.Equal(t, diagnostic.UnknownLine, res.Diagnostics[0].Line)
	})

	t.Run("scalar return", func(t *testing.T) {
		t.Parallel()

		res := Parse(PHP, "g.php", "g", []byte("<?php return 'text';"), Options{})

		require.Len(t, res.Diagnostics, 1)
		assert.Equal(t, `Invalid data type "string"`, res.Diagnostics[0].Message)
	})

	t.Run("non-string leaves", func(t *testing.T) {
		t.Parallel()

		res := Parse(PHP, "g.php", "g", []byte("<?php return ['a' => 1.0, 'b' => -2, 'c' => null, 'd' => false, 'e' => []];"), Options{})

		assert.Empty(t, res.Translations)
		assert.Equal(t, []string{
			"Invalid value: 1.0",
			"Invalid value: -2",
			"Invalid value: null",
			"Invalid value: false",
			"Invalid value: []",
		}, messages(res.Diagnostics))
	})

	t.Run("syntax error", func(t *testing.T) {
		t.Parallel()

		res := Parse(PHP, "g.php", "g", []byte("<?php\nreturn [\n  'a' => ,\n];"), Options{})

		require.Len(t, res.Diagnostics, 1)
		assert.Equal(t, 3, res.Diagnostics[0].Line)
		assert.Contains(t, res.Diagnostics[0].Message, "Failed to parse file with error: Syntax error")
		assert.Contains(t, res.Diagnostics[0].Message, "on line 3")
		assert.Empty(t, res.Translations)
	})

	t.Run("interpolation", func(t *testing.T) {
		t.Parallel()

		res := Parse(PHP, "g.php", "g", []byte("<?php\nreturn [\n  'a' => \"Hello $name\",\n];"), Options{})

		require.Len(t, res.Diagnostics, 1)
		assert.Equal(t, 3, res.Diagnostics[0].Line)
		assert.Contains(t, res.Diagnostics[0].Message, "Unsupported variable interpolation in string")
		assert.Empty(t, res.Translations)
	})
}

func TestParsePHPLiteralForms(t *testing.T) {
	t.Parallel()

	data := `<?php
return [
    'concat' => b"bin" . 'ary' . ('!'),
    'nested' => ['k' => 'v',],
];`

	res := Parse(PHP, "g.php", "g", []byte(data), Options{})

	require.Empty(t, res.Diagnostics)
	assert.Equal(t, map[string]string{"g.concat": "binary!", "g.nested.k": "v"}, res.Translations)
	assert.Equal(t, 3, res.Line("g.concat"))
	assert.Equal(t, 4, res.Line("g.nested.k"))
}

func TestJSONAndPHPAgree(t *testing.T) {
	t.Parallel()

	fromJSON := Parse(JSON, "en.json", "", []byte(`{"auth": {"failed": "Nope", "list": ["x"]}}`), Options{})
	fromPHP := Parse(PHP, "en/auth.php", "auth", []byte(`<?php return ['failed' => 'Nope', 'list' => ['x']];`), Options{})

	assert.Equal(t, fromJSON.Translations, fromPHP.Translations)
	assert.Equal(t, fromJSON.Keys, fromPHP.Keys)
}

func TestParseYAML(t *testing.T) {
	t.Parallel()

	data := `welcome: Hello
nested:
  inner: Value
list:
  - a
  - b
count: 5
empty: {}
`

	res := Parse(YAML, "en/messages.yaml", "messages", []byte(data), Options{})

	assert.Equal(t, map[string]string{
		"messages.welcome":      "Hello",
		"messages.nested.inner": "Value",
		"messages.list.0":       "a",
		"messages.list.1":       "b",
	}, res.Translations)
	assert.Equal(t, 1, res.Line("messages.welcome"))
	assert.Equal(t, 3, res.Line("messages.nested.inner"))
	assert.Equal(t, 6, res.Line("messages.list.1"))
	assert.Equal(t, []string{"Invalid value: 5", "Invalid value: []"}, messages(res.Diagnostics))
	assert.Equal(t, 7, res.Diagnostics[0].Line)
}

func TestParseYAMLFailures(t *testing.T) {
	t.Parallel()

	t.Run("empty document", func(t *testing.T) {
		t.Parallel()

		res := Parse(YAML, "en/g.yaml", "g", []byte("# only a comment\n"), Options{})

		assert.Empty(t, res.Translations)
		assert.Empty(t, res.Diagnostics)
	})

	t.Run("scalar document", func(t *testing.T) {
		t.Parallel()

		res := Parse(YAML, "en/g.yaml", "g", []byte("just text\n"), Options{})

		require.Len(t, res.Diagnostics, 1)
		assert.Equal(t, `Invalid data type "string"`, res.Diagnostics[0].Message)
	})

	t.Run("syntax error", func(t *testing.T) {
		t.Parallel()

		res := Parse(YAML, "en/g.yaml", "g", []byte("a: [unclosed\n"), Options{})

		require.Len(t, res.Diagnostics, 1)
		assert.Contains(t, res.Diagnostics[0].Message, "Failed to parse file with error: ")
		assert.Empty(t, res.Translations)
	})
}

func TestParseTOML(t *testing.T) {
	t.Parallel()

	data := `welcome = "Hello"
count = 3

[nested]
inner = "Value"
"quoted.key" = "Q"

[[items]]
name = "first"
`

	res := Parse(TOML, "en.toml", "ignored", []byte(data), Options{})

	assert.Equal(t, map[string]string{
		"welcome":           "Hello",
		"nested.inner":      "Value",
		"nested.quoted.key": "Q",
		"items.0.name":      "first",
	}, res.Translations)
	assert.Equal(t, []string{"welcome", "nested.inner", "nested.quoted.key", "items.0.name"}, res.Keys)
	assert.Equal(t, 1, res.Line("welcome"))
	assert.Equal(t, 5, res.Line("nested.inner"))
	assert.Equal(t, 6, res.Line("nested.quoted.key"))
	assert.Equal(t, 9, res.Line("items.0.name"))

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "Invalid value: 3", res.Diagnostics[0].Message)
	assert.Equal(t, 2, res.Diagnostics[0].Line)
}

func TestParseTOMLSyntaxError(t *testing.T) {
	t.Parallel()

	res := Parse(TOML, "en.toml", "", []byte("ok = \"x\"\nbroken = \n"), Options{})

	require.Len(t, res.Diagnostics, 1)
	assert.Contains(t, res.Diagnostics[0].Message, "Failed to parse file with error: ")
	assert.Contains(t, []int{2, 3}, res.Diagnostics[0].Line)
	assert.Empty(t, res.Translations)
}

func TestParseTOMLKeyLines(t *testing.T) {
	t.Parallel()

	data := `intro = """
fake = "not a key"
"""
"a=b" = "eq" # trailing = comment
site . title = "Dotted"
menu = { home = "Home", about = { label = "About" } }

[ "sec.tion" ]
'lit' = "L"
tags = [
  { name = "one" },
]
`

	res := Parse(TOML, "en.toml", "", []byte(data), Options{})

	require.Empty(t, res.Diagnostics)
	assert.Equal(t, []string{
		"intro", "a=b", "site.title", "menu.home", "menu.about.label", "sec.tion.lit", "sec.tion.tags.0.name",
	}, res.Keys)

	cases := map[string]int{
		"intro":                1,
		"a=b":                  4,
		"site.title":           5,
		"menu.home":            6,
		"menu.about.label":     6,
		"sec.tion.lit":         9,
		"sec.tion.tags.0.name": 11,
	}

	for key, want := range cases {
		assert.Equal(t, want, res.Line(key), key)
	}
}

func TestScanTOMLKeyLines(t *testing.T) {
	t.Parallel()

	lines := scanTOMLKeyLines([]byte("[a.b]\nc = { d = 1 }\n\n[[e]]\nf = 2\n[[e]]\nf = 3\n"))

	assert.Equal(t, map[string]int{
		"a\x00b":           1,
		"a\x00b\x00c":      2,
		"a\x00b\x00c\x00d": 2,
		"e":                4,
		"e\x00f":           5,
	}, lines)
}

func TestParsePO(t *testing.T) {
	t.Parallel()

	data := `msgid ""
msgstr ""
"Content-Type: text/plain; charset=UTF-8\n"
"Plural-Forms: nplurals=2; plural=(n != 1);\n"

msgid "Hello"
msgstr "Bonjour"

msgid "apple"
msgid_plural "apples"
msgstr[0] "pomme"
msgstr[1] "pommes"

msgid "Untranslated"
msgstr ""
`

	res := Parse(PO, "fr.po", "", []byte(data), Options{})

	assert.Equal(t, map[string]string{
		"Hello": "Bonjour",
		"apple": "pomme|pommes",
	}, res.Translations)
	assert.Equal(t, 6, res.Line("Hello"))
	assert.Equal(t, 9, res.Line("apple"))
	assert.Empty(t, res.Diagnostics)
}

func TestValidateEncoding(t *testing.T) {
	t.Parallel()

	data := []byte(`<?php return ['bad' => "\xff", 'good' => 'ok'];`)

	res := Parse(PHP, "en/g.php", "g", data, Options{ValidateEncoding: true})
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, diagnostic.InvalidCharacterEncoding, res.Diagnostics[0].Identifier)
	assert.Contains(t, res.Diagnostics[0].Message, "Invalid character encoding for value ")
	assert.Contains(t, res.Diagnostics[0].Message, `"g.bad"`)
	assert.Equal(t, "\xff", res.Translations["g.bad"])

	res = Parse(PHP, "en/g.php", "g", data, Options{})
	assert.Empty(t, res.Diagnostics)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "en.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a": "b"}`), 0o600))

	res := Load(JSON, path, "", Options{})
	assert.Equal(t, map[string]string{"a": "b"}, res.Translations)

	res = Load(JSON, filepath.Join(dir, "missing.json"), "", Options{})
	require.Len(t, res.Diagnostics, 1)
	assert.Contains(t, res.Diagnostics[0].Message, "Failed to read file: ")
}

func TestFormatForExtension(t *testing.T) {
	t.Parallel()

	for ext, want := range map[string]Format{".json": JSON, "php": PHP, ".yml": YAML, ".YAML": YAML, ".toml": TOML, ".po": PO} {
		got, ok := FormatForExtension(ext)
		assert.True(t, ok, ext)
		assert.Equal(t, want, got, ext)
	}

	_, ok := FormatForExtension(".ini")
	assert.False(t, ok)
	assert.True(t, PHP.Grouped())
	assert.False(t, JSON.Grouped())
}
