// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package extract

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/pixivfe/i18ncheck/choice"
	"codeberg.org/pixivfe/i18ncheck/rules"
)

func domain(d choice.Domain) *choice.Domain {
	return &d
}

func loadApp(t *testing.T, functions []FunctionSpec) []rules.Call {
	t.Helper()

	if testing.Short() {
		t.Skip("loads packages with the go command")
	}

	dir, err := filepath.Abs(filepath.Join("testdata", "app"))
	require.NoError(t, err)

	calls, err := Calls(context.Background(), Options{
		Dir:       dir,
		Root:      dir,
		Patterns:  []string{"./..."},
		Functions: functions,
		Workers:   2,
	})
	require.NoError(t, err)

	return calls
}

func TestCalls(t *testing.T) {
	t.Parallel()

	functions := append(DefaultFunctions(), FunctionSpec{
		Package: "example.com/app/lang",
		Name:    "Pairs",
		Key:     0,
		Number:  Absent,
		Replace: 1,
		Locale:  Absent,
	})

	calls := loadApp(t, functions)

	expected := []rules.Call{
		{
			Function:     "Trans",
			File:         "main.go",
			Line:         15,
			Keys:         []string{"messages.welcome"},
			Replacements: []string{"name"},
			ReplaceType:  "lang.Replace",
		},
		{
			Function:   "Trans",
			File:       "main.go",
			Line:       16,
			Keys:       []string{"auth.failed"},
			Locales:    []string{"de"},
			LocaleType: "string",
		},
		{
			Function: "Trans",
			File:     "main.go",
			Line:     17,
			KeyType:  "string",
		},
		{
			Function: "TransChoice",
			File:     "main.go",
			Line:     18,
			Keys:     []string{"apples"},
			Number:   domain(choice.Constant(3)),
		},
		{
			Function: "TransChoice",
			File:     "main.go",
			Line:     19,
			Keys:     []string{"apples"},
			Number:   domain(choice.Unbounded()),
		},
		{
			Function:     "Translator.Get",
			File:         "main.go",
			Line:         20,
			Keys:         []string{"hello"},
			Locales:      []string{"fr"},
			LocaleType:   "string",
			Replacements: []string{"name", "count"},
			ReplaceType:  "map[string]string",
		},
		{
			Function: "Translator.Choice",
			File:     "main.go",
			Line:     21,
			Keys:     []string{"apples"},
			Number:   domain(choice.Between(0, 255)),
		},
		{
			Function:     "Pairs",
			File:         "main.go",
			Line:         22,
			Keys:         []string{"hello"},
			Replacements: []string{"name", "count"},
			ReplaceType:  "...any",
		},
	}

	assert.Equal(t, expected, calls)
}

func TestCallsPackageFilter(t *testing.T) {
	t.Parallel()

	calls := loadApp(t, []FunctionSpec{
		{Package: "example.com/other", Name: "Trans", Number: Absent, Replace: Absent, Locale: Absent},
		{Package: "example.com/app/lang", Name: "Unrelated", Number: Absent, Replace: Absent, Locale: Absent},
	})

	require.Len(t, calls, 1)
	assert.Equal(t, "Unrelated", calls[0].Function)
	assert.Equal(t, []string{"ignored"}, calls[0].Keys)
	assert.Nil(t, calls[0].Replacements)
	assert.Nil(t, calls[0].Number)
}

func TestCallsInvalidFunction(t *testing.T) {
	t.Parallel()

	_, err := Calls(context.Background(), Options{
		Dir:       t.TempDir(),
		Functions: []FunctionSpec{{Name: "Trans", Key: -1}},
	})
	require.ErrorIs(t, err, ErrInvalidFunction)
}

func TestFunctionSpec(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		spec  FunctionSpec
		str   string
		valid bool
	}{
		{"function", FunctionSpec{Name: "Trans", Number: Absent, Replace: 1, Locale: 2}, "Trans", true},
		{"method", FunctionSpec{Receiver: "Translator", Name: "Get", Number: Absent, Replace: 1, Locale: 2}, "Translator.Get", true},
		{"no name", FunctionSpec{Number: Absent, Replace: Absent, Locale: Absent}, "", false},
		{"negative key", FunctionSpec{Name: "T", Key: -1, Number: Absent, Replace: Absent, Locale: Absent}, "T", false},
		{"bad index", FunctionSpec{Name: "T", Number: -2, Replace: Absent, Locale: Absent}, "T", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.str, tc.spec.String())

			if tc.valid {
				assert.NoError(t, tc.spec.Validate())
			} else {
				assert.ErrorIs(t, tc.spec.Validate(), ErrInvalidFunction)
			}
		})
	}
}

func TestDefaultFunctions(t *testing.T) {
	t.Parallel()

	for _, f := range DefaultFunctions() {
		require.NoError(t, f.Validate())
	}

	choices := 0

	for _, f := range DefaultFunctions() {
		if f.IsChoice() {
			choices++
		}
	}

	assert.Equal(t, 2, choices)
}

func TestNearestGoModDir(t *testing.T) {
	t.Parallel()

	assert.Equal(t, filepath.Join("testdata", "app"), nearestGoModDir(t.Context(), filepath.Join("testdata", "app", "lang")))
}

func TestFunctionSpecYAML(t *testing.T) {
	t.Parallel()

	var specs []FunctionSpec

	require.NoError(t, yaml.Unmarshal([]byte(`
- name: T
  package: example.com/i18n
- name: Plural
  receiver: Bundle
  number: 1
  replace: 2
`), &specs))

	assert.Equal(t, []FunctionSpec{
		{Package: "example.com/i18n", Name: "T", Key: 0, Number: Absent, Replace: Absent, Locale: Absent},
		{Receiver: "Bundle", Name: "Plural", Key: 0, Number: 1, Replace: 2, Locale: Absent},
	}, specs)
}
