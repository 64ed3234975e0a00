// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package fuzzy

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func matchers(t *testing.T) map[string]func() Matcher {
	t.Helper()

	return map[string]func() Matcher{
		"naive":   func() Matcher { return NewNaive(DefaultThreshold) },
		"indexed": func() Matcher { return NewIndexed(DefaultThreshold) },
		"memoizing": func() Matcher {
			m, err := NewMemoizing(NewIndexed(DefaultThreshold), 16, true)
			require.NoError(t, err)

			return m
		},
	}
}

func TestSearch(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		corpus []string
		query  string
		want   string
		found  bool
	}{
		{"EmptyCorpus", nil, "abcd", "", false},
		{"EmptyQuery", []string{"a", ""}, "", "", false},
		{"Exact", []string{"foo", "bar"}, "bar", "bar", true},
		{"AtThreshold", []string{"abce"}, "abcd", "abce", true},
		{"AboveThreshold", []string{"abd"}, "abc", "", false},
		{"TieFirstInsertedWins", []string{"abce", "abcf"}, "abcd", "abce", true},
		{"CloserLaterWins", []string{"messages.wlecome", "messages.welcome"}, "messages.welcom", "messages.welcome", true},
		{"MultiByte", []string{"привет мир"}, "привет мип", "привет мир", true},
		{"LengthOnly", []string{"welcome"}, "welcome back", "", false},
	}

	for name, newMatcher := range matchers(t) {
		for _, tc := range cases {
			t.Run(name+"/"+tc.name, func(t *testing.T) {
				t.Parallel()

				m := newMatcher()
				m.AddMany(tc.corpus)

				got, ok := m.Search(tc.query)
				assert.Equal(t, tc.found, ok)
				assert.Equal(t, tc.want, got)
			})
		}
	}
}

func TestIndexedAgreesWithNaive(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(1, 2))
	alphabet := []rune("abcde._")

	randomString := func() string {
		var sb strings.Builder

		n := 1 + rng.IntN(10)
		for range n {
			sb.WriteRune(alphabet[rng.IntN(len(alphabet))])
		}

		return sb.String()
	}

	naive := NewNaive(0.4)
	indexed := NewIndexed(0.4)

	for range 300 {
		s := randomString()
		naive.Add(s)
		indexed.Add(s)
	}

	assert.Equal(t, naive.Len(), indexed.Len())

	for range 500 {
		q := randomString()

		wantMatch, wantOK := naive.Search(q)
		gotMatch, gotOK := indexed.Search(q)

		assert.Equal(t, wantOK, gotOK, q)
		assert.Equal(t, wantMatch, gotMatch, q)
	}
}

func TestLowerBound(t *testing.T) {
	t.Parallel()

	// "ab" vs "ba": same letters, length equal, edit distance 2.
	assert.Equal(t, 0, lowerBound(2, 2, 2))
	// "aa" vs "bb": L1 is 4.
	assert.Equal(t, 2, lowerBound(2, 2, 0))
	// "abc" vs "a": length difference dominates.
	assert.Equal(t, 2, lowerBound(3, 1, 1))
}

func TestMemoizingInvalidatesOnAdd(t *testing.T) {
	t.Parallel()

	m, err := NewMemoizing(NewNaive(DefaultThreshold), 8, false)
	require.NoError(t, err)

	_, ok := m.Search("greeting")
	assert.False(t, ok)

	_, ok = m.Search("greeting")
	assert.False(t, ok, "cached miss must stay a miss")

	m.Add("greetings")

	got, ok := m.Search("greeting")
	require.True(t, ok)
	assert.Equal(t, "greetings", got)

	got, ok = m.Search("greeting")
	require.True(t, ok)
	assert.Equal(t, "greetings", got)

	stats := m.Stats()
	assert.Equal(t, uint64(2), stats.Hits)
	assert.Equal(t, uint64(2), stats.Misses)
}

func TestNullNeverMatches(t *testing.T) {
	t.Parallel()

	var m Matcher = Null{}
	m.Add("foo")
	m.AddMany([]string{"bar"})

	_, ok := m.Search("foo")
	assert.False(t, ok)
}

func TestNew(t *testing.T) {
	t.Parallel()

	m, err := New(AlgorithmNaive, 0.5)
	require.NoError(t, err)
	assert.IsType(t, &Naive{}, m)

	m, err = New("", DefaultThreshold)
	require.NoError(t, err)
	assert.IsType(t, &Indexed{}, m)

	_, err = New("fuse", DefaultThreshold)
	require.ErrorIs(t, err, ErrUnknownAlgorithm)

	_, err = New(AlgorithmNaive, 0)
	require.ErrorIs(t, err, ErrInvalidThreshold)
}

func TestMaxDistance(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, maxDistance(4, 0.25))
	assert.Equal(t, 0, maxDistance(3, 0.25))
	assert.Equal(t, 3, maxDistance(10, 0.3))
}
