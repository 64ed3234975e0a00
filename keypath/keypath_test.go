// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package keypath

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want Key
	}{
		{"", Key{Namespace: "*", Local: ""}},
		{"a::b", Key{Namespace: "a", Local: "b"}},
		{"a::", Key{Namespace: "*", Local: "a::"}},
		{"::b", Key{Namespace: "*", Local: "::b"}},
		{"messages.welcome", Key{Namespace: "*", Local: "messages.welcome"}},
		{"vendor::messages.welcome", Key{Namespace: "vendor", Local: "messages.welcome"}},
		{"a::b::c", Key{Namespace: "a", Local: "b::c"}},
		{"Hello, world!", Key{Namespace: "*", Local: "Hello, world!"}},
	}

	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			t.Parallel()

			got := Parse(tc.raw)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, got, Parse(tc.raw), "Parse must be idempotent")
		})
	}
}

func TestKeyString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "messages.welcome", Parse("messages.welcome").String())
	assert.Equal(t, "vendor::welcome", Parse("vendor::welcome").String())
}

func TestResolverMemoizes(t *testing.T) {
	t.Parallel()

	r := NewResolver()

	var wg sync.WaitGroup

	for range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for _, raw := range []string{"a::b", "c", "a::b", ""} {
				assert.Equal(t, Parse(raw), r.Parse(raw))
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, 3, r.Len())
}

func TestResolverZeroValue(t *testing.T) {
	t.Parallel()

	var r Resolver

	assert.Equal(t, Key{Namespace: "ns", Local: "key"}, r.Parse("ns::key"))
	assert.Equal(t, 1, r.Len())
}
