// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package keypath splits raw translation keys into a namespace and a flat local key.

A key of the form "vendor::messages.welcome" belongs to the "vendor" namespace.
Every other key belongs to the wildcard namespace "*". Dotted paths are kept
intact as a single local key.
*/
package keypath

import (
	"strings"
	"sync"
)

const (
	// Wildcard is the namespace of keys without an explicit namespace.
	Wildcard = "*"

	// Separator divides a namespace from the rest of a key.
	Separator = "::"
)

// Key is a parsed translation key.
type Key struct {
	Namespace string
	Local     string
}

// String returns the key in its raw form, omitting the wildcard namespace.
func (k Key) String() string {
	if k.Namespace == Wildcard {
		return k.Local
	}

	return k.Namespace + Separator + k.Local
}

// Parse resolves a raw key without memoization.
//
// If either side of the namespace separator is empty, the whole input is
// treated as an un-namespaced key.
func Parse(raw string) Key {
	if raw == "" {
		return Key{Namespace: Wildcard}
	}

	namespace, rest, found := strings.Cut(raw, Separator)
	if !found || namespace == "" || rest == "" {
		return Key{Namespace: Wildcard, Local: raw}
	}

	return Key{Namespace: namespace, Local: rest}
}

// Resolver memoizes Parse results for one analysis run.
//
// The zero value is ready to use and safe for concurrent use.
type Resolver struct {
	mu    sync.RWMutex
	cache map[string]Key
}

// NewResolver returns an empty Resolver.
func NewResolver() *Resolver {
	return &Resolver{cache: make(map[string]Key)}
}

// Parse returns the cached resolution of raw, computing it on first use.
func (r *Resolver) Parse(raw string) Key {
	r.mu.RLock()
	key, ok := r.cache[raw]
	r.mu.RUnlock()

	if ok {
		return key
	}

	key = Parse(raw)

	r.mu.Lock()
	if r.cache == nil {
		r.cache = make(map[string]Key)
	}

	r.cache[raw] = key
	r.mu.Unlock()

	return key
}

// Len reports how many raw keys are cached.
func (r *Resolver) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.cache)
}
