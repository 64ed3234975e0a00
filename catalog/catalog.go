// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package catalog holds every translation string found under a catalog root.

A catalog root contains one entry per locale:

	lang/
	├── en.json           flat keys for locale "en"
	├── en/
	│   └── auth.php      keys prefixed with "auth." for locale "en"
	└── pt_BR/
	    └── auth.yaml     keys prefixed with "auth." for locale "pt_BR"

Files are loaded shallowest first and in case-insensitive natural order, so the
winner of a key defined twice is the same on every run. Once Scan returns the
catalog is read-only and safe for concurrent use.
*/
package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"codeberg.org/pixivfe/i18ncheck/catalog/loader"
	"codeberg.org/pixivfe/i18ncheck/diagnostic"
	"codeberg.org/pixivfe/i18ncheck/fuzzy"
	"codeberg.org/pixivfe/i18ncheck/keypath"
	"codeberg.org/pixivfe/i18ncheck/natsort"
)

// UnknownFile is reported for entries without a recorded location.
const UnknownFile = "unknown"

// ErrNotDirectory is returned when the catalog root cannot be scanned.
var ErrNotDirectory = errors.New("catalog root is not a directory")

// discoveryPattern matches paths relative to the catalog root. The first group
// is the locale, the third the group name of grouped formats.
var discoveryPattern = regexp.MustCompile(`^([\w-]{2,})(?:\.(json|toml|po)|/([^/]+)\.(php|ya?ml))$`)

// Options configures Scan.
type Options struct {
	// BaseLocale is the reference locale. It counts as present even without files.
	BaseLocale string

	// Formats restricts discovery. Empty means every format.
	Formats []loader.Format

	ValidateEncoding bool

	// NewMatcher builds the matchers behind key suggestions.
	// Nil disables suggestions.
	NewMatcher func() fuzzy.Matcher
}

type entry struct {
	value string
	file  string
	line  int
}

// Catalog maps (locale, key) pairs to translation strings.
type Catalog struct {
	opts     Options
	resolver *keypath.Resolver
	logger   zerolog.Logger

	data         map[string]map[keypath.Key]*entry
	order        map[string][]keypath.Key
	foundLocales []string
	localeFiles  map[string][]string
	diagnostics  []diagnostic.Diagnostic

	matcher     fuzzy.Matcher
	keys        map[string]struct{}
	valueOwners map[string]*owners
}

// owners lists the keys currently holding a value, oldest first, with the
// number of locales each holds it in.
type owners struct {
	keys   []string
	counts map[string]int
}

func (c *Catalog) holdValue(value, key string) {
	o := c.valueOwners[value]
	if o == nil {
		o = &owners{counts: make(map[string]int)}
		c.valueOwners[value] = o
	}

	if o.counts[key] == 0 {
		o.keys = append(o.keys, key)
	}

	o.counts[key]++
}

func (c *Catalog) releaseValue(value, key string) {
	o := c.valueOwners[value]
	if o == nil || o.counts[key] == 0 {
		return
	}

	if o.counts[key]--; o.counts[key] > 0 {
		return
	}

	delete(o.counts, key)
	o.keys = slices.DeleteFunc(o.keys, func(k string) bool { return k == key })

	if len(o.keys) == 0 {
		delete(c.valueOwners, value)
	}
}

// New returns an empty catalog. Most callers want Scan.
func New(opts Options) *Catalog {
	matcher := fuzzy.Matcher(fuzzy.Null{})
	if opts.NewMatcher != nil {
		matcher = opts.NewMatcher()
	}

	return &Catalog{
		opts:        opts,
		resolver:    keypath.NewResolver(),
		logger:      log.With().Str("sys", "catalog").Logger(),
		data:        make(map[string]map[keypath.Key]*entry),
		order:       make(map[string][]keypath.Key),
		localeFiles: make(map[string][]string),
		matcher:     matcher,
		keys:        make(map[string]struct{}),
		valueOwners: make(map[string]*owners),
	}
}

type catalogFile struct {
	path   string
	rel    string
	locale string
	group  string
	format loader.Format
}

// Scan discovers and loads every catalog file below root. Problems with
// individual files become diagnostics; only an unusable root is an error.
func Scan(root string, opts Options) (*Catalog, error) {
	c := New(opts)

	files, err := c.discover(root)
	if err != nil {
		return nil, err
	}

	for _, f := range files {
		c.load(f)
	}

	c.logger.Info().
		Str("root", root).
		Int("files", len(files)).
		Strs("locales", c.foundLocales).
		Int("diagnostics", len(c.diagnostics)).
		Msg("Catalog loaded")

	return c, nil
}

func (c *Catalog) discover(root string) ([]catalogFile, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotDirectory, err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}

	var files []catalogFile

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			c.logger.Warn().Err(err).Str("path", path).Msg("Skipping unreadable path")

			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}

			return nil
		}

		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}

		f, ok := c.match(path, filepath.ToSlash(rel))
		if ok {
			files = append(files, f)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning catalog root %s: %w", root, err)
	}

	slices.SortStableFunc(files, func(a, b catalogFile) int {
		if da, db := strings.Count(a.rel, "/"), strings.Count(b.rel, "/"); da != db {
			return da - db
		}

		return natsort.CompareFold(a.rel, b.rel)
	})

	return files, nil
}

func (c *Catalog) match(path, rel string) (catalogFile, bool) {
	m := discoveryPattern.FindStringSubmatch(rel)
	if m == nil {
		return catalogFile{}, false
	}

	ext := m[2]
	if ext == "" {
		ext = m[4]
	}

	format, ok := loader.FormatForExtension(ext)
	if !ok || (len(c.opts.Formats) > 0 && !slices.Contains(c.opts.Formats, format)) {
		return catalogFile{}, false
	}

	return catalogFile{path: path, rel: rel, locale: m[1], group: m[3], format: format}, true
}

func (c *Catalog) load(f catalogFile) {
	c.addLocale(f.locale)
	c.localeFiles[f.locale] = append(c.localeFiles[f.locale], f.path)

	res := loader.Load(f.format, f.path, f.group, loader.Options{ValidateEncoding: c.opts.ValidateEncoding})
	c.diagnostics = append(c.diagnostics, res.Diagnostics...)

	for _, key := range res.Keys {
		line := res.Line(key)
		if c.has(f.locale, key) {
			c.diagnostics = append(c.diagnostics, diagnostic.New(
				diagnostic.ConflictingKey,
				"Conflicting key: "+diagnostic.Quote(key),
			).At(f.path, line).WithMeta(map[string]string{
				diagnostic.MetaKey:    key,
				diagnostic.MetaLocale: f.locale,
			}))
		}

		c.put(f.locale, key, res.Translations[key], f.path, line)
	}

	c.logger.Debug().
		Str("file", f.path).
		Str("locale", f.locale).
		Str("format", string(f.format)).
		Int("entries", len(res.Keys)).
		Int("diagnostics", len(res.Diagnostics)).
		Msg("Loaded catalog file")
}

// Add stores a single entry as if it were loaded from file at line, replacing
// any previous value.
func (c *Catalog) Add(locale, key, value, file string, line int) {
	c.addLocale(locale)
	c.put(locale, key, value, file, line)
}

func (c *Catalog) addLocale(locale string) {
	i, found := slices.BinarySearchFunc(c.foundLocales, locale, natsort.Compare)
	if !found {
		c.foundLocales = slices.Insert(c.foundLocales, i, locale)
	}
}

func (c *Catalog) has(locale, key string) bool {
	_, ok := c.data[locale][keypath.Key{Namespace: keypath.Wildcard, Local: key}]

	return ok
}

// put stores key verbatim in the wildcard namespace. Namespaced lookups never
// match loaded entries.
func (c *Catalog) put(locale, key, value, file string, line int) {
	k := keypath.Key{Namespace: keypath.Wildcard, Local: key}

	entries := c.data[locale]
	if entries == nil {
		entries = make(map[keypath.Key]*entry)
		c.data[locale] = entries
	}

	if e, ok := entries[k]; ok {
		if e.value != value {
			c.releaseValue(e.value, key)
			c.holdValue(value, key)
		}

		e.value, e.file, e.line = value, file, line
	} else {
		entries[k] = &entry{value: value, file: file, line: line}
		c.order[locale] = append(c.order[locale], k)
		c.holdValue(value, key)
	}

	c.keys[key] = struct{}{}

	c.matcher.Add(key)
	c.matcher.Add(value)
}

// Get returns the translation of key in locale.
func (c *Catalog) Get(locale, key string) (string, bool) {
	k := c.resolver.Parse(key)
	if k.Local == "" {
		return "", false
	}

	e, ok := c.data[locale][k]
	if !ok {
		return "", false
	}

	return e.value, true
}

// Location returns where the entry was loaded from, or UnknownFile and
// diagnostic.UnknownLine.
func (c *Catalog) Location(locale, key string) (string, int) {
	e, ok := c.data[locale][c.resolver.Parse(key)]
	if !ok || e.file == "" {
		return UnknownFile, diagnostic.UnknownLine
	}

	return e.file, e.line
}

// BaseLocale returns the configured reference locale.
func (c *Catalog) BaseLocale() string {
	return c.opts.BaseLocale
}

// HasLocale reports whether locale is the base locale or has any entry.
func (c *Catalog) HasLocale(locale string) bool {
	return locale == c.opts.BaseLocale || len(c.data[locale]) > 0
}

// FoundLocales returns every locale with at least one discovered file, in
// natural order, whether or not any entry loaded.
func (c *Catalog) FoundLocales() []string {
	return slices.Clone(c.foundLocales)
}

// LocaleFiles returns the files discovered for locale in load order.
func (c *Catalog) LocaleFiles(locale string) []string {
	return slices.Clone(c.localeFiles[locale])
}

// Len returns the number of entries across all locales.
func (c *Catalog) Len() int {
	n := 0
	for _, entries := range c.data {
		n += len(entries)
	}

	return n
}

// Diagnostics returns load-time problems in the order they were found.
func (c *Catalog) Diagnostics() []diagnostic.Diagnostic {
	return slices.Clone(c.diagnostics)
}

// SearchForSimilarKeys suggests an existing key close to key. Both keys and
// values are searched; a matching value suggests the oldest key still holding
// it. Values replaced since loading suggest nothing.
func (c *Catalog) SearchForSimilarKeys(key string) (string, bool) {
	match, ok := c.matcher.Search(key)
	if !ok {
		return "", false
	}

	if _, isKey := c.keys[match]; isKey {
		return match, true
	}

	if o, ok := c.valueOwners[match]; ok {
		return o.keys[0], true
	}

	return "", false
}
