// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package extract finds translation calls in Go packages.

It loads packages with go/packages, walks every call expression and turns
calls to the configured translation functions into rules.Call records. Key,
locale and replacement arguments are resolved with go/types constant
folding; the count argument of pluralised calls becomes a choice.Domain
derived from its type.
*/
package extract

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/constant"
	"go/types"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/types/typeutil"

	"codeberg.org/pixivfe/i18ncheck/choice"
	"codeberg.org/pixivfe/i18ncheck/natsort"
	"codeberg.org/pixivfe/i18ncheck/rules"
)

// ErrPackages is returned when the analysed packages do not type-check.
var ErrPackages = errors.New("packages contain errors")

const loadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo

// Options controls which packages are analysed and which calls count.
type Options struct {
	// Dir is the directory patterns are resolved in. Defaults to the working directory.
	Dir string
	// Root is the directory reported paths are relative to. Defaults to ProjectRoot(Dir).
	Root     string
	Patterns []string
	// Functions defaults to DefaultFunctions.
	Functions []FunctionSpec
	// Tests includes test files.
	Tests   bool
	Workers int
}

type site struct {
	call   rules.Call
	column int
}

// Calls loads the packages matching opts.Patterns and returns every
// translation call in them, ordered by file, line and column.
func Calls(ctx context.Context, opts Options) ([]rules.Call, error) {
	logger := log.With().Str("sys", "extract").Logger()

	dir := opts.Dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}

		dir = wd
	}

	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", opts.Dir, err)
	}

	functions := opts.Functions
	if len(functions) == 0 {
		functions = DefaultFunctions()
	}

	for _, f := range functions {
		if err := f.Validate(); err != nil {
			return nil, err
		}
	}

	patterns := opts.Patterns
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	root := opts.Root
	if root == "" {
		root = ProjectRoot(ctx, dir)
	}

	pkgs, err := packages.Load(&packages.Config{
		Context: ctx,
		Dir:     dir,
		Mode:    loadMode,
		Tests:   opts.Tests,
	}, patterns...)
	if err != nil {
		return nil, fmt.Errorf("loading packages: %w", err)
	}

	var loadErrors int

	packages.Visit(pkgs, nil, func(pkg *packages.Package) {
		for _, e := range pkg.Errors {
			logger.Error().Str("package", pkg.PkgPath).Msg(e.Error())

			loadErrors++
		}
	})

	if loadErrors > 0 {
		return nil, fmt.Errorf("%w: %d error(s)", ErrPackages, loadErrors)
	}

	found := make([][]site, len(pkgs))

	g, gctx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	}

	for i, pkg := range pkgs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			x := &extractor{pkg: pkg, root: root, functions: functions}
			found[i] = x.run()

			logger.Debug().
				Str("package", pkg.PkgPath).
				Int("calls", len(found[i])).
				Msg("Walked package")

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sites := slices.Concat(found...)
	slices.SortStableFunc(sites, compareSites)

	// With Tests set, a package's files are also part of its test variant.
	sites = slices.CompactFunc(sites, func(a, b site) bool {
		return compareSites(a, b) == 0 && a.call.Function == b.call.Function
	})

	calls := make([]rules.Call, len(sites))
	for i, s := range sites {
		calls[i] = s.call
	}

	logger.Info().
		Int("packages", len(pkgs)).
		Int("calls", len(calls)).
		Msg("Extracted translation calls")

	return calls, nil
}

func compareSites(a, b site) int {
	if c := natsort.CompareFold(a.call.File, b.call.File); c != 0 {
		return c
	}

	return cmp.Or(cmp.Compare(a.call.Line, b.call.Line), cmp.Compare(a.column, b.column))
}

type extractor struct {
	pkg       *packages.Package
	root      string
	functions []FunctionSpec
}

func (x *extractor) run() []site {
	var sites []site

	for _, file := range x.pkg.Syntax {
		ast.Inspect(file, func(n ast.Node) bool {
			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}

			if s, ok := x.callSite(call); ok {
				sites = append(sites, s)
			}

			return true
		})
	}

	return sites
}

func (x *extractor) callSite(call *ast.CallExpr) (site, bool) {
	fn, ok := typeutil.Callee(x.pkg.TypesInfo, call).(*types.Func)
	if !ok {
		return site{}, false
	}

	fn = fn.Origin()

	spec, ok := x.match(fn)
	if !ok || spec.Key >= len(call.Args) {
		return site{}, false
	}

	pos := x.pkg.Fset.Position(call.Pos())

	c := rules.Call{
		Function: spec.String(),
		File:     x.relPath(pos.Filename),
		Line:     pos.Line,
	}

	key := call.Args[spec.Key]
	if s, ok := x.constString(key); ok {
		c.Keys = []string{s}
	} else {
		c.KeyType = x.typeString(key)
	}

	if arg, ok := argument(call, spec.Number); ok {
		d := x.numberDomain(arg)
		c.Number = &d
	}

	if _, ok := argument(call, spec.Replace); ok {
		c.Replacements, c.ReplaceType = x.replacements(fn, call, spec.Replace)
	}

	if arg, ok := argument(call, spec.Locale); ok {
		// An empty locale selects the default, like leaving it out.
		if s, ok := x.constString(arg); ok && s != "" {
			c.Locales = []string{s}
			c.LocaleType = x.typeString(arg)
		}
	}

	return site{call: c, column: pos.Column}, true
}

func (x *extractor) match(fn *types.Func) (FunctionSpec, bool) {
	var pkgPath string
	if fn.Pkg() != nil {
		pkgPath = fn.Pkg().Path()
	}

	recv := receiverName(fn)

	for _, f := range x.functions {
		if f.Name == fn.Name() && f.Receiver == recv && (f.Package == "" || f.Package == pkgPath) {
			return f, true
		}
	}

	return FunctionSpec{}, false
}

// receiverName returns the name of the named type a method is declared on,
// or "" for plain functions and methods of unnamed interfaces.
func receiverName(fn *types.Func) string {
	sig, ok := fn.Type().(*types.Signature)
	if !ok || sig.Recv() == nil {
		return ""
	}

	t := sig.Recv().Type()
	if p, ok := t.(*types.Pointer); ok {
		t = p.Elem()
	}

	if named, ok := t.(*types.Named); ok {
		return named.Obj().Name()
	}

	return ""
}

func argument(call *ast.CallExpr, idx int) (ast.Expr, bool) {
	if idx < 0 || idx >= len(call.Args) {
		return nil, false
	}

	return call.Args[idx], true
}

func (x *extractor) constString(e ast.Expr) (string, bool) {
	tv, ok := x.pkg.TypesInfo.Types[e]
	if !ok || tv.Value == nil || tv.Value.Kind() != constant.String {
		return "", false
	}

	return constant.StringVal(tv.Value), true
}

func (x *extractor) typeString(e ast.Expr) string {
	tv, ok := x.pkg.TypesInfo.Types[e]
	if !ok || tv.Type == nil {
		return "unknown"
	}

	return types.TypeString(tv.Type, x.qualifier)
}

// qualifier names other packages by their package name, as written in source.
func (x *extractor) qualifier(p *types.Package) string {
	if p == x.pkg.Types {
		return ""
	}

	return p.Name()
}

// numberDomain is the set of values the count argument may hold.
func (x *extractor) numberDomain(e ast.Expr) choice.Domain {
	tv, ok := x.pkg.TypesInfo.Types[e]
	if !ok || tv.Type == nil {
		return choice.Unbounded()
	}

	if tv.Value != nil {
		if v := constant.ToInt(tv.Value); v.Kind() == constant.Int {
			if n, exact := constant.Int64Val(v); exact {
				return choice.Constant(n)
			}
		}

		return choice.Unbounded()
	}

	basic, ok := tv.Type.Underlying().(*types.Basic)
	if !ok {
		return choice.Unbounded()
	}

	switch basic.Kind() {
	case types.Int8:
		return choice.Between(math.MinInt8, math.MaxInt8)
	case types.Int16:
		return choice.Between(math.MinInt16, math.MaxInt16)
	case types.Int32:
		return choice.Between(math.MinInt32, math.MaxInt32)
	case types.Uint8:
		return choice.Between(0, math.MaxUint8)
	case types.Uint16:
		return choice.Between(0, math.MaxUint16)
	case types.Uint32:
		return choice.Between(0, math.MaxUint32)
	case types.Uint, types.Uint64, types.Uintptr:
		return choice.AtLeast(0)
	default:
		return choice.Unbounded()
	}
}

// replacements returns the placeholder names passed at idx and a description
// of the argument. A nil argument yields no names at all; a non-literal map
// yields an empty, non-nil list.
func (x *extractor) replacements(fn *types.Func, call *ast.CallExpr, idx int) ([]string, string) {
	sig, _ := fn.Type().(*types.Signature)

	if sig != nil && sig.Variadic() && idx == sig.Params().Len()-1 {
		typ := "..." + x.typeString(call.Args[idx])
		if s, ok := sig.Params().At(idx).Type().(*types.Slice); ok {
			typ = "..." + types.TypeString(s.Elem(), x.qualifier)
		}

		names := []string{}
		if call.Ellipsis.IsValid() {
			return names, typ
		}

		// Pairs of name, value.
		for i := idx; i < len(call.Args); i += 2 {
			if s, ok := x.constString(call.Args[i]); ok {
				names = append(names, s)
			}
		}

		return names, typ
	}

	arg := ast.Unparen(call.Args[idx])

	tv := x.pkg.TypesInfo.Types[arg]
	if tv.IsNil() || x.isNil(arg) {
		return nil, ""
	}

	typ := x.typeString(arg)
	names := []string{}

	lit, ok := arg.(*ast.CompositeLit)
	if !ok || tv.Type == nil {
		return names, typ
	}

	if _, ok := tv.Type.Underlying().(*types.Map); !ok {
		return names, typ
	}

	for _, elt := range lit.Elts {
		kv, ok := elt.(*ast.KeyValueExpr)
		if !ok {
			continue
		}

		if s, ok := x.constString(kv.Key); ok {
			names = append(names, s)
		}
	}

	return names, typ
}

func (x *extractor) isNil(e ast.Expr) bool {
	id, ok := e.(*ast.Ident)
	if !ok {
		return false
	}

	_, isNil := x.pkg.TypesInfo.Uses[id].(*types.Nil)

	return isNil
}

func (x *extractor) relPath(filename string) string {
	rel, err := filepath.Rel(x.root, filename)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(filename)
	}

	return filepath.ToSlash(rel)
}
