// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package loader

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/VKCOM/php-parser/pkg/ast"
	"github.com/VKCOM/php-parser/pkg/conf"
	phperrors "github.com/VKCOM/php-parser/pkg/errors"
	"github.com/VKCOM/php-parser/pkg/parser"
	"github.com/VKCOM/php-parser/pkg/position"
	"github.com/VKCOM/php-parser/pkg/version"
	"github.com/VKCOM/php-parser/pkg/visitor"

	"codeberg.org/pixivfe/i18ncheck/diagnostic"
)

// PHP catalogs are files of the form
//
//	<?php
//	return [
//	    'welcome' => 'Welcome, :name',
//	    'nested' => ['key' => 'value'],
//	];
//
// Only literal data is evaluated: strings, numbers, booleans, null, short
// and long array syntax, and string concatenation. Anything else is reported
// as a parse failure.

var phpVersion = &version.Version{Major: 8, Minor: 1}

func parsePHP(b *builder, data []byte) {
	value, err := evalPHPFile(data)
	if err != nil {
		b.fail("Failed to parse file with error: "+err.Error(), err.Line)

		return
	}

	if value.kind != phpArray {
		b.fail(fmt.Sprintf("Invalid data type %q", value.typeName()), diagnostic.UnknownLine)

		return
	}

	flattenPHP(b, "", value.arr)
}

func flattenPHP(b *builder, prefix string, arr *phpArrayValue) {
	for _, item := range arr.items {
		path := b.path(prefix, item.key)

		switch v := item.value; {
		case v.kind == phpArray && len(v.arr.items) > 0:
			flattenPHP(b, path, v.arr)
		case v.kind == phpString:
			b.set(path, v.str, item.line)
		default:
			b.invalid(path, v.jsonRepr(), item.line)
		}
	}
}

// evalPHPFile returns the value of the first top-level return statement. A
// file without one evaluates to the integer 1, like a PHP include.
func evalPHPFile(data []byte) (phpValue, *phpError) {
	var syntaxErrors []*phperrors.Error

	root, err := parser.Parse(data, conf.Config{
		Version: phpVersion,
		ErrorHandlerFunc: func(e *phperrors.Error) {
			syntaxErrors = append(syntaxErrors, e)
		},
	})
	if err != nil {
		return phpValue{}, &phpError{Message: err.Error(), Line: diagnostic.UnknownLine}
	}

	if len(syntaxErrors) > 0 {
		first := syntaxErrors[0]

		return phpValue{}, &phpError{Message: upperFirst(first.Msg), Line: lineOf(first.Pos)}
	}

	finder := &phpReturnFinder{}
	if root != nil {
		root.Accept(finder)
	}

	if finder.found == nil {
		return phpValue{kind: phpInt, num: 1}, nil
	}

	if finder.found.Expr == nil {
		return phpValue{kind: phpNull}, nil
	}

	return evalPHP(finder.found.Expr)
}

// phpReturnFinder visits top-level statements, including those of namespace
// blocks, and keeps the first return. Function bodies are not entered.
type phpReturnFinder struct {
	visitor.Null

	found *ast.StmtReturn
}

func (f *phpReturnFinder) Root(n *ast.Root) {
	f.statements(n.Stmts)
}

func (f *phpReturnFinder) StmtNamespace(n *ast.StmtNamespace) {
	f.statements(n.Stmts)
}

func (f *phpReturnFinder) StmtReturn(n *ast.StmtReturn) {
	if f.found == nil {
		f.found = n
	}
}

func (f *phpReturnFinder) statements(stmts []ast.Vertex) {
	for _, stmt := range stmts {
		if f.found != nil {
			return
		}

		if stmt != nil {
			stmt.Accept(f)
		}
	}
}

func evalPHP(node ast.Vertex) (phpValue, *phpError) {
	switch n := node.(type) {
	case *ast.ScalarString:
		str, err := unquotePHP(n.Value)
		if err != nil {
			return phpValue{}, &phpError{Message: err.Error(), Line: lineOf(n.Position)}
		}

		return phpValue{kind: phpString, str: str}, nil
	case *ast.ScalarLnumber:
		return parsePHPNumber(string(n.Value), lineOf(n.Position))
	case *ast.ScalarDnumber:
		return parsePHPNumber(string(n.Value), lineOf(n.Position))
	case *ast.ExprConstFetch:
		return evalPHPConstant(n)
	case *ast.ExprArray:
		return evalPHPArray(n)
	case *ast.ExprBrackets:
		return evalPHP(n.Expr)
	case *ast.ExprUnaryMinus:
		return evalPHPSign(n.Expr, true, lineOf(n.Position))
	case *ast.ExprUnaryPlus:
		return evalPHPSign(n.Expr, false, lineOf(n.Position))
	case *ast.ExprBinaryConcat:
		return evalPHPConcat(n)
	case *ast.ScalarEncapsed, *ast.ScalarHeredoc:
		return phpValue{}, &phpError{Message: "Unsupported variable interpolation in string", Line: lineOf(node.GetPosition())}
	}

	return phpValue{}, &phpError{
		Message: fmt.Sprintf("Unsupported expression %s", strings.TrimPrefix(fmt.Sprintf("%T", node), "*ast.")),
		Line:    lineOf(node.GetPosition()),
	}
}

func evalPHPConstant(n *ast.ExprConstFetch) (phpValue, *phpError) {
	var parts []ast.Vertex

	switch name := n.Const.(type) {
	case *ast.Name:
		parts = name.Parts
	case *ast.NameFullyQualified:
		parts = name.Parts
	}

	if len(parts) == 1 {
		if part, ok := parts[0].(*ast.NamePart); ok {
			switch strings.ToLower(string(part.Value)) {
			case "true":
				return phpValue{kind: phpBool, bl: true}, nil
			case "false":
				return phpValue{kind: phpBool}, nil
			case "null":
				return phpValue{kind: phpNull}, nil
			}
		}
	}

	return phpValue{}, &phpError{Message: "Unsupported constant", Line: lineOf(n.Position)}
}

func evalPHPSign(operand ast.Vertex, negate bool, line int) (phpValue, *phpError) {
	value, err := evalPHP(operand)
	if err != nil {
		return phpValue{}, err
	}

	switch {
	case value.kind == phpInt && negate:
		value.num = -value.num
	case value.kind == phpFloat && negate:
		value.flt = -value.flt
	case value.kind != phpInt && value.kind != phpFloat:
		return phpValue{}, &phpError{Message: "Unsupported unary operator on non-numeric value", Line: line}
	}

	return value, nil
}

func evalPHPConcat(n *ast.ExprBinaryConcat) (phpValue, *phpError) {
	left, err := evalPHP(n.Left)
	if err != nil {
		return phpValue{}, err
	}

	right, err := evalPHP(n.Right)
	if err != nil {
		return phpValue{}, err
	}

	if left.kind == phpArray || right.kind == phpArray {
		return phpValue{}, &phpError{Message: "Unsupported array to string conversion", Line: lineOf(n.Position)}
	}

	return phpValue{kind: phpString, str: left.text() + right.text()}, nil
}

// evalPHPArray takes each entry's line from the start of its item, which is
// the key when one is given.
func evalPHPArray(n *ast.ExprArray) (phpValue, *phpError) {
	arr := newPHPArray()

	for _, node := range n.Items {
		item, ok := node.(*ast.ExprArrayItem)
		if !ok || item.Val == nil {
			// Trailing commas produce empty items.
			continue
		}

		line := lineOf(item.Position)

		if item.EllipsisTkn != nil || item.AmpersandTkn != nil {
			return phpValue{}, &phpError{Message: "Unsupported array item", Line: line}
		}

		value, err := evalPHP(item.Val)
		if err != nil {
			return phpValue{}, err
		}

		if item.Key == nil {
			arr.append(value, line)

			continue
		}

		key, err := evalPHP(item.Key)
		if err != nil {
			return phpValue{}, err
		}

		if key.kind == phpArray {
			return phpValue{}, &phpError{Message: "Illegal offset type", Line: line}
		}

		arr.put(key, value, line)
	}

	return phpValue{kind: phpArray, arr: arr}, nil
}

func lineOf(pos *position.Position) int {
	if pos == nil || pos.StartLine <= 0 {
		return diagnostic.UnknownLine
	}

	return pos.StartLine
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}

type phpKind int

const (
	phpNull phpKind = iota
	phpBool
	phpInt
	phpFloat
	phpString
	phpArray
)

type phpValue struct {
	kind phpKind
	str  string
	num  int64
	flt  float64
	bl   bool
	arr  *phpArrayValue
}

type phpItem struct {
	key   string
	value phpValue
	line  int
}

// phpArrayValue keeps insertion order. Overwriting a key keeps its position.
type phpArrayValue struct {
	items     []phpItem
	positions map[string]int
	nextIndex int64
}

func newPHPArray() *phpArrayValue {
	return &phpArrayValue{positions: make(map[string]int)}
}

func (a *phpArrayValue) append(value phpValue, line int) {
	a.put(phpValue{kind: phpInt, num: a.nextIndex}, value, line)
}

func (a *phpArrayValue) put(key, value phpValue, line int) {
	name, index, isInt := key.arrayKey()
	if isInt && index >= a.nextIndex && index < math.MaxInt64 {
		a.nextIndex = index + 1
	}

	if pos, ok := a.positions[name]; ok {
		a.items[pos].value = value
		a.items[pos].line = line

		return
	}

	a.positions[name] = len(a.items)
	a.items = append(a.items, phpItem{key: name, value: value, line: line})
}

// arrayKey applies PHP's key coercion: integral strings, floats, booleans
// and null become integer or empty-string keys.
func (v phpValue) arrayKey() (string, int64, bool) {
	switch v.kind {
	case phpInt:
		return strconv.FormatInt(v.num, 10), v.num, true
	case phpFloat:
		n := int64(v.flt)

		return strconv.FormatInt(n, 10), n, true
	case phpBool:
		if v.bl {
			return "1", 1, true
		}

		return "0", 0, true
	case phpNull:
		return "", 0, false
	}

	if n, err := strconv.ParseInt(v.str, 10, 64); err == nil && strconv.FormatInt(n, 10) == v.str {
		return v.str, n, true
	}

	return v.str, 0, false
}

func (v phpValue) typeName() string {
	switch v.kind {
	case phpNull:
		return "NULL"
	case phpBool:
		return "boolean"
	case phpInt:
		return "integer"
	case phpFloat:
		return "double"
	case phpString:
		return "string"
	}

	return "array"
}

func (v phpValue) jsonRepr() string {
	switch v.kind {
	case phpNull:
		return "null"
	case phpBool:
		return strconv.FormatBool(v.bl)
	case phpInt:
		return strconv.FormatInt(v.num, 10)
	case phpFloat:
		s := strconv.FormatFloat(v.flt, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEIN") {
			s += ".0"
		}

		return s
	case phpString:
		return diagnostic.Quote(v.str)
	}

	return "[]"
}

// text converts a scalar for string concatenation.
func (v phpValue) text() string {
	switch v.kind {
	case phpBool:
		if v.bl {
			return "1"
		}

		return ""
	case phpInt:
		return strconv.FormatInt(v.num, 10)
	case phpFloat:
		return strconv.FormatFloat(v.flt, 'f', -1, 64)
	case phpString:
		return v.str
	}

	return ""
}

// phpError is a parse failure at a source line.
type phpError struct {
	Message string
	Line    int
}

func (e *phpError) Error() string {
	return fmt.Sprintf("%s on line %d", e.Message, e.Line)
}

func parsePHPNumber(text string, line int) (phpValue, *phpError) {
	lower := strings.ToLower(text)
	prefixed := strings.HasPrefix(lower, "0x") || strings.HasPrefix(lower, "0b") || strings.HasPrefix(lower, "0o")

	if prefixed || !strings.ContainsAny(lower, ".e") {
		n, err := strconv.ParseInt(text, 0, 64)
		if err == nil {
			return phpValue{kind: phpInt, num: n}, nil
		}

		// Integer overflow turns into a float, as in PHP.
		if f, ferr := strconv.ParseFloat(strings.ReplaceAll(text, "_", ""), 64); ferr == nil && !prefixed {
			return phpValue{kind: phpFloat, flt: f}, nil
		}

		return phpValue{}, &phpError{Message: fmt.Sprintf("Invalid numeric literal %q", text), Line: line}
	}

	f, err := strconv.ParseFloat(strings.ReplaceAll(text, "_", ""), 64)
	if err != nil {
		return phpValue{}, &phpError{Message: fmt.Sprintf("Invalid numeric literal %q", text), Line: line}
	}

	return phpValue{kind: phpFloat, flt: f}, nil
}

var errMalformedPHPString = errors.New("malformed string literal")

// unquotePHP decodes a constant string token, quotes included. The parser
// keeps tokens verbatim, so escapes are resolved here.
func unquotePHP(raw []byte) (string, error) {
	raw = bytes.TrimLeft(raw, "bB")
	if len(raw) < 2 || raw[0] != raw[len(raw)-1] {
		return "", errMalformedPHPString
	}

	body := string(raw[1 : len(raw)-1])

	switch raw[0] {
	case '\'':
		return unescapeSingleQuoted(body), nil
	case '"':
		return unescapeDoubleQuoted(body), nil
	}

	return "", errMalformedPHPString
}

func unescapeSingleQuoted(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var sb strings.Builder

	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && (s[i+1] == '\'' || s[i+1] == '\\') {
			i++
		}

		sb.WriteByte(s[i])
	}

	return sb.String()
}

var phpSimpleEscapes = map[byte]byte{
	'n': '\n', 't': '\t', 'r': '\r', 'v': '\v', 'e': 0x1b, 'f': '\f',
	'\\': '\\', '$': '$', '"': '"',
}

func unescapeDoubleQuoted(s string) string {
	var sb strings.Builder

	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			sb.WriteByte(s[i])

			continue
		}

		i += writeEscape(&sb, s, i+1) - 1
	}

	return sb.String()
}

// writeEscape decodes the sequence following a backslash at s[at] and
// returns how many bytes it consumed, counting the backslash.
func writeEscape(sb *strings.Builder, s string, at int) int {
	c := s[at]

	if r, ok := phpSimpleEscapes[c]; ok {
		sb.WriteByte(r)

		return 2
	}

	switch {
	case c >= '0' && c <= '7':
		end := at
		for end < len(s) && end < at+3 && s[end] >= '0' && s[end] <= '7' {
			end++
		}

		n, _ := strconv.ParseUint(s[at:end], 8, 16)
		sb.WriteByte(byte(n))

		return end - at + 1
	case c == 'x' && at+1 < len(s) && isHexDigit(s[at+1]):
		end := at + 1
		for end < len(s) && end < at+3 && isHexDigit(s[end]) {
			end++
		}

		n, _ := strconv.ParseUint(s[at+1:end], 16, 8)
		sb.WriteByte(byte(n))

		return end - at + 1
	case c == 'u' && at+1 < len(s) && s[at+1] == '{':
		end := strings.IndexByte(s[at:], '}')
		if end > 2 {
			if n, err := strconv.ParseUint(s[at+2:at+end], 16, 32); err == nil {
				sb.WriteRune(rune(n))

				return end + 2
			}
		}
	}

	sb.WriteByte('\\')

	return 1
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
