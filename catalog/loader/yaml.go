// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package loader

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"

	"codeberg.org/pixivfe/i18ncheck/diagnostic"
)

func parseYAML(b *builder, data []byte) {
	file, err := parser.ParseBytes(data, 0)
	if err != nil {
		line := diagnostic.UnknownLine

		var serr *yaml.SyntaxError
		if errors.As(err, &serr) {
			if serr.Token != nil {
				line = serr.Token.Position.Line
			}

			err = errors.New(serr.Message)
		}

		b.fail("Failed to parse file with error: "+err.Error(), line)

		return
	}

	for _, doc := range file.Docs {
		if doc == nil {
			continue
		}

		body := unwrapYAML(doc.Body)

		switch body.(type) {
		case nil, *ast.NullNode, *ast.CommentGroupNode:
			continue
		case *ast.MappingNode, *ast.MappingValueNode, *ast.SequenceNode:
			walkYAML(b, "", body)
		default:
			b.fail(fmt.Sprintf("Invalid data type %q", yamlTypeName(body)), diagnostic.UnknownLine)

			return
		}
	}
}

// unwrapYAML strips tags, anchors and comments around a value.
func unwrapYAML(node ast.Node) ast.Node {
	for {
		switch n := node.(type) {
		case *ast.TagNode:
			node = n.Value
		case *ast.AnchorNode:
			node = n.Value
		case *ast.MappingKeyNode:
			node = n.Value
		default:
			return node
		}
	}
}

func walkYAML(b *builder, prefix string, node ast.Node) {
	switch n := node.(type) {
	case *ast.MappingNode:
		for _, pair := range n.Values {
			walkYAMLPair(b, prefix, pair)
		}
	case *ast.MappingValueNode:
		walkYAMLPair(b, prefix, n)
	case *ast.SequenceNode:
		for i, value := range n.Values {
			leafYAML(b, b.path(prefix, strconv.Itoa(i)), value, yamlLine(value))
		}
	}
}

func walkYAMLPair(b *builder, prefix string, pair *ast.MappingValueNode) {
	if pair == nil || pair.Key == nil {
		return
	}

	line := yamlLine(pair.Key)

	if pair.Key.IsMergeKey() {
		b.report("Unsupported merge key", line, "")

		return
	}

	leafYAML(b, b.path(prefix, yamlKey(pair.Key)), pair.Value, line)
}

func leafYAML(b *builder, path string, value ast.Node, line int) {
	switch n := unwrapYAML(value).(type) {
	case *ast.StringNode:
		b.set(path, n.Value, line)
	case *ast.LiteralNode:
		if n.Value != nil {
			b.set(path, n.Value.Value, line)
		} else {
			b.set(path, "", line)
		}
	case *ast.MappingNode:
		if len(n.Values) == 0 {
			b.invalid(path, "[]", line)
		} else {
			walkYAML(b, path, n)
		}
	case *ast.MappingValueNode:
		walkYAML(b, path, n)
	case *ast.SequenceNode:
		if len(n.Values) == 0 {
			b.invalid(path, "[]", line)
		} else {
			walkYAML(b, path, n)
		}
	case nil, *ast.NullNode:
		b.invalid(path, "null", line)
	default:
		b.invalid(path, yamlText(n), line)
	}
}

func yamlKey(key ast.MapKeyNode) string {
	switch k := unwrapYAML(key).(type) {
	case *ast.StringNode:
		return k.Value
	case nil:
		return ""
	default:
		return yamlText(k)
	}
}

// yamlText returns the source text of a scalar without its comments.
func yamlText(node ast.Node) string {
	if _, ok := node.(*ast.AliasNode); ok {
		return node.String()
	}

	if tk := node.GetToken(); tk != nil {
		return tk.Value
	}

	return node.String()
}

func yamlLine(node ast.Node) int {
	if node == nil {
		return diagnostic.UnknownLine
	}

	tk := node.GetToken()
	if tk == nil || tk.Position == nil {
		return diagnostic.UnknownLine
	}

	return tk.Position.Line
}

func yamlTypeName(node ast.Node) string {
	switch node.(type) {
	case *ast.IntegerNode:
		return "integer"
	case *ast.FloatNode, *ast.InfinityNode, *ast.NanNode:
		return "double"
	case *ast.BoolNode:
		return "boolean"
	}

	return "string"
}
