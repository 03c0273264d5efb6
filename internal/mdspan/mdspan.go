// Package mdspan computes byte spans for goldmark AST nodes, shared by the
// top-level Markdown splitter (heading sections) and the sub-splitter
// (Header/Paragraph/ListItem/CodeBlock/Quote/Element spans).
package mdspan

import (
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// linesNode is satisfied by goldmark AST nodes that carry their own raw
// source segments (Paragraph, Heading, CodeBlock, FencedCodeBlock,
// HTMLBlock...). Container nodes such as List, ListItem, and Blockquote do
// not implement it: their content lives entirely in their children.
type linesNode interface {
	Lines() *text.Segments
}

// ByteRange computes the [start, end) byte span a node covers in its
// source, taking the min/max over its own lines (if any) and its
// descendants' ranges.
func ByteRange(n ast.Node) (start, end int, ok bool) {
	start, end = -1, -1

	if ln, isLinesNode := n.(linesNode); isLinesNode {
		if lines := ln.Lines(); lines != nil && lines.Len() > 0 {
			start = lines.At(0).Start
			end = lines.At(lines.Len() - 1).Stop
		}
	}

	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if cs, ce, cok := ByteRange(c); cok {
			if start == -1 || cs < start {
				start = cs
			}
			if ce > end {
				end = ce
			}
		}
	}

	if start == -1 {
		return 0, 0, false
	}
	return start, end, true
}
