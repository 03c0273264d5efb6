// Package splitter decomposes a file's raw content into the top-level block
// sequence: one entry per grammar-level item (function, struct, import...)
// for code languages, heading-bounded sections for Markdown, and blank-line
// paragraphs for everything else.
package splitter

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/trueflow-dev/trueflow/internal/block"
	"github.com/trueflow-dev/trueflow/internal/lang"
	"github.com/trueflow-dev/trueflow/internal/linemap"
	"github.com/trueflow-dev/trueflow/internal/textsplit"
)

// Split decomposes content according to language's structure.
func Split(content string, language lang.Language) ([]block.Block, error) {
	switch {
	case language == lang.Markdown:
		return splitMarkdown(content), nil
	case language.UsesTextFallback():
		return splitText(content), nil
	}

	grammar, ok := grammarFor(language)
	if !ok {
		return splitText(content), nil
	}

	return splitGrammar(content, language, grammar)
}

func grammarFor(language lang.Language) (*sitter.Language, bool) {
	switch language {
	case lang.Rust:
		return rust.GetLanguage(), true
	case lang.JavaScript:
		return javascript.GetLanguage(), true
	case lang.TypeScript:
		return typescript.GetLanguage(), true
	case lang.Python:
		return python.GetLanguage(), true
	case lang.Shell:
		return bash.GetLanguage(), true
	default:
		return nil, false
	}
}

// splitText is the paragraph-break fallback used for Text/Toml/Nix/Just
// and as a last resort when a grammar fails to parse.
func splitText(content string) []block.Block {
	return textsplit.SplitByParagraphBreaks(content, func(chunk string, start, end int, isGap bool) block.Block {
		kind := block.KindTextBlock
		if isGap {
			kind = block.KindGap
		}
		startLine, endLine := linemap.ByteRangeToLines(content, start, end)
		return block.New(chunk, kind, startLine, endLine)
	})
}

// splitGrammar walks the direct children of the parse tree's root node,
// emitting one block per item. Leading attributes/decorators/comments do
// not become their own blocks: they buffer as "pending" and prefix-attach
// to the next real item, so a doc comment stays glued to the function it
// documents. Whitespace between unrelated items becomes a Gap block.
func splitGrammar(content string, language lang.Language, grammar *sitter.Language) ([]block.Block, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(grammar)

	tree, err := parser.ParseCtx(context.Background(), nil, []byte(content))
	if err != nil || tree == nil {
		return splitText(content), nil
	}
	defer tree.Close()

	root := tree.RootNode()
	childCount := int(root.ChildCount())

	var blocks []block.Block
	prevEnd := 0
	pendingStart := -1
	pendingEnd := 0
	pendingKind := block.KindComment

	emitGap := func(start, end int) {
		if end <= start {
			return
		}
		chunk := content[start:end]
		startLine, endLine := linemap.ByteRangeToLines(content, start, end)
		blocks = append(blocks, block.New(chunk, block.KindGap, startLine, endLine))
	}

	for i := 0; i < childCount; i++ {
		node := root.Child(i)
		if node == nil {
			continue
		}
		startByte := int(node.StartByte())
		endByte := int(node.EndByte())
		if endByte <= startByte {
			continue
		}

		if isAttributeOrComment(language, node.Type()) {
			if pendingStart == -1 {
				if prevEnd < startByte {
					emitGap(prevEnd, startByte)
				}
				pendingStart = startByte
				pendingKind = attributeKind(node.Type())
			}
			pendingEnd = endByte
			prevEnd = endByte
			continue
		}

		kind := mapKind(language, node.Type())

		blockStart := startByte
		if pendingStart != -1 {
			blockStart = pendingStart
			pendingStart = -1
		} else if prevEnd < startByte {
			emitGap(prevEnd, startByte)
		}

		chunk := content[blockStart:endByte]
		startLine, endLine := linemap.ByteRangeToLines(content, blockStart, endByte)
		blocks = append(blocks, block.New(chunk, kind, startLine, endLine))
		prevEnd = endByte
	}

	if pendingStart != -1 {
		chunk := content[pendingStart:pendingEnd]
		startLine, endLine := linemap.ByteRangeToLines(content, pendingStart, pendingEnd)
		blocks = append(blocks, block.New(chunk, pendingKind, startLine, endLine))
		prevEnd = pendingEnd
	}

	if prevEnd < len(content) {
		emitGap(prevEnd, len(content))
	}

	if len(blocks) == 0 {
		return splitText(content), nil
	}

	return blocks, nil
}

func isAttributeOrComment(language lang.Language, kind string) bool {
	switch language {
	case lang.Rust:
		switch kind {
		case "attribute_item", "line_comment", "block_comment", "inner_attribute_item":
			return true
		}
	case lang.JavaScript, lang.TypeScript:
		return kind == "comment"
	case lang.Python:
		switch kind {
		case "decorator", "comment":
			return true
		}
	case lang.Shell:
		return kind == "comment"
	}
	return false
}

func attributeKind(kind string) block.Kind {
	if kind == "decorator" {
		return block.KindDecorator
	}
	return block.KindComment
}

func mapKind(language lang.Language, kind string) block.Kind {
	switch language {
	case lang.Rust:
		switch kind {
		case "function_item":
			return block.KindFunction
		case "struct_item":
			return block.KindStruct
		case "enum_item":
			return block.KindEnum
		case "impl_item":
			return block.KindImpl
		case "mod_item":
			return block.KindModule
		case "use_declaration", "extern_crate_declaration":
			return block.KindImport
		case "const_item":
			return block.KindConst
		case "static_item":
			return block.KindStatic
		case "macro_definition", "macro_invocation":
			return block.KindMacro
		case "trait_item":
			return block.KindInterface
		case "type_item":
			return block.KindType
		}
	case lang.JavaScript, lang.TypeScript:
		switch kind {
		case "function_declaration", "generator_function_declaration":
			return block.KindFunction
		case "class_declaration", "abstract_class_declaration":
			return block.KindClass
		case "import_statement":
			return block.KindImport
		case "export_statement":
			return block.KindExport
		case "lexical_declaration", "variable_declaration":
			return block.KindVariable
		case "method_definition":
			return block.KindMethod
		case "interface_declaration":
			return block.KindInterface
		case "type_alias_declaration":
			return block.KindType
		}
	case lang.Python:
		switch kind {
		case "function_definition":
			return block.KindFunction
		case "class_definition":
			return block.KindClass
		case "import_statement", "import_from_statement":
			return block.KindImport
		case "decorated_definition":
			if strings.Contains(kind, "class") {
				return block.KindClass
			}
			return block.KindFunction
		}
	case lang.Shell:
		switch kind {
		case "function_definition":
			return block.KindFunction
		case "variable_assignment":
			return block.KindVariable
		case "command":
			return block.KindCommand
		}
	}
	return block.KindCode
}
