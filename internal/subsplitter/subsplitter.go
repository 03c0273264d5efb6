// Package subsplitter further decomposes a single top-level block into
// reviewable sub-blocks: Markdown sections descend into headers/paragraphs/
// list items, and Function/Method bodies descend into a signature block
// plus a sequence of comment/code-paragraph/gap spans. Everything else
// falls back to the same blank-line paragraph classification the scanner
// uses for whole files it can't parse.
package subsplitter

import (
	"context"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/trueflow-dev/trueflow/internal/block"
	"github.com/trueflow-dev/trueflow/internal/lang"
	"github.com/trueflow-dev/trueflow/internal/linemap"
	"github.com/trueflow-dev/trueflow/internal/mdspan"
	"github.com/trueflow-dev/trueflow/internal/textsplit"
)

// sentenceBreak matches the end of a sentence: a terminator followed by
// whitespace (or end of string, handled separately).
var sentenceBreak = regexp.MustCompile(`[.!?]+\s+`)

// Split decomposes parent into sub-blocks. Sub-block StartLine/EndLine are
// absolute: parent.StartLine is added to every offset computed within
// parent.Content, so a sub-block's line numbers point into the whole file,
// not just the parent's span.
func Split(parent block.Block, language lang.Language) ([]block.Block, error) {
	if language == lang.Markdown {
		if parent.Kind == block.KindParagraph || parent.Kind == block.KindListItem {
			return splitMarkdownSentences(parent), nil
		}
		return collectMarkdownSpans(parent), nil
	}

	if (parent.Kind == block.KindFunction || parent.Kind == block.KindMethod) && isFunctionSplittable(language) {
		blocks, err := splitFunctionWithParser(parent, language)
		if err == nil && len(blocks) > 0 {
			return blocks, nil
		}
	}

	return splitCode(parent), nil
}

func isFunctionSplittable(language lang.Language) bool {
	switch language {
	case lang.Rust, lang.Python, lang.JavaScript, lang.TypeScript:
		return true
	default:
		return false
	}
}

// --- Markdown: sentence splitting for Paragraph/ListItem blocks ---

func splitMarkdownSentences(parent block.Block) []block.Block {
	content := parent.Content
	var out []block.Block

	start := 0
	for _, loc := range sentenceBreak.FindAllStringIndex(content, -1) {
		end := loc[1]
		sentence := content[start:end]
		out = append(out, makeSubBlock(parent, sentence, block.KindSentence, start, end))
		start = end
	}
	if start < len(content) {
		out = append(out, makeSubBlock(parent, content[start:], block.KindSentence, start, len(content)))
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// --- Markdown: structural span collection for non-Paragraph/ListItem blocks ---

func collectMarkdownSpans(parent block.Block) []block.Block {
	source := []byte(parent.Content)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var out []block.Block
	prevEnd := 0

	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			kind, ok := markdownKind(c)
			if !ok {
				walk(c)
				continue
			}
			start, end, spanOK := mdspan.ByteRange(c)
			if !spanOK {
				continue
			}
			if prevEnd < start {
				gap := parent.Content[prevEnd:start]
				if gap != "" {
					out = append(out, makeSubBlock(parent, gap, block.KindGap, prevEnd, start))
				}
			}
			chunk := parent.Content[start:end]
			out = append(out, makeSubBlock(parent, chunk, kind, start, end))
			prevEnd = end
		}
	}
	walk(doc)

	if prevEnd < len(parent.Content) {
		gap := parent.Content[prevEnd:]
		if gap != "" {
			out = append(out, makeSubBlock(parent, gap, block.KindGap, prevEnd, len(parent.Content)))
		}
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

func markdownKind(n ast.Node) (block.Kind, bool) {
	switch n.(type) {
	case *ast.Heading:
		return block.KindHeader, true
	case *ast.Paragraph:
		return block.KindParagraph, true
	case *ast.ListItem:
		return block.KindListItem, true
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		return block.KindCodeBlock, true
	case *ast.Blockquote:
		return block.KindQuote, true
	case *ast.ThematicBreak, *ast.HTMLBlock:
		return block.KindElement, true
	case *ast.List:
		return "", false
	default:
		return "", false
	}
}

// --- Function/Method bodies: signature + comment/code-paragraph/gap spans ---

func splitFunctionWithParser(parent block.Block, language lang.Language) ([]block.Block, error) {
	grammar := grammarFor(language)
	if grammar == nil {
		return nil, nil
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(grammar)

	content := parent.Content
	tree, err := parser.ParseCtx(context.Background(), nil, []byte(content))
	if err != nil || tree == nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	fnNode := findNamedDescendant(root, functionNodeKinds(language))
	if fnNode == nil {
		return nil, nil
	}

	bodyNode := fnNode.ChildByFieldName("body")
	var sigEnd int
	if bodyNode != nil {
		sigEnd = int(bodyNode.StartByte())
	} else {
		sigEnd = signatureEndByIndent(content, language)
	}
	if sigEnd <= 0 || sigEnd > len(content) {
		return nil, nil
	}

	var out []block.Block
	sigContent := content[:sigEnd]
	out = append(out, makeSubBlock(parent, sigContent, block.KindFunctionSignature, 0, sigEnd))

	bodyBlocks := splitBodyRegion(parent, content, sigEnd, len(content))
	out = append(out, bodyBlocks...)

	return out, nil
}

func grammarFor(language lang.Language) *sitter.Language {
	switch language {
	case lang.Rust:
		return rust.GetLanguage()
	case lang.JavaScript:
		return javascript.GetLanguage()
	case lang.TypeScript:
		return typescript.GetLanguage()
	case lang.Python:
		return python.GetLanguage()
	case lang.Shell:
		return bash.GetLanguage()
	default:
		return nil
	}
}

func functionNodeKinds(language lang.Language) map[string]bool {
	switch language {
	case lang.Rust:
		return map[string]bool{"function_item": true}
	case lang.JavaScript, lang.TypeScript:
		return map[string]bool{"function_declaration": true, "method_definition": true, "generator_function_declaration": true}
	case lang.Python:
		return map[string]bool{"function_definition": true}
	default:
		return nil
	}
}

func findNamedDescendant(node *sitter.Node, kinds map[string]bool) *sitter.Node {
	if node == nil {
		return nil
	}
	if kinds[node.Type()] {
		return node
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if found := findNamedDescendant(node.Child(i), kinds); found != nil {
			return found
		}
	}
	return nil
}

// signatureEndByIndent is the Python fallback when a function body isn't a
// distinct "body" field node: the signature runs through the first colon
// anywhere in content, which may be a colon inside a parameter annotation
// rather than the one ending the def line.
func signatureEndByIndent(content string, language lang.Language) int {
	if language != lang.Python {
		return 0
	}
	idx := strings.Index(content, ":")
	if idx == -1 {
		return 0
	}
	return idx + 1
}

// splitBodyRegion classifies content[start:end] into Comment/CodeParagraph
// spans, greedily buffering consecutive code lines and flushing on a blank
// line, then folds a lone trailing closing brace into the preceding code
// block so "}" never stands alone as its own paragraph.
func splitBodyRegion(parent block.Block, content string, start, end int) []block.Block {
	region := content[start:end]
	if strings.TrimSpace(region) == "" {
		if region == "" {
			return nil
		}
		return []block.Block{makeSubBlock(parent, region, block.KindGap, start, end)}
	}

	chunks := textsplit.SplitByParagraphBreaks(region, func(chunk string, s, e int, isGap bool) subChunk {
		return subChunk{content: chunk, start: start + s, end: start + e, isGap: isGap}
	})

	trimClosingBrace(&chunks)

	out := make([]block.Block, 0, len(chunks))
	for _, c := range chunks {
		kind := block.KindGap
		if !c.isGap {
			kind = classifyCodeChunk(c.content)
		}
		out = append(out, makeSubBlock(parent, c.content, kind, c.start, c.end))
	}
	return out
}

type subChunk struct {
	content    string
	start, end int
	isGap      bool
}

// trimClosingBrace folds a final, isolated "}" chunk into the last
// non-gap chunk before it, so the closing brace of a function body stays
// attached to its last real statement instead of becoming its own block.
func trimClosingBrace(chunks *[]subChunk) {
	cs := *chunks
	if len(cs) == 0 {
		return
	}
	last := len(cs) - 1
	if cs[last].isGap {
		return
	}
	trimmed := strings.TrimSpace(cs[last].content)
	if trimmed != "}" {
		return
	}
	for i := last - 1; i >= 0; i-- {
		if cs[i].isGap {
			continue
		}
		cs[i].content += cs[last].content
		cs[i].end = cs[last].end
		*chunks = cs[:last]
		return
	}
}

func classifyCodeChunk(content string) block.Kind {
	if isBraceOrSemicolonOnly(content) {
		return block.KindGap
	}
	lines := strings.Split(content, "\n")
	allComment := true
	sawNonEmpty := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		sawNonEmpty = true
		if !strings.HasPrefix(trimmed, "//") && !strings.HasPrefix(trimmed, "#") &&
			!strings.HasPrefix(trimmed, "/*") && !strings.HasPrefix(trimmed, "*") {
			allComment = false
			break
		}
	}
	if sawNonEmpty && allComment {
		return block.KindComment
	}
	return block.KindCodeParagraph
}

// isBraceOrSemicolonOnly reports whether content, once trimmed, consists
// solely of "}" and/or ";" characters: a lone closing brace or statement
// terminator left over from a split, with no real content of its own.
func isBraceOrSemicolonOnly(content string) bool {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return false
	}
	for _, r := range trimmed {
		if r != '}' && r != ';' && !strings.ContainsRune(" \t\r\n", r) {
			return false
		}
	}
	return true
}

// --- generic fallback: Toml/Nix/Just and anything sub_splitter has no
// language-specific handling for ---

func splitCode(parent block.Block) []block.Block {
	content := parent.Content
	if strings.TrimSpace(content) == "" {
		return nil
	}
	chunks := textsplit.SplitByParagraphBreaks(content, func(chunk string, s, e int, isGap bool) subChunk {
		return subChunk{content: chunk, start: s, end: e, isGap: isGap}
	})
	out := make([]block.Block, 0, len(chunks))
	for _, c := range chunks {
		kind := block.KindGap
		if !c.isGap {
			kind = classifyCodeChunk(c.content)
		}
		out = append(out, makeSubBlock(parent, c.content, kind, c.start, c.end))
	}
	return out
}

// makeSubBlock builds a sub-block whose line numbers are absolute
// (relative to the whole file, not the parent block), computed from the
// parent's own StartLine plus the line offset of [start, end) within
// parent.Content.
func makeSubBlock(parent block.Block, content string, kind block.Kind, start, end int) block.Block {
	startLine, endLine := linemap.ByteRangeToLines(parent.Content, start, end)
	b := block.New(content, kind, parent.StartLine+startLine, parent.StartLine+endLine)
	b.Tags = parent.Tags
	return b
}
