package subsplitter

import (
	"strings"
	"testing"

	"github.com/trueflow-dev/trueflow/internal/block"
	"github.com/trueflow-dev/trueflow/internal/lang"
)

func reconstruct(blocks []block.Block) string {
	var b strings.Builder
	for _, blk := range blocks {
		b.WriteString(blk.Content)
	}
	return b.String()
}

func TestSplitMarkdownParagraphIntoSentences(t *testing.T) {
	content := "First sentence. Second sentence! Third?"
	parent := block.New(content, block.KindParagraph, 0, 1)

	blocks, err := Split(parent, lang.Markdown)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if reconstruct(blocks) != content {
		t.Fatalf("reconstruction mismatch: got %q want %q", reconstruct(blocks), content)
	}
	if len(blocks) != 3 {
		t.Fatalf("expected 3 sentences, got %d: %+v", len(blocks), blocks)
	}
	for _, blk := range blocks {
		if blk.Kind != block.KindSentence {
			t.Fatalf("expected Sentence kind, got %s", blk.Kind)
		}
	}
}

func TestSplitMarkdownSectionIntoSpans(t *testing.T) {
	content := "# Title\n\nBody paragraph.\n\n- item one\n- item two\n"
	parent := block.New(content, block.KindSection, 0, 5)

	blocks, err := Split(parent, lang.Markdown)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if reconstruct(blocks) != content {
		t.Fatalf("reconstruction mismatch: got %q want %q", reconstruct(blocks), content)
	}

	var sawHeader, sawParagraph bool
	for _, blk := range blocks {
		switch blk.Kind {
		case block.KindHeader:
			sawHeader = true
		case block.KindParagraph:
			sawParagraph = true
		}
	}
	if !sawHeader || !sawParagraph {
		t.Fatalf("expected Header and Paragraph spans, got %+v", blocks)
	}
}

func TestSplitRustFunctionSignatureAndBody(t *testing.T) {
	content := "fn add(a: i32, b: i32) -> i32 {\n    // sum them\n    a + b\n}"
	parent := block.New(content, block.KindFunction, 0, 4)

	blocks, err := Split(parent, lang.Rust)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if reconstruct(blocks) != content {
		t.Fatalf("reconstruction mismatch: got %q want %q", reconstruct(blocks), content)
	}
	if len(blocks) == 0 {
		t.Fatalf("expected at least one sub-block")
	}
	if blocks[0].Kind != block.KindFunctionSignature {
		t.Fatalf("expected first sub-block to be FunctionSignature, got %s", blocks[0].Kind)
	}
}

func TestSplitGenericCodeFallback(t *testing.T) {
	content := "[package]\nname = \"demo\"\n\n# a comment\nversion = \"1\"\n"
	parent := block.New(content, block.KindTextBlock, 0, 5)

	blocks, err := Split(parent, lang.Toml)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if reconstruct(blocks) != content {
		t.Fatalf("reconstruction mismatch: got %q want %q", reconstruct(blocks), content)
	}
}
