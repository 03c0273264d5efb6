package mdspan

import (
	"testing"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

func parse(content string) ast.Node {
	return goldmark.New().Parser().Parse(text.NewReader([]byte(content)))
}

func TestByteRangeCoversParagraph(t *testing.T) {
	content := "hello world\n"
	doc := parse(content)

	para := doc.FirstChild()
	if para == nil {
		t.Fatalf("expected a paragraph child")
	}

	start, end, ok := ByteRange(para)
	if !ok {
		t.Fatalf("expected ok=true for a paragraph node")
	}
	if start != 0 || end != len(content) {
		t.Fatalf("got (%d,%d), want (0,%d)", start, end, len(content))
	}
}

func TestByteRangeCoversListAcrossItems(t *testing.T) {
	content := "- one\n- two\n- three\n"
	doc := parse(content)

	list := doc.FirstChild()
	if list == nil || list.Kind() != ast.KindList {
		t.Fatalf("expected a list as the first child, got %v", list)
	}

	start, end, ok := ByteRange(list)
	if !ok {
		t.Fatalf("expected ok=true for a list node")
	}
	if start != 0 || end != len(content) {
		t.Fatalf("got (%d,%d), want (0,%d)", start, end, len(content))
	}
}

func TestByteRangeFalseForEmptyContainer(t *testing.T) {
	doc := parse("")
	start, end, ok := ByteRange(doc)
	if ok {
		t.Fatalf("expected ok=false for an empty document, got (%d,%d)", start, end)
	}
}
