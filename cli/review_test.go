package cli

import (
	"testing"

	"github.com/trueflow-dev/trueflow/internal/block"
	"github.com/trueflow-dev/trueflow/internal/lang"
)

func TestFilterFilesByPathKeepsOnlyRequested(t *testing.T) {
	files := []block.FileState{
		{Path: "a.rs", Language: lang.Rust},
		{Path: "b.rs", Language: lang.Rust},
		{Path: "c.rs", Language: lang.Rust},
	}

	got := filterFilesByPath(files, []string{"b.rs", "c.rs"})
	if len(got) != 2 {
		t.Fatalf("expected 2 files, got %d: %+v", len(got), got)
	}
	if got[0].Path != "b.rs" || got[1].Path != "c.rs" {
		t.Fatalf("expected b.rs then c.rs in original order, got %+v", got)
	}
}

func TestFilterFilesByPathEmptyWhenNoneMatch(t *testing.T) {
	files := []block.FileState{{Path: "a.rs", Language: lang.Rust}}
	got := filterFilesByPath(files, []string{"z.rs"})
	if len(got) != 0 {
		t.Fatalf("expected no matches, got %+v", got)
	}
}

func TestRebuildTreeForProducesFileNode(t *testing.T) {
	fnBlock := block.New("fn helper() {}", block.KindFunction, 0, 1)
	files := []block.FileState{{Path: "a.rs", Language: lang.Rust, Blocks: []block.Block{fnBlock}}}

	tree := rebuildTreeFor(files)
	if _, ok := tree.FindByPath("a.rs"); !ok {
		t.Fatalf("expected a.rs file node in rebuilt tree")
	}
}
