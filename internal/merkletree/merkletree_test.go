package merkletree

import (
	"testing"

	"github.com/trueflow-dev/trueflow/internal/block"
	"github.com/trueflow-dev/trueflow/internal/hashing"
	"github.com/trueflow-dev/trueflow/internal/lang"
)

func sampleFiles() []block.FileState {
	fileA := block.FileState{Path: "src/a.rs", Language: lang.Rust, FileHash: hashing.FileHash([]string{"h1"})}
	fileB := block.FileState{Path: "src/b.rs", Language: lang.Rust, FileHash: hashing.FileHash([]string{"h2"})}
	readme := block.FileState{Path: "README.md", Language: lang.Markdown, FileHash: hashing.FileHash([]string{"h3"})}
	return []block.FileState{fileA, fileB, readme}
}

func TestDirectoryHashIsOrderIndependent(t *testing.T) {
	forward := sampleFiles()
	reversed := []block.FileState{forward[2], forward[1], forward[0]}

	treeA := BuildTreeFromFiles(forward)
	treeB := BuildTreeFromFiles(reversed)

	if treeA.Nodes[treeA.RootID].Hash != treeB.Nodes[treeB.RootID].Hash {
		t.Fatalf("expected root hash to be independent of file insertion order")
	}
}

func TestNestedBlocksAttachUnderEnclosingImpl(t *testing.T) {
	implBlock := block.New("impl Foo {\n    fn bar() {}\n}\n", block.KindImpl, 0, 3)
	methodBlock := block.New("fn bar() {}\n", block.KindFunction, 1, 2)

	fs := block.FileState{
		Path:     "src/lib.rs",
		Language: lang.Rust,
		FileHash: hashing.FileHash([]string{implBlock.Hash, methodBlock.Hash}),
		Blocks:   []block.Block{implBlock, methodBlock},
	}

	tree := BuildTreeFromFiles([]block.FileState{fs})

	var implID, methodID NodeID = NoNode, NoNode
	for i := range tree.Nodes {
		if tree.Nodes[i].Kind == KindBlock && tree.Nodes[i].Block.Kind == block.KindImpl {
			implID = tree.Nodes[i].ID
		}
		if tree.Nodes[i].Kind == KindBlock && tree.Nodes[i].Block.Kind == block.KindFunction {
			methodID = tree.Nodes[i].ID
		}
	}
	if implID == NoNode || methodID == NoNode {
		t.Fatalf("expected both impl and function block nodes to exist")
	}
	if tree.Nodes[methodID].Parent != implID {
		t.Fatalf("expected method block to be parented under the impl block, got parent %d want %d", tree.Nodes[methodID].Parent, implID)
	}
}

func TestIsNodeCoveredByAncestorApproval(t *testing.T) {
	tree := BuildTreeFromFiles(sampleFiles())
	fileNode, ok := tree.FindByPath("src/a.rs")
	if !ok {
		t.Fatalf("expected to find src/a.rs")
	}

	approved := map[string]bool{tree.Nodes[tree.RootID].Hash: true}
	if !tree.IsNodeCovered(fileNode.ID, approved) {
		t.Fatalf("expected file to be covered by root approval")
	}

	if tree.IsNodeCovered(fileNode.ID, map[string]bool{}) {
		t.Fatalf("expected file not to be covered with no approvals")
	}
}
