package finder

import (
	"testing"

	"github.com/trueflow-dev/trueflow/internal/block"
	"github.com/trueflow-dev/trueflow/internal/lang"
)

func sampleFileStates() []block.FileState {
	fn1 := block.New("fn add(a: i32, b: i32) -> i32 {\n    a + b\n}\n", block.KindFunction, 0, 3)
	fn2 := block.New("fn sub(a: i32, b: i32) -> i32 {\n    a - b\n}\n", block.KindFunction, 4, 7)
	return []block.FileState{
		{Path: "src/lib.rs", Language: lang.Rust, Blocks: []block.Block{fn1, fn2}},
	}
}

func TestFindByHashPrefixUniqueMatch(t *testing.T) {
	files := sampleFileStates()
	prefix := files[0].Blocks[0].Hash[:8]

	m, err := FindByHashPrefix(files, prefix)
	if err != nil {
		t.Fatalf("FindByHashPrefix: %v", err)
	}
	if m.Block.Hash != files[0].Blocks[0].Hash {
		t.Fatalf("resolved wrong block")
	}
}

func TestFindByHashPrefixNotFound(t *testing.T) {
	files := sampleFileStates()
	if _, err := FindByHashPrefix(files, "zzzzzzzz"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFuzzyFindBlockPrefersFunctionMatches(t *testing.T) {
	files := sampleFileStates()
	m, err := FuzzyFindBlock(files, "a - b")
	if err != nil {
		t.Fatalf("FuzzyFindBlock: %v", err)
	}
	if m.Block.Hash != files[0].Blocks[1].Hash {
		t.Fatalf("expected to match the subtract function")
	}
}
