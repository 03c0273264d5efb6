package optimizer

import (
	"testing"

	"github.com/trueflow-dev/trueflow/internal/block"
)

func TestOptimizeMergesConsecutiveImports(t *testing.T) {
	blocks := []block.Block{
		block.New(`import "fmt"`, block.KindImport, 0, 1),
		block.New(`import "os"`, block.KindImport, 1, 2),
		block.New(`import "io"`, block.KindImport, 2, 3),
		block.New("func main() {}", block.KindFunction, 3, 4),
	}

	out := Optimize(blocks)
	if len(out) != 2 {
		t.Fatalf("expected 2 blocks (merged imports + function), got %d: %+v", len(out), out)
	}
	if out[0].Kind != block.KindImports {
		t.Fatalf("expected first block merged into Imports, got %s", out[0].Kind)
	}
	if out[0].StartLine != 0 || out[0].EndLine != 3 {
		t.Fatalf("expected merged span [0,3), got [%d,%d)", out[0].StartLine, out[0].EndLine)
	}
	if out[1].Kind != block.KindFunction {
		t.Fatalf("expected second block to remain Function, got %s", out[1].Kind)
	}
}

func TestOptimizeLeavesSingleImportUnmerged(t *testing.T) {
	blocks := []block.Block{
		block.New(`import "fmt"`, block.KindImport, 0, 1),
		block.New("func main() {}", block.KindFunction, 1, 2),
	}

	out := Optimize(blocks)
	if len(out) != 2 {
		t.Fatalf("expected 2 blocks unchanged, got %d", len(out))
	}
	if out[0].Kind != block.KindImport {
		t.Fatalf("expected a lone import to stay Import, got %s", out[0].Kind)
	}
}

func TestOptimizeMergesSmallCodeParagraphsUpToBudget(t *testing.T) {
	blocks := []block.Block{
		block.New("a := 1", block.KindCodeParagraph, 0, 1),
		block.New("b := 2", block.KindCodeParagraph, 1, 2),
		block.New("c := 3", block.KindCodeParagraph, 2, 3),
	}

	out := Optimize(blocks)
	if len(out) != 1 {
		t.Fatalf("expected all 3 small paragraphs to merge into 1, got %d: %+v", len(out), out)
	}
	if out[0].Kind != block.KindCodeParagraph {
		t.Fatalf("expected merged kind CodeParagraph, got %s", out[0].Kind)
	}
	if out[0].StartLine != 0 || out[0].EndLine != 3 {
		t.Fatalf("expected merged span [0,3), got [%d,%d)", out[0].StartLine, out[0].EndLine)
	}
}

func TestOptimizeStopsMergingPastLineBudget(t *testing.T) {
	blocks := []block.Block{
		block.New("small := 1", block.KindCodeParagraph, 0, 1),
		block.New("big", block.KindCodeParagraph, 1, 20),
		block.New("tail := 3", block.KindCodeParagraph, 20, 21),
	}

	out := Optimize(blocks)
	if len(out) < 2 {
		t.Fatalf("expected the oversized paragraph to break the merge run, got %d blocks: %+v", len(out), out)
	}
}
