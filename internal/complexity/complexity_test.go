package complexity

import (
	"testing"

	"github.com/trueflow-dev/trueflow/internal/lang"
)

func TestCalculateRustNestedIfFor(t *testing.T) {
	content := `
fn example(x: i32) -> i32 {
    if x > 0 {
        for i in 0..x {
            println!("{}", i);
        }
    }
    x
}
`
	if got := Calculate(content, lang.Rust); got != 3 {
		t.Fatalf("got %d, want 3", got)
	}
}

func TestCalculateRustTripleNestedIf(t *testing.T) {
	content := `
fn example(a: bool, b: bool, c: bool) -> i32 {
    if a {
        if b {
            if c {
                return 1;
            }
        }
    }
    0
}
`
	if got := Calculate(content, lang.Rust); got != 6 {
		t.Fatalf("got %d, want 6", got)
	}
}

func TestCalculatePythonIfTryExcept(t *testing.T) {
	content := `
def example(x):
    if x > 0:
        try:
            return 1 / x
        except ZeroDivisionError:
            return 0
    return -1
`
	if got := Calculate(content, lang.Python); got != 6 {
		t.Fatalf("got %d, want 6", got)
	}
}

func TestCalculateUnknownLanguageIsZero(t *testing.T) {
	if got := Calculate("anything at all", lang.Text); got != 0 {
		t.Fatalf("got %d, want 0", got)
	}
	if got := Calculate("# heading", lang.Markdown); got != 0 {
		t.Fatalf("got %d, want 0", got)
	}
}
