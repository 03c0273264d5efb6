package blockname

import "testing"

func TestHandleIsDeterministic(t *testing.T) {
	hash := "a1b2c3d4e5f60718293a4b5c6d7e8f90102030405060708090a0b0c0d0e0f10"

	first := Handle(hash)
	second := Handle(hash)
	if first != second {
		t.Fatalf("expected Handle to be deterministic, got %q then %q", first, second)
	}
}

func TestHandleDiffersAcrossHashes(t *testing.T) {
	a := Handle("a1b2c3d4e5f60718293a4b5c6d7e8f90102030405060708090a0b0c0d0e0f10")
	b := Handle("000000000000000000000000000000000000000000000000000000000000")
	if a == b {
		t.Fatalf("expected different hashes to produce different handles, both got %q", a)
	}
}

func TestHandleReturnsShortHashUnchanged(t *testing.T) {
	if got := Handle("abc"); got != "abc" {
		t.Fatalf("expected a too-short hash to pass through unchanged, got %q", got)
	}
}
