package hashing

import "testing"

func TestCanonicalize(t *testing.T) {
	cases := map[string]string{
		"foo":      "foo\n",
		"foo\n":    "foo\n",
		"foo\r\n":  "foo\n",
		"foo  \n":  "foo\n",
		"  foo":    "  foo\n",
		"":         "",
	}
	for in, want := range cases {
		if got := Canonicalize(in); got != want {
			t.Errorf("Canonicalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHashStrWhitespaceInsensitive(t *testing.T) {
	base := HashStr("line")
	if got := HashStr("line\n"); got != base {
		t.Errorf("trailing newline should be normalized: %q != %q", got, base)
	}
	if got := HashStr("line\r\n"); got != base {
		t.Errorf("CRLF should be normalized: %q != %q", got, base)
	}
	if got := HashStr("line  "); got != base {
		t.Errorf("trailing spaces should be trimmed: %q != %q", got, base)
	}
	if HashStr("a\nb") == HashStr("ab") {
		t.Error("internal newlines must matter")
	}
}

func TestFingerprintStabilitySnapshot(t *testing.T) {
	// Regression test: if this fails, fingerprints have changed and every
	// existing review record has silently stopped matching its block.
	// DO NOT change this value unless intentionally changing the hashing
	// algorithm.
	body := "fn main() {\n    println!(\"hello\");\n}"
	context := "use std::io;"

	fp := ComputeFingerprint(body, context)
	want := "dc1c606ceaac3fe3f3e6c11d170d950e290cbf509cf87b905c08b0f0503178c7"
	if got := fp.String(); got != want {
		t.Errorf("fingerprint changed: got %s, want %s", got, want)
	}
}

func TestContextSeparation(t *testing.T) {
	fp1 := ComputeFingerprint("AB", "")
	fp2 := ComputeFingerprint("A", "B")
	if fp1.String() == fp2.String() {
		t.Error("body/context split must not collide with a differently split equal concatenation")
	}
}

func TestFingerprintComponents(t *testing.T) {
	body := "fn main() {}\n"
	context := "use std::fmt;"
	fp := ComputeFingerprint(body, context)
	if fp.ContentHash != HashStr(body) {
		t.Error("content hash mismatch")
	}
	if fp.ContextHash != HashStr(context) {
		t.Error("context hash mismatch")
	}
}
