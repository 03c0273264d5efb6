// Package hashing implements the content-addressing primitives trueflow
// builds everything else on top of: canonicalization, block hashing and
// diff-hunk fingerprinting.
//
// The digest algorithm is pinned to SHA-256. Existing review records are
// keyed by these hashes, so the algorithm can never change without
// invalidating every record ever written; TestFingerprintStabilitySnapshot
// guards the exact digest.
package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Canonicalize normalizes content before hashing: line endings are folded to
// "\n", trailing whitespace is trimmed from every line, and the result
// always ends in exactly one trailing newline (empty input stays empty).
func Canonicalize(input string) string {
	if input == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(input))

	lines := splitLines(input)
	for _, line := range lines {
		b.WriteString(strings.TrimRight(line, " \t\r\n"))
		b.WriteByte('\n')
	}

	return b.String()
}

// splitLines splits on \n, \r\n or a lone \r and never yields a trailing
// empty element for a trailing newline.
func splitLines(input string) []string {
	normalized := strings.ReplaceAll(input, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	if normalized == "" {
		return nil
	}
	trimmedTrailing := strings.HasSuffix(normalized, "\n")
	if trimmedTrailing {
		normalized = normalized[:len(normalized)-1]
	}
	return strings.Split(normalized, "\n")
}

// HashStr returns the hex-encoded SHA-256 digest of the canonicalized input.
func HashStr(input string) string {
	normalized := Canonicalize(input)
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// Fingerprint identifies a reviewable diff hunk by the hash of its edited
// content (ContentHash) separated from the hash of its surrounding,
// unchanged context (ContextHash).
type Fingerprint struct {
	ContentHash string
	ContextHash string
}

// ComputeFingerprint hashes body and context independently and combines them
// into a Fingerprint. body is the concatenation of added/removed diff lines;
// context is the concatenation of unchanged (space-prefixed) lines.
func ComputeFingerprint(body, context string) Fingerprint {
	return Fingerprint{
		ContentHash: HashStr(body),
		ContextHash: HashStr(context),
	}
}

// String combines ContentHash and ContextHash into the final fingerprint
// string: SHA-256 over the concatenation of the two hex digest strings, not
// their raw bytes. This is the value stored as Record.Fingerprint.
func (f Fingerprint) String() string {
	h := sha256.New()
	h.Write([]byte(f.ContentHash))
	h.Write([]byte(f.ContextHash))
	return hex.EncodeToString(h.Sum(nil))
}

// FileHash computes the Merkle root of a file from its ordered block
// hashes: SHA-256 over the concatenation of the block hash strings.
func FileHash(blockHashes []string) string {
	h := sha256.New()
	for _, bh := range blockHashes {
		h.Write([]byte(bh))
	}
	return hex.EncodeToString(h.Sum(nil))
}
