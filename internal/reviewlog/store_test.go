package reviewlog

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestAppendAndReadHistory(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	r1 := Record{ID: "1", Fingerprint: "abc", Check: "review", Verdict: VerdictApproved, Identity: Identity{Type: "email", Email: "a@example.com"}, Timestamp: 100}
	r2 := Record{ID: "2", Fingerprint: "abc", Check: "review", Verdict: VerdictRejected, Identity: Identity{Type: "email", Email: "a@example.com"}, Timestamp: 200}

	if err := store.Append(r1); err != nil {
		t.Fatalf("Append r1: %v", err)
	}
	if err := store.Append(r2); err != nil {
		t.Fatalf("Append r2: %v", err)
	}

	records, err := store.ReadHistory()
	if err != nil {
		t.Fatalf("ReadHistory: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID != "1" || records[1].ID != "2" {
		t.Fatalf("expected records in append order, got %+v", records)
	}
}

func TestSigningPayloadFormat(t *testing.T) {
	r := Record{Fingerprint: "fp", Verdict: VerdictApproved, Timestamp: 42}
	want := `{"check":"","fingerprint":"fp","id":"","identity":{"email":"","type":""},"timestamp":42,"verdict":"approved"}`
	if got := r.SigningPayload(); got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestSigningPayloadIgnoresAttestations(t *testing.T) {
	base := Record{Fingerprint: "fp", Verdict: VerdictApproved, Timestamp: 42}
	signed := base
	signed.Attestations = []Attestation{{Kind: AttestationGPG, Canonicalization: CanonicalizationJCS, PublicKeyID: "key", Signature: "sig"}}
	if base.SigningPayload() != signed.SigningPayload() {
		t.Fatalf("attaching an attestation must not change the signing payload")
	}
}

func TestSigningPayloadKeysAreSorted(t *testing.T) {
	email := "a@b.com"
	r := Record{
		ID: "rid", Fingerprint: "fp", Check: "review", Verdict: VerdictRejected,
		Identity: Identity{Type: "email", Email: email}, Timestamp: 7,
		PathHint: "a.rs", LineHint: 3, Note: "why", Tags: []string{"x", "y"},
	}
	payload := r.SigningPayload()
	checkIdx := strings.Index(payload, `"check"`)
	fingerprintIdx := strings.Index(payload, `"fingerprint"`)
	identityIdx := strings.Index(payload, `"identity"`)
	verdictIdx := strings.Index(payload, `"verdict"`)
	if !(checkIdx < fingerprintIdx && fingerprintIdx < identityIdx && identityIdx < verdictIdx) {
		t.Fatalf("object keys are not in sorted order: %s", payload)
	}
	if strings.ContainsAny(payload, " \t\n") {
		t.Fatalf("canonical payload must have no insignificant whitespace: %s", payload)
	}
}

func TestIndexRebuildLatestWriteWins(t *testing.T) {
	dir := t.TempDir()
	idx, err := OpenIndex(filepath.Join(dir, "index.db"))
	if err != nil {
		t.Fatalf("OpenIndex: %v", err)
	}
	defer idx.Close()

	records := []Record{
		{Fingerprint: "fp1", Check: "review", Verdict: VerdictApproved, Timestamp: 1},
		{Fingerprint: "fp1", Check: "review", Verdict: VerdictRejected, Timestamp: 2},
		{Fingerprint: "fp2", Check: "mark", Verdict: VerdictApproved, Timestamp: 5},
	}
	if err := idx.Rebuild(records); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	v, ok, err := idx.LatestVerdict("fp1")
	if err != nil || !ok {
		t.Fatalf("LatestVerdict fp1: %v %v", v, err)
	}
	if v != VerdictRejected {
		t.Fatalf("expected latest verdict rejected, got %s", v)
	}

	if _, ok, _ := idx.LatestVerdict("fp2"); ok {
		t.Fatalf("expected fp2 excluded (check != review)")
	}
}
