// Package reviewlog implements the append-only review record log: the
// Record schema, its signing payload, and the on-disk FileStore that reads
// and appends it as newline-delimited JSON under a repository's
// .trueflow/ directory.
package reviewlog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Verdict is the outcome a reviewer records against a fingerprint.
type Verdict string

const (
	VerdictApproved Verdict = "approved"
	VerdictRejected Verdict = "rejected"
	VerdictQuestion Verdict = "question"
	VerdictComment  Verdict = "comment"
)

func (v Verdict) String() string { return string(v) }

// ParseVerdict resolves a case-insensitive verdict string.
func ParseVerdict(value string) (Verdict, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "approved", "approve":
		return VerdictApproved, nil
	case "rejected", "reject":
		return VerdictRejected, nil
	case "question":
		return VerdictQuestion, nil
	case "comment":
		return VerdictComment, nil
	default:
		return "", fmt.Errorf("unknown verdict: %s", value)
	}
}

// Identity identifies the reviewer who recorded a verdict, as a tagged
// union over Type. Email is currently the only identity kind; Signature,
// when present, is the GPG key fingerprint used to sign the record's
// attestations.
type Identity struct {
	Type      string  `json:"type"`
	Email     string  `json:"email"`
	Signature *string `json:"signature,omitempty"`
}

// NewEmailIdentity builds the Email identity variant.
func NewEmailIdentity(email string, signature *string) Identity {
	return Identity{Type: "email", Email: email, Signature: signature}
}

// AttestationKind names the cryptographic scheme used to sign a record's
// payload.
type AttestationKind string

const AttestationGPG AttestationKind = "PGP"

// Canonicalization names the byte-exact encoding of a Record that was
// signed, so a verifier can reconstruct the same bytes before checking
// the signature.
type Canonicalization string

// CanonicalizationJCS is JSON Canonicalization Scheme v1 (RFC 8785):
// sorted object keys, no insignificant whitespace.
const CanonicalizationJCS Canonicalization = "JCS_V1"

// Attestation is one cryptographic signature over a Record's signing
// payload.
type Attestation struct {
	Kind             AttestationKind  `json:"kind"`
	Canonicalization Canonicalization `json:"canonicalization"`
	PublicKeyID      string           `json:"public_key"`
	Signature        string           `json:"signature"`
}

// Record is one line of the review log.
type Record struct {
	ID           string        `json:"id"`
	Fingerprint  string        `json:"fingerprint"`
	Check        string        `json:"check"`
	Verdict      Verdict       `json:"verdict"`
	Identity     Identity      `json:"identity"`
	Timestamp    int64         `json:"timestamp"`
	PathHint     string        `json:"path_hint,omitempty"`
	LineHint     int           `json:"line_hint,omitempty"`
	Note         string        `json:"note,omitempty"`
	Tags         []string      `json:"tags,omitempty"`
	Attestations []Attestation `json:"attestations,omitempty"`
}

// signingPayloadView is Record shorn of its attestations: a record's
// signature covers everything about the verdict except the signatures
// themselves, so attaching a second attestation never invalidates the
// first.
type signingPayloadView struct {
	ID          string   `json:"id"`
	Fingerprint string   `json:"fingerprint"`
	Check       string   `json:"check"`
	Verdict     Verdict  `json:"verdict"`
	Identity    Identity `json:"identity"`
	Timestamp   int64    `json:"timestamp"`
	PathHint    string   `json:"path_hint,omitempty"`
	LineHint    int      `json:"line_hint,omitempty"`
	Note        string   `json:"note,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// SigningPayload is the JSON Canonicalization Scheme v1 (RFC 8785)
// encoding of r with its attestations removed: sorted object keys, no
// insignificant whitespace. A reviewer's key signs exactly these bytes.
func (r Record) SigningPayload() string {
	view := signingPayloadView{
		ID: r.ID, Fingerprint: r.Fingerprint, Check: r.Check, Verdict: r.Verdict,
		Identity: r.Identity, Timestamp: r.Timestamp, PathHint: r.PathHint,
		LineHint: r.LineHint, Note: r.Note, Tags: r.Tags,
	}
	payload, err := canonicalizeJSON(view)
	if err != nil {
		// view is a fixed, JSON-marshalable struct; this is unreachable.
		panic(fmt.Sprintf("canonicalize signing payload: %v", err))
	}
	return payload
}

// canonicalizeJSON renders v as RFC 8785 JSON: object keys sorted
// lexicographically by their UTF-16 code units (equivalent to a plain
// byte-wise sort for the ASCII field names used here), with no
// insignificant whitespace between tokens.
func canonicalizeJSON(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	var generic interface{}
	if err := json.Unmarshal(data, &generic); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := encodeCanonical(&buf, generic); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func encodeCanonical(buf *bytes.Buffer, v interface{}) error {
	switch val := v.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			keyBytes, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(keyBytes)
			buf.WriteByte(':')
			if err := encodeCanonical(buf, val[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case []interface{}:
		buf.WriteByte('[')
		for i, e := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeCanonical(buf, e); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return err
		}
		buf.Write(b)
	}
	return nil
}
