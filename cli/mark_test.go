package cli

import (
	"testing"

	"github.com/trueflow-dev/trueflow/internal/reviewlog"
)

// resetMarkFlags restores the mark command's package-level flag vars to
// their zero/default values after a test sets them directly.
func resetMarkFlags() {
	markFingerprint = ""
	markVerdict = ""
	markCheck = "review"
	markNote = ""
	markPath = ""
	markLine = 0
	markQuiet = true
}

func TestRunMarkAppendsRecord(t *testing.T) {
	t.Chdir(t.TempDir())
	resetMarkFlags()
	defer resetMarkFlags()

	markFingerprint = "deadbeef"
	markVerdict = "approved"
	markNote = "looks good"
	markPath = "src/main.rs"
	markLine = 12

	if err := runMark(nil, nil); err != nil {
		t.Fatalf("runMark: %v", err)
	}

	sess, err := newSession()
	if err != nil {
		t.Fatalf("newSession: %v", err)
	}
	records, err := sess.ctx.Store.ReadHistory()
	if err != nil {
		t.Fatalf("ReadHistory: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	r := records[0]
	if r.Fingerprint != "deadbeef" {
		t.Fatalf("expected fingerprint deadbeef, got %q", r.Fingerprint)
	}
	if r.Verdict != reviewlog.VerdictApproved {
		t.Fatalf("expected approved verdict, got %q", r.Verdict)
	}
	if r.Check != "review" {
		t.Fatalf("expected default check 'review', got %q", r.Check)
	}
	if r.Note != "looks good" || r.PathHint != "src/main.rs" || r.LineHint != 12 {
		t.Fatalf("expected note/path/line hints preserved, got %+v", r)
	}
	if r.ID == "" {
		t.Fatalf("expected a generated record ID")
	}
	if len(r.Attestations) != 0 {
		t.Fatalf("expected no attestations when auto-sign is off, got %+v", r.Attestations)
	}
}

func TestRunMarkRejectsUnknownVerdict(t *testing.T) {
	t.Chdir(t.TempDir())
	resetMarkFlags()
	defer resetMarkFlags()

	markFingerprint = "deadbeef"
	markVerdict = "maybe"

	if err := runMark(nil, nil); err == nil {
		t.Fatalf("expected an error for an unknown verdict")
	}
}

func TestRunMarkRejectedVerdictIsNotApproved(t *testing.T) {
	t.Chdir(t.TempDir())
	resetMarkFlags()
	defer resetMarkFlags()

	markFingerprint = "abc123"
	markVerdict = "rejected"
	if err := runMark(nil, nil); err != nil {
		t.Fatalf("runMark: %v", err)
	}

	sess, err := newSession()
	if err != nil {
		t.Fatalf("newSession: %v", err)
	}
	approvals, _, err := sess.approvals()
	if err != nil {
		t.Fatalf("approvals: %v", err)
	}
	if approvals.IsApproved("abc123") {
		t.Fatalf("expected a rejected verdict to not read back as approved")
	}
}
