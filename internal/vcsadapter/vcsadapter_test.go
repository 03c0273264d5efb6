package vcsadapter

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

func sign() *object.Signature {
	return &object.Signature{Name: "reviewer", Email: "reviewer@example.com", When: time.Unix(0, 0)}
}

// newFixtureRepo builds a repo with trunk (main) pointing at a first
// commit and HEAD, on a feature branch, one commit ahead with an edit to
// the same file — the shape GetUnreviewedChanges expects: merge-base is
// the trunk tip, and the patch trunk..HEAD is exactly the feature edit.
func newFixtureRepo(t *testing.T, v1, v2 string) (dir string, repo *git.Repository) {
	t.Helper()
	dir = t.TempDir()

	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}

	filePath := filepath.Join(dir, "main.rs")
	if err := os.WriteFile(filePath, []byte(v1), 0o644); err != nil {
		t.Fatalf("write v1: %v", err)
	}
	if _, err := wt.Add("main.rs"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := wt.Commit("v1", &git.CommitOptions{Author: sign()}); err != nil {
		t.Fatalf("commit v1: %v", err)
	}

	trunkRef, err := repo.Head()
	if err != nil {
		t.Fatalf("head after v1: %v", err)
	}
	mainRef := plumbing.NewHashReference(plumbing.NewBranchReferenceName("main"), trunkRef.Hash())
	if err := repo.Storer.SetReference(mainRef); err != nil {
		t.Fatalf("set main ref: %v", err)
	}

	if err := wt.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName("feature"),
		Create: true,
	}); err != nil {
		t.Fatalf("checkout feature: %v", err)
	}

	if err := os.WriteFile(filePath, []byte(v2), 0o644); err != nil {
		t.Fatalf("write v2: %v", err)
	}
	if _, err := wt.Add("main.rs"); err != nil {
		t.Fatalf("add v2: %v", err)
	}
	if _, err := wt.Commit("v2", &git.CommitOptions{Author: sign()}); err != nil {
		t.Fatalf("commit v2: %v", err)
	}

	return dir, repo
}

func TestGetUnreviewedChangesReturnsFeatureHunk(t *testing.T) {
	dir, _ := newFixtureRepo(t,
		"fn main() {\n    let x = 1;\n    println!(\"{}\", x);\n}\n",
		"fn main() {\n    let x = 2;\n    println!(\"{}\", x);\n}\n",
	)

	adapter, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	changes, err := adapter.GetUnreviewedChanges(nil)
	if err != nil {
		t.Fatalf("GetUnreviewedChanges: %v", err)
	}
	if len(changes) != 1 {
		t.Fatalf("expected 1 hunk, got %d: %+v", len(changes), changes)
	}
	if changes[0].FilePath != "main.rs" {
		t.Fatalf("expected main.rs, got %q", changes[0].FilePath)
	}
	if changes[0].Fingerprint.String() == "" {
		t.Fatalf("expected a non-empty fingerprint")
	}
}

func TestGetUnreviewedChangesHonorsApprovedCallback(t *testing.T) {
	dir, _ := newFixtureRepo(t,
		"fn main() {\n    let x = 1;\n}\n",
		"fn main() {\n    let x = 2;\n}\n",
	)

	adapter, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	changes, err := adapter.GetUnreviewedChanges(func(string) bool { return true })
	if err != nil {
		t.Fatalf("GetUnreviewedChanges: %v", err)
	}
	if len(changes) != 0 {
		t.Fatalf("expected approved-everything callback to hide all changes, got %+v", changes)
	}
}

func TestDirtyFilesReportsUncommittedEdit(t *testing.T) {
	dir, _ := newFixtureRepo(t, "fn main() {}\n", "fn main() {}\n")

	if err := os.WriteFile(filepath.Join(dir, "main.rs"), []byte("fn main() { /* dirty */ }\n"), 0o644); err != nil {
		t.Fatalf("dirty write: %v", err)
	}

	adapter, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	dirty, err := adapter.DirtyFiles()
	if err != nil {
		t.Fatalf("DirtyFiles: %v", err)
	}
	if len(dirty) != 1 || dirty[0] != "main.rs" {
		t.Fatalf("expected [main.rs] dirty, got %v", dirty)
	}
}

func TestRecentCommitsNewestFirst(t *testing.T) {
	dir, _ := newFixtureRepo(t, "fn main() {}\n", "fn main() { println!(); }\n")

	adapter, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	commits, err := adapter.RecentCommits(10)
	if err != nil {
		t.Fatalf("RecentCommits: %v", err)
	}
	if len(commits) != 2 {
		t.Fatalf("expected 2 commits, got %d", len(commits))
	}
	if commits[0].Message != "v2" || commits[1].Message != "v1" {
		t.Fatalf("expected newest-first [v2, v1], got %+v", commits)
	}
}
