package vcsadapter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/trueflow-dev/trueflow/internal/reviewlog"
)

const trueflowDBRefName = "trueflow-db"
const reviewsFileName = "reviews.jsonl"

// Sync merges the local review log with the remote's trueflow-db branch
// (a side channel that never touches the project's actual source tree)
// and pushes the merged result back: fetch, read the remote's
// reviews.jsonl (if any), merge remote-then-local records deduplicated by
// ID (first occurrence wins, so a record already pushed is never
// duplicated by resyncing), sort by timestamp, overwrite the local
// reviews.jsonl with the merged records, commit, and push.
func (a *Adapter) Sync(store *reviewlog.FileStore) error {
	remoteName := "origin"

	remoteBranch := plumbing.NewRemoteReferenceName(remoteName, trueflowDBRefName)
	fetchErr := a.repo.Fetch(&git.FetchOptions{
		RemoteName: remoteName,
		RefSpecs: []config.RefSpec{
			config.RefSpec(fmt.Sprintf("refs/heads/%s:%s", trueflowDBRefName, remoteBranch)),
		},
	})
	if fetchErr != nil && fetchErr != git.NoErrAlreadyUpToDate {
		// A missing remote branch is not fatal: this may be the first sync.
	}

	var remoteRecords []reviewlog.Record
	var parentHash plumbing.Hash
	hasParent := false

	if remoteRef, err := a.repo.Reference(remoteBranch, true); err == nil {
		parentHash = remoteRef.Hash()
		hasParent = true
		if commit, err := a.repo.CommitObject(parentHash); err == nil {
			if content, err := readFileAtCommit(commit, reviewsFileName); err == nil {
				remoteRecords = parseJSONL(content)
			}
		}
	}

	localRecords, err := store.ReadHistory()
	if err != nil {
		return fmt.Errorf("read local review history: %w", err)
	}

	merged := mergeRecords(remoteRecords, localRecords)

	var buf bytes.Buffer
	for _, r := range merged {
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshal record %s: %w", r.ID, err)
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}

	if err := os.MkdirAll(filepath.Dir(store.DBPath()), 0o755); err != nil {
		return fmt.Errorf("create review log directory: %w", err)
	}
	if err := os.WriteFile(store.DBPath(), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write merged review log: %w", err)
	}

	commitHash, err := a.commitReviewsBlob(buf.Bytes(), parentHash, hasParent)
	if err != nil {
		return err
	}

	localRef := plumbing.NewHashReference(plumbing.NewBranchReferenceName(trueflowDBRefName), commitHash)
	if err := a.repo.Storer.SetReference(localRef); err != nil {
		return fmt.Errorf("update local %s ref: %w", trueflowDBRefName, err)
	}

	err = a.repo.Push(&git.PushOptions{
		RemoteName: remoteName,
		RefSpecs: []config.RefSpec{
			config.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", trueflowDBRefName, trueflowDBRefName)),
		},
	})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return fmt.Errorf("push %s: %w", trueflowDBRefName, err)
	}

	return nil
}

func readFileAtCommit(commit *object.Commit, path string) ([]byte, error) {
	tree, err := commit.Tree()
	if err != nil {
		return nil, err
	}
	file, err := tree.File(path)
	if err != nil {
		return nil, err
	}
	r, err := file.Reader()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func parseJSONL(data []byte) []reviewlog.Record {
	var out []reviewlog.Record
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var r reviewlog.Record
		if err := json.Unmarshal(line, &r); err != nil {
			continue
		}
		out = append(out, r)
	}
	return out
}

// mergeRecords combines remote (treated as historical base) and local
// records, keeping the first occurrence of each record ID and sorting the
// result by timestamp so replaying the merge is deterministic.
func mergeRecords(remote, local []reviewlog.Record) []reviewlog.Record {
	seen := map[string]bool{}
	var merged []reviewlog.Record

	for _, r := range append(append([]reviewlog.Record{}, remote...), local...) {
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		merged = append(merged, r)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp < merged[j].Timestamp
	})
	return merged
}

// commitReviewsBlob writes reviews.jsonl's content as a blob, wraps it in
// a single-entry tree, and creates a commit object pointing at that tree
// (with parent, if one exists), returning the new commit's hash. This
// mirrors `git hash-object | git mktree | git commit-tree` as direct
// object-store writes instead of subprocess calls.
func (a *Adapter) commitReviewsBlob(content []byte, parent plumbing.Hash, hasParent bool) (plumbing.Hash, error) {
	blobObj := a.repo.Storer.NewEncodedObject()
	blobObj.SetType(plumbing.BlobObject)
	w, err := blobObj.Writer()
	if err != nil {
		return plumbing.ZeroHash, err
	}
	if _, err := w.Write(content); err != nil {
		w.Close()
		return plumbing.ZeroHash, err
	}
	w.Close()
	blobHash, err := a.repo.Storer.SetEncodedObject(blobObj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("store blob: %w", err)
	}

	tree := &object.Tree{
		Entries: []object.TreeEntry{
			{Name: reviewsFileName, Mode: filemode.Regular, Hash: blobHash},
		},
	}
	treeObj := a.repo.Storer.NewEncodedObject()
	treeObj.SetType(plumbing.TreeObject)
	if err := tree.Encode(treeObj); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("encode tree: %w", err)
	}
	treeHash, err := a.repo.Storer.SetEncodedObject(treeObj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("store tree: %w", err)
	}

	sig := object.Signature{Name: "trueflow", Email: "trueflow@localhost"}
	commit := &object.Commit{
		Author:       sig,
		Committer:    sig,
		Message:      "Sync reviews",
		TreeHash:     treeHash,
		ParentHashes: nil,
	}
	if hasParent {
		commit.ParentHashes = []plumbing.Hash{parent}
	}

	commitObj := a.repo.Storer.NewEncodedObject()
	commitObj.SetType(plumbing.CommitObject)
	if err := commit.Encode(commitObj); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("encode commit: %w", err)
	}
	commitHash, err := a.repo.Storer.SetEncodedObject(commitObj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("store commit: %w", err)
	}

	return commitHash, nil
}
