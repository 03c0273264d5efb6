// Package vcsadapter wraps go-git for the handful of operations trueflow
// needs from the host repository: which files are dirty, the hunk-level
// diff between HEAD and the trunk branch (fingerprinted for review
// lookup), recent commit history, and the side-channel sync of the review
// log onto a dedicated trueflow-db ref.
package vcsadapter

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/format/diff"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/trueflow-dev/trueflow/internal/hashing"
)

// contextLines is how many lines of unchanged surrounding context are
// kept around each changed run, matching a standard unified diff.
const contextLines = 3

// Adapter is a thin wrapper over a discovered git repository.
type Adapter struct {
	repo *git.Repository
}

// Open discovers the git repository containing path (walking up through
// parent directories, like `git rev-parse --show-toplevel`).
func Open(path string) (*Adapter, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	return &Adapter{repo: repo}, nil
}

// Root returns the worktree root of the repository.
func (a *Adapter) Root() (string, error) {
	wt, err := a.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("worktree: %w", err)
	}
	return wt.Filesystem.Root(), nil
}

// GitIdentity reads user.email and user.signingkey from the global git
// config, for use as the fallback identity when no subsystem config
// override is set. Absence of either is not an error; callers fall back
// further themselves.
func GitIdentity() (email, signingKey string) {
	cfg, err := gitconfig.LoadConfig(gitconfig.GlobalScope)
	if err != nil {
		return "", ""
	}
	email = cfg.User.Email
	signingKey = cfg.Raw.Section("user").Option("signingkey")
	return email, signingKey
}

// DirtyFiles returns every path with uncommitted changes (staged or not),
// relative to the repository root, sorted.
func (a *Adapter) DirtyFiles() ([]string, error) {
	wt, err := a.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	var out []string
	for path, s := range status {
		if s.Worktree != git.Unmodified || s.Staging != git.Unmodified {
			out = append(out, path)
		}
	}
	sort.Strings(out)
	return out, nil
}

// CommitInfo is a lightweight view of a commit; the CLI uses the newest
// one's hash as the scan cache's revision key.
type CommitInfo struct {
	Hash    string
	Author  string
	When    string
	Message string
}

// RecentCommits returns up to limit commits reachable from HEAD, newest
// first.
func (a *Adapter) RecentCommits(limit int) ([]CommitInfo, error) {
	head, err := a.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("head: %w", err)
	}
	iter, err := a.repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return nil, fmt.Errorf("log: %w", err)
	}
	defer iter.Close()

	var out []CommitInfo
	err = iter.ForEach(func(c *object.Commit) error {
		if len(out) >= limit {
			return storerStop
		}
		out = append(out, CommitInfo{
			Hash:    c.Hash.String(),
			Author:  c.Author.Email,
			When:    c.Author.When.UTC().Format("2006-01-02T15:04:05Z"),
			Message: strings.TrimSpace(c.Message),
		})
		return nil
	})
	if err != nil && err != io.EOF && err != storerStop {
		return out, err
	}
	return out, nil
}

var storerStop = fmt.Errorf("stop")

// Change is a single reviewable unit carved out of a diff: one hunk, with
// its fingerprint precomputed so callers can check it against the review
// log without recomputing hashes themselves.
type Change struct {
	FilePath    string
	NewStart    int
	DiffContent string
	NewContent  string
	Context     string
	HashBody    string
	Fingerprint hashing.Fingerprint
}

// hunkLine is one line of a file's unified diff, tagged with its prefix
// (' ' context, '+' added, '-' deleted) and, for non-deleted lines, its
// 1-indexed line number in the new file.
type hunkLine struct {
	prefix    byte
	text      string
	newLineNo int
}

// GetUnreviewedChanges diffs merge-base(HEAD, trunk)..HEAD with 3 lines of
// context, fingerprints every hunk, and returns the ones approved reports
// as not yet Approved.
func (a *Adapter) GetUnreviewedChanges(approved func(fingerprint string) bool) ([]Change, error) {
	headRef, err := a.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("head: %w", err)
	}
	headCommit, err := a.repo.CommitObject(headRef.Hash())
	if err != nil {
		return nil, fmt.Errorf("head commit: %w", err)
	}

	baseCommit, err := a.resolveTrunkCommit()
	if err != nil {
		return nil, err
	}

	mergeBases, err := baseCommit.MergeBase(headCommit)
	if err != nil || len(mergeBases) == 0 {
		return nil, fmt.Errorf("no merge base between HEAD and trunk branch")
	}

	patch, err := mergeBases[0].Patch(headCommit)
	if err != nil {
		return nil, fmt.Errorf("diff: %w", err)
	}

	var changes []Change
	for _, fp := range patch.FilePatches() {
		from, to := fp.Files()
		if to == nil {
			continue // file deleted on HEAD; nothing left to review
		}
		path := to.Path()
		if from == nil {
			path = to.Path()
		}

		lines := flattenChunks(fp.Chunks())
		for _, hunk := range groupHunks(lines, contextLines) {
			change := buildChange(path, hunk)
			if approved == nil || !approved(change.Fingerprint.String()) {
				changes = append(changes, change)
			}
		}
	}

	return changes, nil
}

// resolveTrunkCommit finds the commit tip of main or master, trying a
// local branch first and falling back to its origin remote-tracking ref.
func (a *Adapter) resolveTrunkCommit() (*object.Commit, error) {
	candidates := []string{
		"refs/heads/main", "refs/heads/master",
		"refs/remotes/origin/main", "refs/remotes/origin/master",
	}
	for _, ref := range candidates {
		hash, err := a.repo.ResolveRevision(plumbing.Revision(ref))
		if err != nil {
			continue
		}
		commit, err := a.repo.CommitObject(*hash)
		if err == nil {
			return commit, nil
		}
	}
	return nil, fmt.Errorf("could not resolve a main or master branch")
}

func flattenChunks(chunks []diff.Chunk) []hunkLine {
	var out []hunkLine
	newLineNo := 1
	for _, chunk := range chunks {
		var prefix byte
		switch chunk.Type() {
		case diff.Equal:
			prefix = ' '
		case diff.Add:
			prefix = '+'
		case diff.Delete:
			prefix = '-'
		}
		for _, text := range splitChunkLines(chunk.Content()) {
			line := hunkLine{prefix: prefix, text: text}
			if prefix != '-' {
				line.newLineNo = newLineNo
				newLineNo++
			}
			out = append(out, line)
		}
	}
	return out
}

func splitChunkLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// groupHunks collapses a flat, whole-file line list into hunks: runs of
// non-context lines, each padded with up to contextLines of surrounding
// context, merging any hunks whose padded ranges overlap.
func groupHunks(lines []hunkLine, contextLines int) [][]hunkLine {
	n := len(lines)
	var cores [][2]int
	i := 0
	for i < n {
		if lines[i].prefix == ' ' {
			i++
			continue
		}
		start := i
		for i < n && lines[i].prefix != ' ' {
			i++
		}
		cores = append(cores, [2]int{start, i})
	}
	if len(cores) == 0 {
		return nil
	}

	var ranges [][2]int
	for _, c := range cores {
		s := c[0] - contextLines
		if s < 0 {
			s = 0
		}
		e := c[1] + contextLines
		if e > n {
			e = n
		}
		if len(ranges) > 0 && s <= ranges[len(ranges)-1][1] {
			if e > ranges[len(ranges)-1][1] {
				ranges[len(ranges)-1][1] = e
			}
			continue
		}
		ranges = append(ranges, [2]int{s, e})
	}

	hunks := make([][]hunkLine, 0, len(ranges))
	for _, r := range ranges {
		hunks = append(hunks, lines[r[0]:r[1]])
	}
	return hunks
}

// buildChange reconstructs the four derived strings a hunk's fingerprint
// and display are built from: diffContent (every line, prefixed) feeds
// nothing directly but is kept for human display; newContent reconstructs
// the post-change file region; context is the space-prefixed subset (used
// for the fingerprint's ContextHash); hashBody is the +/- prefixed subset
// (used for the fingerprint's ContentHash). Because the fingerprint
// combines both hashes, an edit to the changed lines or to the context
// lines inside the hunk changes the hunk's identity; edits outside the
// hunk do not.
func buildChange(path string, lines []hunkLine) Change {
	var diffContent, newContent, context, hashBody strings.Builder
	newStart := 0

	for _, l := range lines {
		if l.prefix != '-' && newStart == 0 {
			newStart = l.newLineNo
		}
	}

	for _, l := range lines {
		diffContent.WriteByte(l.prefix)
		diffContent.WriteString(l.text)
		diffContent.WriteByte('\n')

		switch l.prefix {
		case ' ':
			context.WriteString(l.text)
			context.WriteByte('\n')
			newContent.WriteString(l.text)
			newContent.WriteByte('\n')
		case '+':
			newContent.WriteString(l.text)
			newContent.WriteByte('\n')
			hashBody.WriteByte('+')
			hashBody.WriteString(l.text)
			hashBody.WriteByte('\n')
		case '-':
			hashBody.WriteByte('-')
			hashBody.WriteString(l.text)
			hashBody.WriteByte('\n')
		}
	}

	fp := hashing.ComputeFingerprint(hashBody.String(), context.String())

	return Change{
		FilePath:    path,
		NewStart:    newStart,
		DiffContent: diffContent.String(),
		NewContent:  newContent.String(),
		Context:     context.String(),
		HashBody:    hashBody.String(),
		Fingerprint: fp,
	}
}
