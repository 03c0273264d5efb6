// Package cli wires trueflow's cobra command surface onto the internal
// scan/review/coverage/vcsadapter stack.
package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/trueflow-dev/trueflow/internal/block"
	"github.com/trueflow-dev/trueflow/internal/config"
	"github.com/trueflow-dev/trueflow/internal/lang"
	"github.com/trueflow-dev/trueflow/internal/coverage"
	"github.com/trueflow-dev/trueflow/internal/merkletree"
	"github.com/trueflow-dev/trueflow/internal/reviewctx"
	"github.com/trueflow-dev/trueflow/internal/reviewlog"
	"github.com/trueflow-dev/trueflow/internal/scanner"
	"github.com/trueflow-dev/trueflow/internal/signer"
	"github.com/trueflow-dev/trueflow/internal/vcsadapter"
)

// session bundles everything most commands need: the review context and
// the loaded subsystem config. The tree is not held here; scan() rebuilds
// it on each call.
type session struct {
	ctx *reviewctx.Context
	cfg *config.Config
}

// newSession resolves the review context rooted at the current working
// directory and loads its layered subsystem config.
func newSession() (*session, error) {
	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	ctx, err := reviewctx.New(workDir)
	if err != nil {
		return nil, fmt.Errorf("resolve review context: %w", err)
	}

	cfg, err := config.Load(ctx.Store.Root())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return &session{ctx: ctx, cfg: cfg}, nil
}

// identity resolves the reviewer identity this session should stamp on any
// record it appends: config override, else git config, else anonymous.
func (s *session) identity() reviewlog.Identity {
	gitEmail, gitSigningKey := vcsadapter.GitIdentity()
	return config.ResolveIdentity(s.cfg, gitEmail, gitSigningKey)
}

// scan runs the scanner over the review root, returning the scanned
// FileStates and their built Merkle tree.
func (s *session) scan() ([]block.FileState, *merkletree.Tree, error) {
	revision := "working-tree"
	if s.ctx.Repo != nil {
		if commits, err := s.ctx.Repo.RecentCommits(1); err == nil && len(commits) > 0 {
			revision = commits[0].Hash
		}
	}

	files, err := scanner.ScanDirectory(s.ctx.Store.Root(), revision)
	if err != nil {
		return nil, nil, fmt.Errorf("scan: %w", err)
	}
	return files, merkletree.BuildTreeFromFiles(files), nil
}

// approvals loads the review log and reduces it to a last-write-wins
// approval map, restricted to check == "review". The JSONL log is always
// the authoritative source; the bbolt cache is refreshed alongside it so
// other tooling can query latest verdicts without re-reading the log.
func (s *session) approvals() (coverage.ApprovalMap, []reviewlog.Record, error) {
	records, err := s.ctx.Store.ReadHistory()
	if err != nil {
		return nil, nil, fmt.Errorf("read review history: %w", err)
	}
	if err := s.ctx.Store.RefreshIndex(records); err != nil {
		warnf("refresh verdict index: %v", err)
	}
	return coverage.ResolveApprovals(records), records, nil
}

// blockFilters builds a coverage.BlockFilters from --only/--exclude flag
// values, rejecting any token that isn't a known block kind.
func blockFilters(only, exclude []string) (coverage.BlockFilters, error) {
	var filters coverage.BlockFilters
	for _, token := range only {
		k, err := block.ParseKind(token)
		if err != nil {
			return filters, err
		}
		filters.Only = append(filters.Only, k)
	}
	for _, token := range exclude {
		k, err := block.ParseKind(token)
		if err != nil {
			return filters, err
		}
		filters.Exclude = append(filters.Exclude, k)
	}
	return filters, nil
}

// signRecord signs r's signing payload with the given key, returning a
// ready-to-attach Attestation.
func signRecord(r reviewlog.Record, signingKey string) (reviewlog.Attestation, error) {
	sig, err := signer.Sign(r.SigningPayload(), signingKey)
	if err != nil {
		return reviewlog.Attestation{}, err
	}
	return reviewlog.Attestation{
		Kind:             reviewlog.AttestationGPG,
		Canonicalization: reviewlog.CanonicalizationJCS,
		PublicKeyID:      signingKey,
		Signature:        sig,
	}, nil
}

func languageForPath(files []block.FileState, path string) lang.Language {
	for _, fs := range files {
		if fs.Path == path {
			return fs.Language
		}
	}
	return lang.Unknown
}

func warnf(format string, args ...interface{}) {
	log.Warn().Msgf(format, args...)
}
