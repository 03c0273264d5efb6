// Package reviewctx assembles the per-invocation context every CLI
// command needs: where the review log lives, and the (optional) VCS
// adapter for commands that need dirty-file or diff information.
package reviewctx

import (
	"path/filepath"

	"github.com/trueflow-dev/trueflow/internal/reviewlog"
	"github.com/trueflow-dev/trueflow/internal/vcsadapter"
)

// Context bundles the review store and an optional git adapter (nil when
// the working directory isn't inside a git repository; without it, review
// considers every file instead of just dirty ones, and diff and sync
// return an error).
type Context struct {
	Store *reviewlog.FileStore
	Repo  *vcsadapter.Adapter
}

// New resolves the review store rooted at (or above) startDir and, if
// startDir is inside a git repository, opens a VCS adapter for it.
func New(startDir string) (*Context, error) {
	store, err := reviewlog.NewFileStore(startDir)
	if err != nil {
		return nil, err
	}

	repo, _ := vcsadapter.Open(startDir)

	return &Context{Store: store, Repo: repo}, nil
}

// TrueflowDir returns the .trueflow directory backing this context's
// review store.
func (c *Context) TrueflowDir() string {
	return filepath.Join(c.Store.Root(), ".trueflow")
}

// IsGitRepo reports whether this context has a working VCS adapter.
func (c *Context) IsGitRepo() bool {
	return c.Repo != nil
}
