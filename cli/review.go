package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trueflow-dev/trueflow/internal/block"
	"github.com/trueflow-dev/trueflow/internal/colors"
	"github.com/trueflow-dev/trueflow/internal/coverage"
	"github.com/trueflow-dev/trueflow/internal/merkletree"
)

var (
	reviewAll     bool
	reviewOnly    []string
	reviewExclude []string
	reviewJSON    bool
	reviewTarget  []string
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "List blocks that still need a review verdict",
	RunE:  runReview,
}

func init() {
	reviewCmd.Flags().BoolVar(&reviewAll, "all", false, "review every file, not just dirty ones")
	reviewCmd.Flags().StringSliceVar(&reviewOnly, "only", nil, "restrict review to these block kinds")
	reviewCmd.Flags().StringSliceVar(&reviewExclude, "exclude", nil, "exclude these block kinds from review")
	reviewCmd.Flags().BoolVar(&reviewJSON, "json", false, "emit machine-readable JSON")
	reviewCmd.Flags().StringSliceVar(&reviewTarget, "target", nil, "restrict review to these file paths")
}

type reviewEntry struct {
	Path       string `json:"path"`
	Kind       string `json:"kind"`
	Hash       string `json:"hash"`
	StartLine  int    `json:"start_line"`
	EndLine    int    `json:"end_line"`
	Complexity int    `json:"complexity,omitempty"`
}

func runReview(cmd *cobra.Command, args []string) error {
	sess, err := newSession()
	if err != nil {
		return err
	}

	filters, err := blockFilters(reviewOnly, reviewExclude)
	if err != nil {
		return err
	}

	files, tree, err := sess.scan()
	if err != nil {
		return err
	}

	if !reviewAll && sess.ctx.Repo != nil {
		dirty, err := sess.ctx.Repo.DirtyFiles()
		if err == nil && len(dirty) > 0 {
			files = filterFilesByPath(files, dirty)
			tree = rebuildTreeFor(files)
		}
	}
	if len(reviewTarget) > 0 {
		files = filterFilesByPath(files, reviewTarget)
		tree = rebuildTreeFor(files)
	}

	approvals, _, err := sess.approvals()
	if err != nil {
		return err
	}

	items := coverage.ResolveUnreviewed(tree, files, approvals, filters)

	entries := make([]reviewEntry, 0, len(items))
	for _, it := range items {
		entries = append(entries, reviewEntry{
			Path:       it.Path,
			Kind:       string(it.Block.Kind),
			Hash:       it.Block.Hash,
			StartLine:  it.Block.StartLine,
			EndLine:    it.Block.EndLine,
			Complexity: it.Block.Complexity,
		})
	}

	if reviewJSON {
		return printJSON(entries)
	}

	if len(entries) == 0 {
		fmt.Println(colors.SuccessText("Nothing to review."))
		return nil
	}

	for _, e := range entries {
		fmt.Printf("%s %s L%d-%d %s\n", colors.Yellow(e.Kind), colors.Bold(e.Path), e.StartLine+1, e.EndLine, e.Hash[:12])
	}
	return nil
}

func filterFilesByPath(files []block.FileState, paths []string) []block.FileState {
	allowed := make(map[string]bool, len(paths))
	for _, p := range paths {
		allowed[p] = true
	}
	var out []block.FileState
	for _, fs := range files {
		if allowed[fs.Path] {
			out = append(out, fs)
		}
	}
	return out
}

func rebuildTreeFor(files []block.FileState) *merkletree.Tree {
	return merkletree.BuildTreeFromFiles(files)
}
