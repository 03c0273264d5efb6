package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trueflow-dev/trueflow/internal/colors"
	"github.com/trueflow-dev/trueflow/internal/coverage"
	"github.com/trueflow-dev/trueflow/internal/reviewlog"
)

var diffJSON bool

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Show unreviewed hunks between HEAD and the trunk merge-base",
	RunE:  runDiff,
}

func init() {
	diffCmd.Flags().BoolVar(&diffJSON, "json", false, "emit machine-readable JSON")
}

// diffEntry is one hunk surfaced by `diff`, annotated with its review
// status: "rejected" if its latest verdict says so, "unreviewed" otherwise
// (approved hunks are never surfaced at all).
type diffEntry struct {
	Path        string `json:"path"`
	NewStart    int    `json:"new_start"`
	Fingerprint string `json:"fingerprint"`
	Status      string `json:"status"`
	DiffContent string `json:"diff_content"`
}

func runDiff(cmd *cobra.Command, args []string) error {
	sess, err := newSession()
	if err != nil {
		return err
	}
	if !sess.ctx.IsGitRepo() {
		return fmt.Errorf("not inside a git repository")
	}

	records, err := sess.ctx.Store.ReadHistory()
	if err != nil {
		return fmt.Errorf("read review history: %w", err)
	}
	verdicts := coverage.ResolveLatestVerdicts(records)

	changes, err := sess.ctx.Repo.GetUnreviewedChanges(func(fingerprint string) bool {
		return verdicts[fingerprint] == reviewlog.VerdictApproved
	})
	if err != nil {
		return err
	}

	entries := make([]diffEntry, 0, len(changes))
	for _, c := range changes {
		fp := c.Fingerprint.String()
		status := "unreviewed"
		if verdicts[fp] == reviewlog.VerdictRejected {
			status = "rejected"
		}
		entries = append(entries, diffEntry{
			Path:        c.FilePath,
			NewStart:    c.NewStart,
			Fingerprint: fp,
			Status:      status,
			DiffContent: c.DiffContent,
		})
	}

	if diffJSON {
		return printJSON(entries)
	}

	if len(entries) == 0 {
		fmt.Println(colors.SuccessText("No unreviewed changes."))
		return nil
	}

	for _, e := range entries {
		label := colors.Yellow(e.Status)
		if e.Status == "rejected" {
			label = colors.Red(e.Status)
		}
		fmt.Printf("%s %s:%d [%s]\n", label, colors.Bold(e.Path), e.NewStart, e.Fingerprint[:12])
		fmt.Print(e.DiffContent)
		fmt.Println()
	}
	return nil
}
