package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trueflow-dev/trueflow/internal/colors"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Publish and pull the review log via the trueflow-db VCS ref",
	RunE:  runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	sess, err := newSession()
	if err != nil {
		return err
	}
	if !sess.ctx.IsGitRepo() {
		return fmt.Errorf("not inside a git repository")
	}

	if err := sess.ctx.Repo.Sync(sess.ctx.Store); err != nil {
		return fmt.Errorf("sync: %w", err)
	}

	fmt.Println(colors.SuccessText("Review log synced."))
	return nil
}
