package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/trueflow-dev/trueflow/internal/coverage"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Exit non-zero if any unreviewed change exists",
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	sess, err := newSession()
	if err != nil {
		return err
	}

	files, tree, err := sess.scan()
	if err != nil {
		return err
	}

	approvals, _, err := sess.approvals()
	if err != nil {
		return err
	}

	items := coverage.ResolveUnreviewed(tree, files, approvals, coverage.BlockFilters{})
	if len(items) > 0 {
		os.Exit(1)
	}
	return nil
}
