package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trueflow-dev/trueflow/internal/colors"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show trueflow's resolved subsystem configuration",
	Long: `Show the effective subsystem configuration: review defaults, sync
remote, and identity, layered from ~/.trueflowconfig.yaml,
<repo>/.trueflow/config.yaml, and TRUEFLOW_-prefixed environment variables.`,
	RunE: runConfigShow,
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	sess, err := newSession()
	if err != nil {
		return err
	}
	cfg := sess.cfg

	fmt.Println(colors.SectionHeader("review"))
	fmt.Printf("  only_dirty        = %t\n", cfg.Review.OnlyDirty)
	fmt.Printf("  include_approved  = %t\n", cfg.Review.IncludeApproved)
	fmt.Printf("  exclude_kinds     = %v\n", cfg.Review.ExcludeKinds)

	fmt.Println(colors.SectionHeader("sync"))
	fmt.Printf("  remote = %s\n", cfg.Sync.Remote)

	fmt.Println(colors.SectionHeader("identity"))
	identity := sess.identity()
	fmt.Printf("  email       = %s\n", colors.InfoText(identity.Email))
	if identity.Signature != nil {
		fmt.Printf("  signing_key = %s\n", colors.InfoText(*identity.Signature))
	} else {
		fmt.Printf("  signing_key = %s\n", colors.Gray("(not set)"))
	}
	fmt.Printf("  auto_sign   = %t\n", cfg.Identity.AutoSign)

	return nil
}
