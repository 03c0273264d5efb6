package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trueflow-dev/trueflow/internal/blockname"
	"github.com/trueflow-dev/trueflow/internal/colors"
	"github.com/trueflow-dev/trueflow/internal/finder"
	"github.com/trueflow-dev/trueflow/internal/subsplitter"
)

var (
	inspectFingerprint string
	inspectSplit       bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Locate a block by hash prefix",
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().StringVar(&inspectFingerprint, "fingerprint", "", "hash prefix to locate (required)")
	inspectCmd.Flags().BoolVar(&inspectSplit, "split", false, "also show the block's sub-blocks")
	inspectCmd.MarkFlagRequired("fingerprint")
}

func runInspect(cmd *cobra.Command, args []string) error {
	sess, err := newSession()
	if err != nil {
		return err
	}

	files, _, err := sess.scan()
	if err != nil {
		return err
	}

	match, err := finder.FindByHashPrefix(files, inspectFingerprint)
	if err != nil {
		if errors.Is(err, finder.ErrAmbiguous) {
			return fmt.Errorf("hash prefix %q is not unique, use a longer prefix", inspectFingerprint)
		}
		return fmt.Errorf("hash prefix %q: %w", inspectFingerprint, err)
	}

	fmt.Printf("%s  %s\n", colors.Bold(blockname.Handle(match.Block.Hash)), match.Block.Hash)
	fmt.Printf("  path:  %s\n", match.Path)
	fmt.Printf("  kind:  %s\n", match.Block.Kind)
	fmt.Printf("  lines: %d-%d\n", match.Block.StartLine+1, match.Block.EndLine)
	if match.Block.Complexity > 0 {
		fmt.Printf("  complexity: %d\n", match.Block.Complexity)
	}
	fmt.Println()
	fmt.Println(match.Block.Content)

	if !inspectSplit {
		return nil
	}

	language := languageForPath(files, match.Path)
	subBlocks, err := subsplitter.Split(match.Block, language)
	if err != nil {
		return fmt.Errorf("split sub-blocks: %w", err)
	}
	fmt.Println(colors.SectionHeader("Sub-blocks:"))
	for _, sb := range subBlocks {
		fmt.Printf("  %s L%d-%d %s\n", colors.Yellow(string(sb.Kind)), sb.StartLine+1, sb.EndLine, sb.Hash[:12])
	}
	return nil
}
