package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trueflow-dev/trueflow/internal/colors"
)

var (
	scanJSON bool
	scanTree bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the repository and emit its decomposed file/block state",
	RunE:  runScan,
}

func init() {
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "emit machine-readable JSON")
	scanCmd.Flags().BoolVar(&scanTree, "tree", false, "emit the Merkle tree instead of the flat file list")
}

func runScan(cmd *cobra.Command, args []string) error {
	sess, err := newSession()
	if err != nil {
		return err
	}

	files, tree, err := sess.scan()
	if err != nil {
		return err
	}

	if scanTree {
		if scanJSON {
			return printJSON(tree)
		}
		for _, n := range tree.Nodes {
			fmt.Printf("%d\t%v\t%s\t%s\n", n.ID, n.Kind, n.Name, n.Hash)
		}
		return nil
	}

	if scanJSON {
		return printJSON(files)
	}

	for _, fs := range files {
		fmt.Printf("%s %s (%d blocks)\n", colors.Bold(fs.Path), colors.Gray(string(fs.Language)), len(fs.Blocks))
	}
	return nil
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
