package cli

import (
	"encoding/xml"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trueflow-dev/trueflow/internal/coverage"
	"github.com/trueflow-dev/trueflow/internal/reviewlog"
)

var (
	feedbackFormat          string
	feedbackIncludeApproved bool
	feedbackOnly            []string
	feedbackExclude         []string
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Export each block's latest review verdict and note (approved blocks only with --include-approved)",
	RunE:  runFeedback,
}

func init() {
	feedbackCmd.Flags().StringVar(&feedbackFormat, "format", "json", "xml|json")
	feedbackCmd.Flags().BoolVar(&feedbackIncludeApproved, "include-approved", false, "include blocks with an approved verdict")
	feedbackCmd.Flags().StringSliceVar(&feedbackOnly, "only", nil, "restrict to these block kinds")
	feedbackCmd.Flags().StringSliceVar(&feedbackExclude, "exclude", nil, "exclude these block kinds")
}

// feedbackItem is one block's export record: its latest "review" verdict
// (or "unreviewed") plus every note left against it under any check tag,
// per spec.md §9's "other check tags ... surface in feedback".
type feedbackItem struct {
	XMLName    xml.Name `json:"-" xml:"item"`
	Path       string   `json:"path" xml:"path"`
	Kind       string   `json:"kind" xml:"kind"`
	Hash       string   `json:"hash" xml:"hash"`
	StartLine  int      `json:"start_line" xml:"start_line"`
	EndLine    int      `json:"end_line" xml:"end_line"`
	Complexity int      `json:"complexity,omitempty" xml:"complexity,omitempty"`
	Verdict    string   `json:"verdict" xml:"verdict"`
	Notes      []string `json:"notes,omitempty" xml:"notes>note,omitempty"`
}

type feedbackExport struct {
	XMLName xml.Name       `json:"-" xml:"feedback"`
	Items   []feedbackItem `json:"items" xml:"items>item"`
}

func runFeedback(cmd *cobra.Command, args []string) error {
	if feedbackFormat != "xml" && feedbackFormat != "json" {
		return fmt.Errorf("unknown feedback format: %s", feedbackFormat)
	}

	sess, err := newSession()
	if err != nil {
		return err
	}

	filters, err := blockFilters(feedbackOnly, feedbackExclude)
	if err != nil {
		return err
	}

	files, _, err := sess.scan()
	if err != nil {
		return err
	}

	records, err := sess.ctx.Store.ReadHistory()
	if err != nil {
		return fmt.Errorf("read review history: %w", err)
	}
	verdicts := coverage.ResolveLatestVerdicts(records)
	notesByFingerprint := notesByFingerprint(records)

	export := feedbackExport{}
	for _, fs := range files {
		for _, blk := range fs.Blocks {
			if !filters.AllowsBlock(blk, fs.Path) {
				continue
			}
			verdict := "unreviewed"
			if v, ok := verdicts[blk.Hash]; ok {
				verdict = v.String()
			}
			if verdict == string(reviewlog.VerdictApproved) && !feedbackIncludeApproved {
				continue
			}
			export.Items = append(export.Items, feedbackItem{
				Path:       fs.Path,
				Kind:       string(blk.Kind),
				Hash:       blk.Hash,
				StartLine:  blk.StartLine,
				EndLine:    blk.EndLine,
				Complexity: blk.Complexity,
				Verdict:    verdict,
				Notes:      notesByFingerprint[blk.Hash],
			})
		}
	}

	if feedbackFormat == "json" {
		return printJSON(export.Items)
	}

	data, err := xml.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal xml: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func notesByFingerprint(records []reviewlog.Record) map[string][]string {
	out := map[string][]string{}
	for _, r := range records {
		if r.Note == "" {
			continue
		}
		out[r.Fingerprint] = append(out[r.Fingerprint], r.Note)
	}
	return out
}
