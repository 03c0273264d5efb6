package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/trueflow-dev/trueflow/internal/reviewlog"
)

var (
	markFingerprint string
	markVerdict     string
	markCheck       string
	markNote        string
	markPath        string
	markLine        int
	markQuiet       bool
)

var markCmd = &cobra.Command{
	Use:   "mark",
	Short: "Append a review verdict for a fingerprint",
	RunE:  runMark,
}

func init() {
	markCmd.Flags().StringVar(&markFingerprint, "fingerprint", "", "fingerprint to mark (required)")
	markCmd.Flags().StringVar(&markVerdict, "verdict", "", "approved|rejected|question|comment (required)")
	markCmd.Flags().StringVar(&markCheck, "check", "review", "check tag this verdict gates")
	markCmd.Flags().StringVar(&markNote, "note", "", "optional free-form note")
	markCmd.Flags().StringVar(&markPath, "path", "", "optional path hint")
	markCmd.Flags().IntVar(&markLine, "line", 0, "optional line hint")
	markCmd.Flags().BoolVar(&markQuiet, "quiet", true, "suppress confirmation output (default)")
	markCmd.MarkFlagRequired("fingerprint")
	markCmd.MarkFlagRequired("verdict")
}

func runMark(cmd *cobra.Command, args []string) error {
	verdict, err := reviewlog.ParseVerdict(markVerdict)
	if err != nil {
		return err
	}

	sess, err := newSession()
	if err != nil {
		return err
	}

	record := reviewlog.Record{
		ID:          uuid.NewString(),
		Fingerprint: markFingerprint,
		Check:       markCheck,
		Verdict:     verdict,
		Identity:    sess.identity(),
		Timestamp:   time.Now().Unix(),
		PathHint:    markPath,
		LineHint:    markLine,
		Note:        markNote,
	}

	if sess.cfg.Identity.AutoSign && sess.cfg.Identity.SigningKey != "" {
		sig, err := signRecord(record, sess.cfg.Identity.SigningKey)
		if err != nil {
			return fmt.Errorf("sign record: %w", err)
		}
		record.Attestations = append(record.Attestations, sig)
	}

	if err := sess.ctx.Store.Append(record); err != nil {
		return fmt.Errorf("append record: %w", err)
	}

	if !markQuiet {
		fmt.Printf("marked %s %s\n", markFingerprint, verdict)
	}
	return nil
}
