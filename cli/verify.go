package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/trueflow-dev/trueflow/internal/reviewlog"
	"github.com/trueflow-dev/trueflow/internal/signer"
)

var (
	verifyAll bool
	verifyID  string
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Summarize attestation verification across the review log",
	RunE:  runVerify,
}

func init() {
	verifyCmd.Flags().BoolVar(&verifyAll, "all", false, "verify every record in the log")
	verifyCmd.Flags().StringVar(&verifyID, "id", "", "verify only the record with this ID")
}

func runVerify(cmd *cobra.Command, args []string) error {
	if !verifyAll && verifyID == "" {
		return fmt.Errorf("one of --all or --id is required")
	}

	sess, err := newSession()
	if err != nil {
		return err
	}

	records, err := sess.ctx.Store.ReadHistory()
	if err != nil {
		return fmt.Errorf("read review history: %w", err)
	}

	verifier, err := newTrustedVerifier(sess.ctx.TrueflowDir())
	if err != nil {
		return err
	}
	defer verifier.Close()

	var attested, unattested, invalid int
	for _, r := range records {
		if verifyID != "" && r.ID != verifyID {
			continue
		}
		if len(r.Attestations) == 0 {
			unattested++
			continue
		}
		attested++
		if !allAttestationsValid(verifier, r) {
			invalid++
			fmt.Fprintf(os.Stderr, "invalid attestation: record %s (fingerprint %s)\n", r.ID, r.Fingerprint)
		}
	}

	fmt.Printf("Attested: %d\n", attested)
	fmt.Printf("Unattested: %d\n", unattested)
	fmt.Printf("Invalid: %d\n", invalid)

	if invalid > 0 {
		os.Exit(1)
	}
	return nil
}

func allAttestationsValid(verifier *signer.Verifier, r reviewlog.Record) bool {
	payload := r.SigningPayload()
	for _, a := range r.Attestations {
		if a.Kind != reviewlog.AttestationGPG || a.Canonicalization != reviewlog.CanonicalizationJCS {
			return false
		}
		if err := verifier.Verify(payload, a.Signature); err != nil {
			return false
		}
	}
	return true
}

// newTrustedVerifier loads every armored public key under
// <trueflowDir>/keys/*.asc into a fresh Verifier's keyring.
func newTrustedVerifier(trueflowDir string) (*signer.Verifier, error) {
	v, err := signer.NewVerifier()
	if err != nil {
		return nil, err
	}

	keyDir := filepath.Join(trueflowDir, "keys")
	entries, err := os.ReadDir(keyDir)
	if err != nil {
		if os.IsNotExist(err) {
			return v, nil
		}
		v.Close()
		return nil, fmt.Errorf("read key directory: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".asc" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(keyDir, e.Name()))
		if err != nil {
			warnf("read public key %s: %v", e.Name(), err)
			continue
		}
		if err := v.ImportKey(string(data)); err != nil {
			warnf("import public key %s: %v", e.Name(), err)
		}
	}
	return v, nil
}
