// Package signer shells out to the system gpg binary to produce and
// verify detached armored signatures over a review record's signing
// payload. trueflow never links a GPG library directly: the binary is
// the same one the reviewer already trusts for their git commits.
package signer

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
)

// Sign produces a detached, armored GPG signature over payload, optionally
// using a specific local signing key (git config user.signingkey).
func Sign(payload string, localUser string) (string, error) {
	args := []string{"--batch", "--yes", "--detach-sign", "--armor"}
	if localUser != "" {
		args = append(args, "--local-user", localUser)
	}

	cmd := exec.Command("gpg", args...)
	cmd.Stdin = bytes.NewBufferString(payload)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("gpg sign: %w: %s", err, stderr.String())
	}
	return stdout.String(), nil
}

// Verifier checks detached signatures against imported public keys using
// a throwaway, temp-dir-scoped GPG keyring, so verification never
// touches (or depends on) the caller's real keyring.
type Verifier struct {
	homedir string
}

// NewVerifier creates a Verifier with a fresh temporary GPG homedir.
func NewVerifier() (*Verifier, error) {
	dir, err := os.MkdirTemp("", "trueflow-gpg-")
	if err != nil {
		return nil, fmt.Errorf("create gpg homedir: %w", err)
	}
	if err := os.Chmod(dir, 0o700); err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("chmod gpg homedir: %w", err)
	}
	return &Verifier{homedir: dir}, nil
}

// Close removes the temporary GPG homedir.
func (v *Verifier) Close() error {
	return os.RemoveAll(v.homedir)
}

// ImportKey imports an ASCII-armored public key into the verifier's
// keyring.
func (v *Verifier) ImportKey(armoredPublicKey string) error {
	cmd := exec.Command("gpg", "--batch", "--no-tty", "--homedir", v.homedir, "--import")
	cmd.Stdin = bytes.NewBufferString(armoredPublicKey)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("gpg import: %w: %s", err, stderr.String())
	}
	return nil
}

// Verify checks signature (an ASCII-armored detached signature) against
// payload, returning nil only if the signature is valid under a key
// already imported into this verifier.
func (v *Verifier) Verify(payload, signature string) error {
	sigFile, err := os.CreateTemp(v.homedir, "sig-*.asc")
	if err != nil {
		return fmt.Errorf("write signature file: %w", err)
	}
	defer os.Remove(sigFile.Name())
	if _, err := sigFile.WriteString(signature); err != nil {
		sigFile.Close()
		return fmt.Errorf("write signature file: %w", err)
	}
	sigFile.Close()

	payloadFile, err := os.CreateTemp(v.homedir, "payload-*.txt")
	if err != nil {
		return fmt.Errorf("write payload file: %w", err)
	}
	defer os.Remove(payloadFile.Name())
	if _, err := payloadFile.WriteString(payload); err != nil {
		payloadFile.Close()
		return fmt.Errorf("write payload file: %w", err)
	}
	payloadFile.Close()

	cmd := exec.Command("gpg", "--batch", "--no-tty", "--homedir", v.homedir, "--verify", sigFile.Name(), payloadFile.Name())
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("signature verification failed: %s", stderr.String())
	}
	return nil
}
