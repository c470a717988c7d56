//go:build unix

package adapters

import (
	"fmt"
	"os"

	"golang.org/x/crypto/ssh"
)

// validateIdentityFile parses path as an SSH private key so an unreadable or
// malformed key fails fast with a clear error instead of surfacing as an
// opaque non-zero exit from the ssh binary minutes later, behind a restart
// backoff. A passphrase-protected key is accepted without further checks.
//
// Params:
//   - path: the identity file path.
//
// Returns:
//   - error: a read or parse error describing why the key is unusable.
func validateIdentityFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading identity file: %w", err)
	}
	if _, err := ssh.ParsePrivateKey(raw); err != nil {
		if _, ok := err.(*ssh.PassphraseMissingError); ok {
			return nil // encrypted keys are left to ssh-agent; not this adapter's concern.
		}
		return fmt.Errorf("parsing identity file %s: %w", path, err)
	}
	return nil
}
