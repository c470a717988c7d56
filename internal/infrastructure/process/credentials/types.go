// Package credentials provides credential management for spawned processes.
package credentials

import "github.com/kodflow/daemon/internal/kernel/ports"

// User, Group and CredentialManager are aliases onto the kernel's OS
// abstraction, so callers in this package can refer to them without an
// extra import while staying backed by the same types the kernel adapters use.
type (
	User              = ports.User
	Group             = ports.Group
	CredentialManager = ports.CredentialManager
)

// Sentinel errors for credential operations.
var (
	ErrUserNotFound  = ports.ErrUserNotFound
	ErrGroupNotFound = ports.ErrGroupNotFound
)
