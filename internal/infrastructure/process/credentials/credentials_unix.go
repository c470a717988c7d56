//go:build unix

// Package credentials provides the executor's view of credential management,
// backed directly by the kernel's own Unix credential adapter rather than a
// second copy of the same user/group lookup syscalls: the daemon's own
// process already needs exactly this logic for its signal/reaper/process-
// group lifecycle (internal/kernel), and a spawned forwarder child's
// run-as-user/group handling is the same syscall surface, just invoked at a
// different point in the lifecycle.
package credentials

import "github.com/kodflow/daemon/internal/kernel/adapters"

// New creates the credential manager a spawned forwarder's executor uses to
// resolve and apply a configured run-as user/group, identical to the one the
// daemon itself uses for its own process.
//
// Returns:
//   - CredentialManager: the kernel's Unix credential adapter.
func New() CredentialManager {
	return adapters.NewCredentialManager()
}
