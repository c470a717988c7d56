//go:build unix

// Package control provides the executor's view of process-group control,
// backed directly by the kernel's own Unix process-group adapter rather than
// a second copy of the same setpgid/getpgid syscalls: a spawned forwarder
// child is put into its own process group for the identical reason the
// kernel puts the daemon's own lifecycle management there — so a signal can
// reach every descendant at once.
package control

import "github.com/kodflow/daemon/internal/kernel/adapters"

// New returns the process control a spawned forwarder's executor uses to
// place its child into its own process group.
//
// Returns:
//   - ProcessControl: the kernel's Unix process-group adapter.
func New() ProcessControl {
	return adapters.NewProcessControl()
}
