// Package ports defines the interfaces for OS abstraction.
package ports

import "os/exec"

// ProcessControl abstracts process group management.
type ProcessControl interface {
	// SetProcessGroup configures a command to run in its own process group.
	SetProcessGroup(cmd *exec.Cmd)
	// GetProcessGroup returns the process group ID for a process.
	GetProcessGroup(pid int) (int, error)
}
