// Package main provides the entry point for the daemon process supervisor.
// daemon is a PID1-capable process supervisor designed to run in containers
// and on Linux/BSD systems. It manages Kubernetes and SSH port-forward
// tunnels with health checks, restart policies, and log rotation.
package main

import (
	"os"

	"github.com/kodflow/daemon/internal/bootstrap"
)

func main() {
	os.Exit(bootstrap.Run())
}
