// Package ports defines the interfaces for OS abstraction.
package ports

import "os"

// SignalManager abstracts OS signal registration and classification so the
// task manager's signal bridge never imports syscall directly.
type SignalManager interface {
	// Notify registers for signal notifications.
	Notify(signals ...os.Signal) chan os.Signal
	// Stop stops signal notifications on the channel.
	Stop(ch chan<- os.Signal)
	// IsTermSignal reports whether sig is a termination signal.
	IsTermSignal(sig os.Signal) bool
	// IsReloadSignal reports whether sig is the reload signal.
	IsReloadSignal(sig os.Signal) bool
}
