package taskmanager

import (
	"os"
	"sync"
	"syscall"

	"github.com/kodflow/daemon/internal/kernel/ports"
)

// Event is what the signal bridge hands to the event loop. It is the only
// thing a signal handler is allowed to produce; no task spawning, I/O, or
// locking happens inside the OS signal delivery path itself.
type Event int

const (
	// EventNone is never sent; zero value guard.
	EventNone Event = iota
	// EventShutdown requests a graceful shutdown (SIGTERM/SIGINT).
	EventShutdown
	// EventShutdownImmediate requests skipping straight to the force phase,
	// sent when a second termination signal arrives mid-shutdown.
	EventShutdownImmediate
	// EventReload requests a configuration reconciliation (SIGHUP).
	EventReload
)

// SignalBridge translates OS signals into Events on a buffered channel. Each
// signal yields one Event: the first termination signal yields
// EventShutdown and every later one EventShutdownImmediate. When the buffer
// is full, the oldest pending Event is dropped to make room.
type SignalBridge struct {
	mgr ports.SignalManager
	ch  chan os.Signal

	events chan Event

	mu           sync.Mutex
	shuttingDown bool
}

// NewSignalBridge creates a bridge and begins listening for SIGTERM,
// SIGINT, and SIGHUP. Call Events to consume translated signals and Stop
// to unregister when the daemon exits.
//
// Params:
//   - mgr: the kernel's signal manager abstraction.
//
// Returns:
//   - *SignalBridge: a listening bridge.
func NewSignalBridge(mgr ports.SignalManager) *SignalBridge {
	b := &SignalBridge{
		mgr:    mgr,
		events: make(chan Event, 4),
	}
	b.ch = mgr.Notify(syscall.SIGTERM, syscall.SIGINT, syscall.SIGHUP)
	go b.pump()
	return b
}

// Events returns the channel of translated signal events.
//
// Returns:
//   - <-chan Event: closed when Stop is called.
func (b *SignalBridge) Events() <-chan Event {
	return b.events
}

// Stop unregisters from OS signal delivery and closes the event channel.
func (b *SignalBridge) Stop() {
	b.mgr.Stop(b.ch)
	close(b.events)
}

// pump is the bridge's only goroutine; it does the minimum possible work
// per signal (classify, coalesce, forward) and never blocks on a full
// events channel for more than one pending event.
func (b *SignalBridge) pump() {
	for sig := range b.ch {
		switch {
		case b.mgr.IsReloadSignal(sig):
			b.send(EventReload)
		case b.mgr.IsTermSignal(sig):
			b.mu.Lock()
			already := b.shuttingDown
			b.shuttingDown = true
			b.mu.Unlock()
			if already {
				b.send(EventShutdownImmediate)
			} else {
				b.send(EventShutdown)
			}
		}
	}
}

// send delivers an event without blocking indefinitely: if the buffer is
// full the oldest pending event is dropped in favor of the new one, since
// only the most urgent outstanding request matters.
func (b *SignalBridge) send(ev Event) {
	select {
	case b.events <- ev:
	default:
		select {
		case <-b.events:
		default:
		}
		select {
		case b.events <- ev:
		default:
		}
	}
}
