package portsupervisor

import (
	"time"

	"github.com/kodflow/daemon/internal/domain/localport"
)

// Stop implements stop() for the given ids: deregister from the health
// monitor, signal the adapter (graceful, then forceful after the grace
// window), update persisted state, and transition to stopped. Idempotent:
// stopping an id not currently tracked is a no-op, matching testable
// property 8.
//
// Params:
//   - ids: the service ids to stop.
func (s *Supervisor) Stop(ids ...localport.ServiceId) {
	for _, id := range ids {
		s.stopOne(id)
	}
}

// StopAll stops every currently tracked service, used by the shutdown
// coordinator's Cancel phase.
func (s *Supervisor) StopAll() {
	s.mu.RLock()
	ids := make([]localport.ServiceId, 0, len(s.services))
	for id := range s.services {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	s.Stop(ids...)
}

// stopOne terminates one service and removes it from the live table.
func (s *Supervisor) stopOne(id localport.ServiceId) {
	s.mu.Lock()
	e, ok := s.services[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	delete(s.services, id)
	s.mu.Unlock()

	e.setState(localport.StateStopping)
	s.monitor.Unregister(id)
	if e.cancelRestart != nil {
		e.cancelRestart()
	}

	pid := e.snapshot().PID
	adapter := s.adapters[e.def.Technology]
	if pid != 0 && adapter != nil {
		s.terminateChild(adapter, pid, e.exitSignal())
	}

	e.setState(localport.StateStopped)
	// The id is no longer in the live table, so persist() alone would leave
	// its entry behind; drop it from the persisted snapshot first.
	if s.persistence != nil {
		if state, err := s.persistence.Load(); err == nil {
			_ = s.persistence.Save(state.WithoutEntry(id))
		}
	}
	s.persist()
}

// terminateChild sends the graceful signal, then races the grace timeout
// against exitDone (closed by watchExit once the child actually exits) so a
// child that exits promptly is never force-killed unnecessarily.
//
// Params:
//   - adapter: the technology adapter to signal.
//   - pid: the child's process id.
//   - exitDone: closed when the child exits; nil is treated as "never".
func (s *Supervisor) terminateChild(adapter localport.Adapter, pid int, exitDone <-chan struct{}) {
	_ = adapter.GracefulStop(pid)
	timer := time.NewTimer(s.graceTimeout)
	defer timer.Stop()
	select {
	case <-exitDone:
		return
	case <-timer.C:
		_ = adapter.ForceStop(pid)
	}
}
