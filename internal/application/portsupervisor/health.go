package portsupervisor

import (
	"context"
	"time"

	"github.com/kodflow/daemon/internal/domain/localport"
)

// onHealthChange is the Health Monitor's callback into the supervisor, per
// §4.1's on_health_change(id, status). It is registered with the monitor in
// Run(). The backoff wait before a respawn runs in a goroutine, but the
// unhealthy child is terminated inline, so the callback can block for up to
// the grace timeout.
//
// Params:
//   - id: the service whose health just crossed a threshold.
//   - status: the new health status.
func (s *Supervisor) onHealthChange(id localport.ServiceId, status localport.HealthStatus) {
	s.mu.RLock()
	e, ok := s.services[id]
	s.mu.RUnlock()
	if !ok {
		return
	}

	state := e.snapshot().State
	if state == localport.StateRestarting || state == localport.StateStopping || state == localport.StateStopped {
		// A late probe result for a child already being torn down or
		// replaced; the epoch it refers to is no longer live.
		return
	}

	e.mu.Lock()
	e.running.Health = status
	e.mu.Unlock()

	if status.Value == localport.HealthHealthy {
		e.mu.Lock()
		e.running.ConsecutiveFailures = 0
		if e.running.State == localport.StateUnhealthy {
			e.running.State = localport.StateRunning
		}
		e.mu.Unlock()
		return
	}

	e.mu.Lock()
	e.running.ConsecutiveFailures++
	e.running.State = localport.StateUnhealthy
	e.mu.Unlock()

	s.triggerRestart(e)
}

// triggerRestart coalesces concurrent restart triggers for one id: if a
// restart is already in flight for this entry, the call is a no-op.
func (s *Supervisor) triggerRestart(e *entry) {
	e.mu.Lock()
	if e.restartInFlight {
		e.mu.Unlock()
		return
	}
	e.restartInFlight = true
	e.mu.Unlock()

	// Reset the backoff counter if the dying epoch ran stably for the
	// configured window, before the epoch being measured is replaced by a
	// respawn. Mirrors the teacher's handleProcessExit, which measures
	// uptime immediately on exit, before any restart is scheduled.
	e.tracker.MaybeReset(e.uptime())

	decision := e.tracker.ShouldRestart()
	if !decision.Restart {
		e.setState(localport.StateFailed)
		e.mu.Lock()
		e.restartInFlight = false
		e.mu.Unlock()
		s.persist()
		return
	}

	e.setState(localport.StateRestarting)
	e.mu.Lock()
	e.running.RestartAttempt = e.tracker.Attempts() + 1
	e.running.NextRetryAt = time.Now().Add(decision.Delay)
	e.mu.Unlock()
	e.tracker.RecordAttempt()
	s.persist()

	pid := e.snapshot().PID
	adapter := s.adapters[e.def.Technology]
	if pid != 0 && adapter != nil {
		s.terminateChild(adapter, pid, e.exitSignal())
	}

	s.scheduleRespawn(e, decision.Delay)
}

// scheduleRespawn waits out the backoff delay on an interruptible timer,
// then respawns the child. The wait is cancellable via ctx so shutdown
// never blocks on a pending restart.
func (s *Supervisor) scheduleRespawn(e *entry, delay time.Duration) {
	ctx, cancel := context.WithCancel(s.ctx)
	e.mu.Lock()
	e.cancelRestart = cancel
	e.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()

		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		e.mu.Lock()
		e.restartInFlight = false
		e.mu.Unlock()

		if err := s.spawn(e); err != nil {
			e.setState(localport.StateFailed)
			s.persist()
			return
		}
	}()
}
