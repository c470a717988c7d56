// Package shutdown implements the four-phase shutdown state machine:
// Quiesce, Drain, Cancel, Force. Each phase has its own deadline; an
// emergency escalation (a second terminate signal, or two exceeded phase
// deadlines) jumps straight to the Force phase.
package shutdown

import (
	"context"
	"time"
)

// Phase identifies one of the four shutdown phases.
type Phase int

const (
	// PhaseQuiesce refuses new start requests and marks the daemon draining.
	PhaseQuiesce Phase = iota
	// PhaseDrain awaits in-flight probes and reconciliation naturally.
	PhaseDrain
	// PhaseCancel cancels cooperative tasks and graceful-stops children.
	PhaseCancel
	// PhaseForce force-kills survivors and persists final state.
	PhaseForce
)

// String names the phase, used in logs.
func (p Phase) String() string {
	switch p {
	case PhaseQuiesce:
		return "quiesce"
	case PhaseDrain:
		return "drain"
	case PhaseCancel:
		return "cancel"
	case PhaseForce:
		return "force"
	default:
		return "unknown"
	}
}

// defaultDeadlines are the four phases' default budgets, per the shutdown
// coordinator's spec table.
var defaultDeadlines = [4]time.Duration{
	PhaseQuiesce: 2 * time.Second,
	PhaseDrain:   8 * time.Second,
	PhaseCancel:  15 * time.Second,
	PhaseForce:   5 * time.Second,
}

// Hooks are the coordinator's side effects, one per phase, injected so the
// coordinator itself stays free of daemon-specific wiring.
type Hooks struct {
	// Quiesce marks the daemon draining and refuses new start requests.
	Quiesce func(ctx context.Context) error
	// Drain waits for in-flight probes/reconciliation to finish naturally.
	Drain func(ctx context.Context) error
	// Cancel cancels cooperative tasks and graceful-stops every child.
	Cancel func(ctx context.Context) error
	// Force force-kills survivors, flushes logs, and persists final state.
	Force func(ctx context.Context) error
}

// Coordinator runs the four phases in order, escalating to Force early on
// emergency.
type Coordinator struct {
	hooks     Hooks
	deadlines [4]time.Duration
	exceeded  int
}

// New creates a shutdown coordinator with the default phase deadlines.
//
// Params:
//   - hooks: the phase implementations.
//
// Returns:
//   - *Coordinator: a coordinator ready to Run.
func New(hooks Hooks) *Coordinator {
	return &Coordinator{hooks: hooks, deadlines: defaultDeadlines}
}

// WithDeadline overrides one phase's deadline, for tests.
//
// Params:
//   - phase: which phase to override.
//   - d: the new deadline.
//
// Returns:
//   - *Coordinator: the same coordinator, for chaining.
func (c *Coordinator) WithDeadline(phase Phase, d time.Duration) *Coordinator {
	c.deadlines[phase] = d
	return c
}

// Run executes Quiesce, Drain, Cancel, Force in order. If emergency fires
// (via the emergency channel closing or emitting) partway through, the
// coordinator jumps straight to Force. Two phase-deadline timeouts across
// the run also force that jump, per the spec's escalation rule.
//
// Params:
//   - ctx: the overall shutdown context; its cancellation does not bypass
//     Force (Force always runs to completion to avoid leaking children).
//   - emergency: receives a value when a second terminate signal arrives;
//     nil means no emergency channel is wired.
//
// Returns:
//   - Phase: the last phase actually reached.
func (c *Coordinator) Run(ctx context.Context, emergency <-chan struct{}) Phase {
	phases := []struct {
		phase Phase
		fn    func(context.Context) error
	}{
		{PhaseQuiesce, c.hooks.Quiesce},
		{PhaseDrain, c.hooks.Drain},
		{PhaseCancel, c.hooks.Cancel},
	}

	for _, p := range phases {
		if p.fn == nil {
			continue
		}
		if c.runPhase(ctx, p.phase, p.fn, emergency) {
			break // emergency escalation or double-timeout: skip to Force.
		}
	}

	if c.hooks.Force != nil {
		forceCtx, cancel := context.WithTimeout(context.Background(), c.deadlines[PhaseForce])
		defer cancel()
		_ = c.hooks.Force(forceCtx)
	}
	return PhaseForce
}

// runPhase runs one phase's hook under its deadline, racing an emergency
// signal. It returns true when the caller should escalate straight to
// Force instead of proceeding to the next phase.
func (c *Coordinator) runPhase(ctx context.Context, phase Phase, fn func(context.Context) error, emergency <-chan struct{}) bool {
	phaseCtx, cancel := context.WithTimeout(ctx, c.deadlines[phase])
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = fn(phaseCtx)
	}()

	select {
	case <-emergency:
		return true
	case <-done:
		return false
	case <-phaseCtx.Done():
		c.exceeded++
		return c.exceeded >= 2
	}
}
