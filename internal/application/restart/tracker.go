// Package restart implements the stateless-policy-plus-per-service-counter
// restart manager: it decides whether a service should be respawned and for
// how long to wait, without itself performing the respawn.
package restart

import "time"

// Decision is the outcome of a should-restart evaluation.
type Decision struct {
	// Restart is true if a respawn should be scheduled.
	Restart bool
	// Delay is how long to wait before respawning, valid only if Restart.
	Delay time.Duration
}

// policy is the subset of localport.RestartPolicy the tracker needs,
// expressed locally to avoid an import cycle between domain and
// application packages that both reference restart semantics.
type policy interface {
	DelayForAttempt(attempt int) time.Duration
	Exhausted(attempts int) bool
}

// Tracker implements per-service exponential backoff with attempt counting
// and a give-up policy, per the restart manager's spec.
type Tracker struct {
	policy          policy
	enabled         bool
	stabilityWindow time.Duration
	attempts        int
}

// defaultStabilityWindowMultiple is how many multiples of the initial delay
// a service must run continuously before its attempt counter resets, when
// the caller does not supply an explicit stability window.
const defaultStabilityWindowMultiple = 10

// NewTracker creates a restart tracker for one service.
//
// Params:
//   - p: the effective restart policy for this service.
//   - initialDelay: the policy's initial delay, used to derive the default
//     stability window (10x initial delay) when stabilityWindow is zero.
//   - enabled: whether restarts are enabled at all for this service.
//   - stabilityWindow: explicit override for the stability window; zero
//     means derive the default from initialDelay.
//
// Returns:
//   - *Tracker: a new tracker with a zero attempt count.
func NewTracker(p policy, initialDelay time.Duration, enabled bool, stabilityWindow time.Duration) *Tracker {
	window := stabilityWindow
	if window <= 0 {
		window = initialDelay * defaultStabilityWindowMultiple
	}
	return &Tracker{policy: p, enabled: enabled, stabilityWindow: window}
}

// ShouldRestart evaluates whether the next restart attempt should proceed.
//
// Returns:
//   - Decision: Restart=false when restarts are disabled or attempts are
//     exhausted; otherwise Restart=true with the backoff delay for the next
//     attempt number.
func (t *Tracker) ShouldRestart() Decision {
	if !t.enabled {
		return Decision{Restart: false}
	}
	if t.policy.Exhausted(t.attempts) {
		return Decision{Restart: false}
	}
	next := t.attempts + 1
	return Decision{Restart: true, Delay: t.policy.DelayForAttempt(next)}
}

// RecordAttempt increments the attempt counter. Call this once a restart has
// actually been scheduled, after ShouldRestart returned Restart=true.
func (t *Tracker) RecordAttempt() {
	t.attempts++
}

// MaybeReset resets the attempt counter to zero once the service has been
// running continuously for at least the stability window.
//
// Params:
//   - uptime: how long the current epoch's child has been running.
func (t *Tracker) MaybeReset(uptime time.Duration) {
	if uptime >= t.stabilityWindow {
		t.attempts = 0
	}
}

// Attempts returns the current attempt count.
//
// Returns:
//   - int: the number of restart attempts recorded since the last reset.
func (t *Tracker) Attempts() int {
	return t.attempts
}
