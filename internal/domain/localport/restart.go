package localport

import (
	"math"
	"time"
)

// RestartPolicy governs whether and how long to wait before respawning a
// service's child process after it degrades.
//
// Invariant: the delay at attempt n is min(initial_delay * multiplier^(n-1), max_delay).
// MaxAttempts == 0 means unbounded retries.
type RestartPolicy struct {
	// Enabled controls whether restarts happen at all.
	Enabled bool
	// MaxAttempts caps the number of restart attempts. Zero means unbounded.
	MaxAttempts int
	// InitialDelay is the delay before the first restart attempt.
	InitialDelay time.Duration
	// MaxDelay caps the computed backoff delay.
	MaxDelay time.Duration
	// BackoffMultiplier scales the delay on each subsequent attempt, >= 1.0.
	BackoffMultiplier float64
}

// DefaultRestartPolicy returns the baseline restart policy applied when
// configuration supplies no defaults of its own.
//
// Returns:
//   - RestartPolicy: enabled, unbounded attempts, 1s initial delay, 60s cap,
//     doubling backoff.
func DefaultRestartPolicy() RestartPolicy {
	return RestartPolicy{
		Enabled:           true,
		MaxAttempts:       0,
		InitialDelay:      time.Second,
		MaxDelay:          60 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// DelayForAttempt computes the restart delay for the given 1-based attempt
// number, per the policy's backoff formula.
//
// Params:
//   - attempt: the 1-based restart attempt number.
//
// Returns:
//   - time.Duration: the delay to wait before this attempt, capped at MaxDelay.
func (p RestartPolicy) DelayForAttempt(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	mult := p.BackoffMultiplier
	if mult < 1.0 {
		mult = 1.0
	}
	raw := float64(p.InitialDelay) * math.Pow(mult, float64(attempt-1))
	if raw > float64(p.MaxDelay) || math.IsInf(raw, 1) {
		return p.MaxDelay
	}
	return time.Duration(raw)
}

// Exhausted reports whether the given attempt count has reached MaxAttempts.
// A MaxAttempts of zero is never exhausted.
//
// Params:
//   - attempts: the number of restart attempts made so far.
//
// Returns:
//   - bool: true if attempts has reached the configured cap.
func (p RestartPolicy) Exhausted(attempts int) bool {
	if p.MaxAttempts == 0 {
		return false
	}
	return attempts >= p.MaxAttempts
}
