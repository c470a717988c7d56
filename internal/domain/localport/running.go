package localport

import "time"

// RunningService is the live record for an id that is currently supposed
// to be up. It is created when the supervisor successfully spawns a
// child, mutated by the supervisor (state, counters) and the health
// monitor (health, counters), and destroyed when the service is stopped
// or removed from configuration.
type RunningService struct {
	// ID is the deterministic service id.
	ID ServiceId
	// Definition is the configuration this instance was spawned from.
	Definition ServiceDefinition
	// PID is the current child process id.
	PID int
	// EpochStart is when the current child was spawned.
	EpochStart time.Time
	// State is the current lifecycle state.
	State ServiceState
	// Health is the last-observed health status.
	Health HealthStatus
	// ConsecutiveFailures counts unbroken probe failures since the last success.
	ConsecutiveFailures int
	// ConsecutiveSuccesses counts unbroken probe successes since the last failure.
	ConsecutiveSuccesses int
	// RestartAttempt is the current restart attempt number (0 before any restart).
	RestartAttempt int
	// NextRetryAt is when the next restart attempt is scheduled, if any.
	NextRetryAt time.Time
	// LogPath is the path to this service's rotating log file.
	LogPath string
	// ArgvFingerprint is a stable hash over the spawn argv, excluding secrets.
	ArgvFingerprint string
}

// Uptime returns how long the current epoch's child has been running, as
// of the given reference time.
//
// Params:
//   - now: the reference time.
//
// Returns:
//   - time.Duration: zero if EpochStart is zero, else now minus EpochStart.
func (r RunningService) Uptime(now time.Time) time.Duration {
	if r.EpochStart.IsZero() {
		return 0
	}
	return now.Sub(r.EpochStart)
}
