package localport

import "errors"

// Sentinel errors for service lifecycle operations.
var (
	// ErrAlreadyRunning is returned by start when the id is already running.
	ErrAlreadyRunning = errors.New("localport: service already running")
	// ErrNotRunning reports that an id is not running. Supervisor.Stop does
	// not return it: stopping an id that is not tracked is a no-op.
	ErrNotRunning = errors.New("localport: service not running")
	// ErrServiceNotFound is returned when an id has no known definition.
	ErrServiceNotFound = errors.New("localport: service not found")
	// ErrToolMissing is returned when the adapter's forwarder binary is not on PATH.
	ErrToolMissing = errors.New("localport: forwarder binary not found on PATH")
	// ErrPortConflictExternal is returned when a configured local port is held
	// by a process outside our persisted state.
	ErrPortConflictExternal = errors.New("localport: local port held by an external process")
	// ErrPortConflictOrphan is returned when a configured local port is held by
	// a PID from a prior persisted state entry that is no longer configured.
	ErrPortConflictOrphan = errors.New("localport: local port held by an orphaned process")
	// ErrInvalidDefinition is returned when a ServiceDefinition fails validation.
	ErrInvalidDefinition = errors.New("localport: invalid service definition")
	// ErrUnknownProbeKind is returned by a ProberFactory for an unregistered kind.
	ErrUnknownProbeKind = errors.New("localport: unknown probe kind")
)
