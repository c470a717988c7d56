package portsupervisor

import (
	"sync"
	"time"

	"github.com/kodflow/daemon/internal/application/restart"
	"github.com/kodflow/daemon/internal/domain/localport"
)

// epoch is a monotonically increasing counter bumped on every spawn, used to
// drop exit notifications that arrive after the child they refer to has
// already been superseded. Health callbacks are not tagged with an epoch;
// onHealthChange filters them by the entry's state instead.
type epoch uint64

// entry is the supervisor's private bookkeeping for one service id. All
// mutation goes through the entry's own mutex, giving per-id single-writer
// ordering; the supervisor's own map lock only protects the map shape
// itself (insert/delete), never entry contents.
type entry struct {
	mu sync.Mutex

	id      localport.ServiceId
	def     localport.ServiceDefinition
	running localport.RunningService
	tracker *restart.Tracker
	epoch   epoch

	// exitDone is closed by watchExit once the current epoch's child has
	// exited, letting terminateChild race the grace timeout against the
	// child actually going away instead of always sleeping the full window.
	exitDone chan struct{}

	// restartInFlight coalesces concurrent restart triggers for the same id:
	// a second health-change callback arriving while a restart is already
	// scheduled is a no-op.
	restartInFlight bool

	cancelRestart func()
}

// snapshot returns a copy of the RunningService record under lock.
//
// Returns:
//   - localport.RunningService: the current record.
func (e *entry) snapshot() localport.RunningService {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// setState transitions the entry's state under lock.
//
// Params:
//   - s: the new state.
func (e *entry) setState(s localport.ServiceState) {
	e.mu.Lock()
	e.running.State = s
	e.mu.Unlock()
}

// bumpEpoch increments the epoch and returns the new value, used to tag a
// freshly spawned child so stale exit notifications from its predecessor are
// dropped.
//
// Returns:
//   - epoch: the new epoch value.
func (e *entry) bumpEpoch() epoch {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.epoch++
	return e.epoch
}

// currentEpoch returns the entry's epoch under lock.
//
// Returns:
//   - epoch: the current epoch value.
func (e *entry) currentEpoch() epoch {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.epoch
}

// newExitDone allocates a fresh exit-signal channel for the current epoch's
// child, replacing any previous one.
//
// Returns:
//   - chan struct{}: the channel watchExit will close on exit.
func (e *entry) newExitDone() chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.exitDone = make(chan struct{})
	return e.exitDone
}

// exitSignal returns the current epoch's exit-signal channel, if any.
//
// Returns:
//   - <-chan struct{}: nil if no child has been spawned yet.
func (e *entry) exitSignal() <-chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.exitDone
}

// uptime returns how long the current epoch's child has run.
//
// Returns:
//   - time.Duration: zero if not running.
func (e *entry) uptime() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running.Uptime(time.Now())
}
