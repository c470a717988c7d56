// Package portsupervisor implements the Supervisor (Service Manager): the
// central control plane that starts/stops forwards, owns the live service
// table, reconciles desired vs actual configuration, and coordinates
// restarts through the restart tracker and health monitor.
package portsupervisor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kodflow/daemon/internal/application/healthmonitor"
	"github.com/kodflow/daemon/internal/application/restart"
	"github.com/kodflow/daemon/internal/domain/localport"
)

// Defaults carries the configuration-level defaults applied when a
// ServiceDefinition does not override health check or restart policy.
type Defaults struct {
	HealthCheck   localport.HealthCheckSpec
	RestartPolicy localport.RestartPolicy
}

// LogPathFunc resolves the per-service log file path for a given id/name.
type LogPathFunc func(id localport.ServiceId, name string) string

// Supervisor is the control plane described in spec §4.1.
type Supervisor struct {
	adapters    map[localport.Technology]localport.Adapter
	proberFac   localport.ProberFactory
	persistence localport.PersistenceStore
	portCheck   localport.PortOwnershipChecker
	logPath     LogPathFunc
	defaults    Defaults

	graceTimeout time.Duration

	mu       sync.RWMutex
	services map[localport.ServiceId]*entry

	monitor *healthmonitor.Monitor

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Config bundles the Supervisor's constructor dependencies.
type Config struct {
	Adapters      []localport.Adapter
	ProberFactory localport.ProberFactory
	Persistence   localport.PersistenceStore
	PortCheck     localport.PortOwnershipChecker
	LogPath       LogPathFunc
	Defaults      Defaults
	GraceTimeout  time.Duration
}

// defaultGraceTimeout is grace_period_ms's default per spec §4.2.
const defaultGraceTimeout = 5 * time.Second

// New creates a Supervisor with no services registered.
//
// Params:
//   - cfg: the supervisor's dependencies and defaults.
//
// Returns:
//   - *Supervisor: a ready-to-use, not-yet-started supervisor.
func New(cfg Config) *Supervisor {
	grace := cfg.GraceTimeout
	if grace <= 0 {
		grace = defaultGraceTimeout
	}
	s := &Supervisor{
		adapters:     make(map[localport.Technology]localport.Adapter, len(cfg.Adapters)),
		proberFac:    cfg.ProberFactory,
		persistence:  cfg.Persistence,
		portCheck:    cfg.PortCheck,
		logPath:      cfg.LogPath,
		defaults:     cfg.Defaults,
		graceTimeout: grace,
		services:     make(map[localport.ServiceId]*entry),
	}
	for _, a := range cfg.Adapters {
		s.adapters[a.Technology()] = a
	}
	return s
}

// Run wires the background context the health monitor and restart delays
// run under. It must be called once before Start.
//
// Params:
//   - ctx: the supervisor's lifetime context; cancelling it tears down
//     every probe loop and pending restart timer.
func (s *Supervisor) Run(ctx context.Context) {
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.monitor = healthmonitor.NewMonitor(s.onHealthChange)
}

// Shutdown cancels the supervisor's background context and waits for every
// restart timer goroutine to exit. It does not stop running children; the
// shutdown coordinator is responsible for that via Stop/StopAll.
func (s *Supervisor) Shutdown() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.monitor != nil {
		s.monitor.Stop()
	}
	s.wg.Wait()
}

// Start spawns each id's service per §4.1's start() operation. Already
// running ids are reported as ErrAlreadyRunning without changing state
// (testable property 7).
//
// Params:
//   - defs: the definitions to start, keyed by their derived id.
//
// Returns:
//   - map[localport.ServiceId]error: per-id result; nil means success.
func (s *Supervisor) Start(defs []localport.ServiceDefinition) map[localport.ServiceId]error {
	results := make(map[localport.ServiceId]error, len(defs))
	for _, def := range defs {
		id := localport.DeriveServiceId(def)
		results[id] = s.startOne(id, def)
	}
	return results
}

// startOne implements start() for a single definition.
func (s *Supervisor) startOne(id localport.ServiceId, def localport.ServiceDefinition) error {
	s.mu.Lock()
	if _, exists := s.services[id]; exists {
		s.mu.Unlock()
		return localport.ErrAlreadyRunning
	}
	s.mu.Unlock()

	if err := def.Validate(); err != nil {
		return err
	}

	if s.portCheck != nil {
		if pid, err := s.portCheck.OwnerPID(def.LocalPort); err == nil && pid != 0 {
			if _, ownsIt := s.findByPID(pid); !ownsIt {
				return fmt.Errorf("%w: pid %d", localport.ErrPortConflictExternal, pid)
			}
		}
	}

	adapter, ok := s.adapters[def.Technology]
	if !ok {
		return fmt.Errorf("%w: no adapter for technology %q", localport.ErrInvalidDefinition, def.Technology)
	}

	e := &entry{
		id:  id,
		def: def,
		running: localport.RunningService{
			ID:         id,
			Definition: def,
			State:      localport.StateStarting,
			Health:     localport.UnknownHealth(),
			LogPath:    s.resolveLogPath(id, def.Name),
		},
	}
	policy := def.EffectiveRestartPolicy(s.defaults.RestartPolicy)
	e.tracker = restart.NewTracker(policy, policy.InitialDelay, policy.Enabled, 0)

	s.mu.Lock()
	s.services[id] = e
	s.mu.Unlock()

	if err := s.spawn(e); err != nil {
		e.setState(localport.StateFailed)
		return err
	}
	return nil
}

// spawn calls the adapter, records the handle, and registers the service
// with the health monitor. On success the entry transitions to running.
func (s *Supervisor) spawn(e *entry) error {
	adapter := s.adapters[e.def.Technology]
	handle, err := adapter.Spawn(s.ctx, e.def, e.running.LogPath)
	if err != nil {
		return err
	}

	ep := e.bumpEpoch()
	e.mu.Lock()
	e.running.PID = handle.PID
	e.running.EpochStart = time.Now()
	e.running.ArgvFingerprint = handle.ArgvFingerprint
	e.running.State = localport.StateRunning
	e.running.Health = localport.UnknownHealth()
	e.mu.Unlock()

	s.persist()
	s.watchExit(e, ep, handle, e.newExitDone())
	s.registerHealthMonitor(e)
	return nil
}

// watchExit observes the adapter's exit notification for one epoch and
// treats an unexpected exit as an immediate health failure, per §7 ("Child
// exit ... counts toward failure threshold immediately").
func (s *Supervisor) watchExit(e *entry, ep epoch, handle localport.Handle, exitDone chan struct{}) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		select {
		case <-handle.Exit:
			close(exitDone)
			if e.currentEpoch() != ep {
				return // superseded by a later spawn; stale notice.
			}
			if e.snapshot().State == localport.StateStopping || e.snapshot().State == localport.StateStopped {
				return // expected exit from our own stop path.
			}
			s.onHealthChange(e.id, localport.HealthStatus{Value: localport.HealthUnhealthy, LastChecked: time.Now(), Diagnostic: "child exited unexpectedly"})
		case <-s.ctx.Done():
			return
		}
	}()
}

// registerHealthMonitor (re)registers id's probe loop using its effective
// health check spec.
func (s *Supervisor) registerHealthMonitor(e *entry) {
	spec := e.def.EffectiveHealthCheck(s.defaults.HealthCheck)
	prober, err := s.proberFac.Create(spec.Kind)
	if err != nil {
		return
	}
	target := localport.Target{ServiceName: e.def.Name, LocalPort: e.def.LocalPort}
	if e.def.Kubernetes != nil {
		target.ClusterContext = e.def.Kubernetes.Context
	}
	s.monitor.Register(s.ctx, e.id, target, spec, prober)
}

// findByPID reports whether pid belongs to one of our own tracked services.
func (s *Supervisor) findByPID(pid int) (localport.ServiceId, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id, e := range s.services {
		if e.snapshot().PID == pid {
			return id, true
		}
	}
	return localport.ServiceId{}, false
}

// resolveLogPath delegates to the configured LogPathFunc, if any.
func (s *Supervisor) resolveLogPath(id localport.ServiceId, name string) string {
	if s.logPath == nil {
		return ""
	}
	return s.logPath(id, name)
}

// persist rewrites PersistedState from the current live table. Errors are
// swallowed here (matching §7's "never let a single service's failure
// degrade others"); a persistence failure does not block lifecycle
// transitions and is not reported to the caller.
func (s *Supervisor) persist() {
	if s.persistence == nil {
		return
	}
	state, err := s.persistence.Load()
	if err != nil {
		state = localport.PersistedState{}
	}
	s.mu.RLock()
	for id, e := range s.services {
		r := e.snapshot()
		if !r.State.HasLiveChild() && r.State != localport.StateStarting {
			state = state.WithoutEntry(id)
			continue
		}
		state = state.WithEntry(localport.PersistedEntry{
			ServiceID:              id,
			PID:                    r.PID,
			Technology:             string(e.def.Technology),
			LocalPort:              e.def.LocalPort,
			StartedAt:              r.EpochStart,
			CommandArgvFingerprint: r.ArgvFingerprint,
		})
	}
	s.mu.RUnlock()
	_ = s.persistence.Save(state)
}

// Status returns a snapshot of every tracked RunningService, or of the
// subset named in ids when ids is non-empty. It is a pure read.
//
// Params:
//   - ids: optional filter; empty means all services.
//
// Returns:
//   - []localport.RunningService: the matching snapshots.
func (s *Supervisor) Status(ids ...localport.ServiceId) []localport.RunningService {
	s.mu.RLock()
	defer s.mu.RUnlock()

	want := make(map[localport.ServiceId]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	out := make([]localport.RunningService, 0, len(s.services))
	for id, e := range s.services {
		if len(ids) > 0 && !want[id] {
			continue
		}
		out = append(out, e.snapshot())
	}
	return out
}

// SetDefaults replaces the defaults applied to services that do not
// override their health check or restart policy, for reload()'s benefit:
// a configuration reload can change `defaults:` without touching any
// individual service definition.
//
// Params:
//   - d: the new defaults.
func (s *Supervisor) SetDefaults(d Defaults) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaults = d
}
