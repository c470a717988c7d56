package portsupervisor

import (
	"github.com/kodflow/daemon/internal/application/restart"
	"github.com/kodflow/daemon/internal/domain/localport"
)

// OrphanProcess is a persisted entry whose id is no longer present in the
// current configuration: it is ours, but we are not going to manage it
// going forward. It is offered for cleanup, never silently adopted.
type OrphanProcess struct {
	Entry localport.PersistedEntry
}

// Adopt performs startup reconciliation per §4.8: for every persisted
// entry, check the PID is still alive and its argv fingerprint matches
// what the given configuration would produce for that id. On match,
// adopt it directly into the live table without respawning. On mismatch
// or a dead PID, the entry is discarded. Entries whose id has no match
// in desired at all are reported as orphans for cleanup, never adopted.
//
// Params:
//   - desired: the current configuration's service definitions.
//
// Returns:
//   - []OrphanProcess: persisted entries no longer in configuration.
func (s *Supervisor) Adopt(desired []localport.ServiceDefinition) []OrphanProcess {
	if s.persistence == nil {
		return nil
	}
	state, err := s.persistence.Load()
	if err != nil {
		return nil
	}

	desiredByID := make(map[localport.ServiceId]localport.ServiceDefinition, len(desired))
	for _, def := range desired {
		if def.Enabled {
			desiredByID[localport.DeriveServiceId(def)] = def
		}
	}

	var orphans []OrphanProcess
	kept := localport.PersistedState{}
	for _, pe := range state.Entries {
		def, stillDesired := desiredByID[pe.ServiceID]
		if !stillDesired {
			orphans = append(orphans, OrphanProcess{Entry: pe})
			continue
		}
		if s.portCheck == nil || !s.portCheck.ProcessExists(pe.PID) {
			continue // dead PID: discard.
		}
		if !s.adapterWouldProduce(def, pe) {
			continue // argv fingerprint mismatch: a reused PID, refuse adoption.
		}
		s.adoptOne(pe.ServiceID, def, pe)
		kept = kept.WithEntry(pe)
	}
	_ = s.persistence.Save(kept)

	return orphans
}

// adapterWouldProduce reports whether def's adapter would spawn the same
// argv (by fingerprint) that produced pe, without actually spawning
// anything. Adapters that cannot answer this cheaply are treated as a
// mismatch, erring toward not adopting a stranger.
func (s *Supervisor) adapterWouldProduce(def localport.ServiceDefinition, pe localport.PersistedEntry) bool {
	fp, ok := s.adapters[def.Technology].(interface {
		ExpectedFingerprint(localport.ServiceDefinition) string
	})
	if !ok {
		return false
	}
	return fp.ExpectedFingerprint(def) == pe.CommandArgvFingerprint
}

// adoptOne inserts a persisted-and-verified entry into the live table
// without spawning, and registers its health monitor.
func (s *Supervisor) adoptOne(id localport.ServiceId, def localport.ServiceDefinition, pe localport.PersistedEntry) {
	e := &entry{
		id:  id,
		def: def,
		running: localport.RunningService{
			ID:              id,
			Definition:      def,
			PID:             pe.PID,
			EpochStart:      pe.StartedAt,
			State:           localport.StateRunning,
			Health:          localport.UnknownHealth(),
			LogPath:         s.resolveLogPath(id, def.Name),
			ArgvFingerprint: pe.CommandArgvFingerprint,
		},
	}
	policy := def.EffectiveRestartPolicy(s.defaults.RestartPolicy)
	e.tracker = restart.NewTracker(policy, policy.InitialDelay, policy.Enabled, 0)

	s.mu.Lock()
	s.services[id] = e
	s.mu.Unlock()

	s.registerHealthMonitor(e)
}
