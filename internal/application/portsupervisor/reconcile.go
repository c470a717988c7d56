package portsupervisor

import (
	"reflect"

	"github.com/kodflow/daemon/internal/domain/localport"
)

// ReconcileResult reports what reconcile() did, for logging/diagnostics.
type ReconcileResult struct {
	Started []localport.ServiceId
	Stopped []localport.ServiceId
	Updated []localport.ServiceId
	Errors  map[localport.ServiceId]error
}

// Reconcile compares the desired ServiceDefinitions against the live table
// per §4.1's reconcile() operation. Because ServiceId is derived only from
// identifying fields, an identifying-field change produces a different id:
// the old id is stopped and the new id is started, preserving the rule that
// reconcile never tears down and restarts a service under the same id
// unless identifying fields changed. A definition whose id is unchanged but
// whose non-identifying fields differ is updated in place without
// restarting its child.
//
// Params:
//   - desired: the full desired set for this configuration epoch.
//
// Returns:
//   - ReconcileResult: the ids started, stopped, and updated in place.
func (s *Supervisor) Reconcile(desired []localport.ServiceDefinition) ReconcileResult {
	result := ReconcileResult{Errors: make(map[localport.ServiceId]error)}

	desiredByID := make(map[localport.ServiceId]localport.ServiceDefinition, len(desired))
	for _, def := range desired {
		if !def.Enabled {
			continue
		}
		desiredByID[localport.DeriveServiceId(def)] = def
	}

	s.mu.RLock()
	liveIDs := make(map[localport.ServiceId]localport.ServiceDefinition, len(s.services))
	for id, e := range s.services {
		liveIDs[id] = e.def
	}
	s.mu.RUnlock()

	for id := range liveIDs {
		if _, stillDesired := desiredByID[id]; !stillDesired {
			s.Stop(id)
			result.Stopped = append(result.Stopped, id)
		}
	}

	for id, def := range desiredByID {
		liveDef, isLive := liveIDs[id]
		switch {
		case !isLive:
			if err := s.startOne(id, def); err != nil {
				result.Errors[id] = err
			} else {
				result.Started = append(result.Started, id)
			}
		case !reflect.DeepEqual(liveDef, def):
			s.updateInPlace(id, def)
			result.Updated = append(result.Updated, id)
		}
	}

	return result
}

// updateInPlace applies a non-identifying-field change to a running
// service: it swaps the stored definition and re-registers the health
// monitor with any new probe tuning, without touching the child process.
func (s *Supervisor) updateInPlace(id localport.ServiceId, def localport.ServiceDefinition) {
	s.mu.RLock()
	e, ok := s.services[id]
	s.mu.RUnlock()
	if !ok {
		return
	}
	e.mu.Lock()
	e.def = def
	e.running.Definition = def
	e.mu.Unlock()
	s.registerHealthMonitor(e)
}
