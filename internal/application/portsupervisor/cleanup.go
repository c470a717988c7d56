package portsupervisor

import (
	"fmt"

	"github.com/kodflow/daemon/internal/domain/localport"
)

// Cleanup implements the control surface's supplemented cleanup(ids)
// operation (see §4.8/startup reconciliation): force-stops the named
// orphaned PIDs (persisted entries no longer present in configuration,
// previously surfaced by Adopt) and removes them from persisted state.
// Cleanup never touches a live, managed service; ids must name entries
// still present in the persisted-but-orphaned set, not the live table.
//
// Params:
//   - orphans: the orphan set to clean, as returned by Adopt.
//   - ids: which orphans to act on, by ServiceID.
//
// Returns:
//   - map[localport.ServiceId]error: per-id result; nil means cleaned.
func (s *Supervisor) Cleanup(orphans []OrphanProcess, ids []localport.ServiceId) map[localport.ServiceId]error {
	want := make(map[localport.ServiceId]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	results := make(map[localport.ServiceId]error, len(ids))
	state, err := s.loadPersistedOrEmpty()
	for _, o := range orphans {
		if !want[o.Entry.ServiceID] {
			continue
		}
		results[o.Entry.ServiceID] = s.cleanupOne(o, &state)
	}
	if s.persistence != nil {
		_ = s.persistence.Save(state)
	}
	_ = err
	for id := range want {
		if _, handled := results[id]; !handled {
			results[id] = fmt.Errorf("%w: not an orphaned entry", localport.ErrInvalidDefinition)
		}
	}
	return results
}

func (s *Supervisor) loadPersistedOrEmpty() (localport.PersistedState, error) {
	if s.persistence == nil {
		return localport.PersistedState{}, nil
	}
	state, err := s.persistence.Load()
	if err != nil {
		return localport.PersistedState{}, err
	}
	return state, nil
}

func (s *Supervisor) cleanupOne(o OrphanProcess, state *localport.PersistedState) error {
	adapter, ok := s.adapters[localport.Technology(o.Entry.Technology)]
	if !ok {
		*state = state.WithoutEntry(o.Entry.ServiceID)
		return fmt.Errorf("%w: no adapter for technology %q", localport.ErrInvalidDefinition, o.Entry.Technology)
	}
	err := adapter.ForceStop(o.Entry.PID)
	*state = state.WithoutEntry(o.Entry.ServiceID)
	return err
}
