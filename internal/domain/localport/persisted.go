package localport

import "time"

// PersistedEntry is one on-disk record in PersistedState, written
// atomically after every start/stop.
type PersistedEntry struct {
	ServiceID              ServiceId `json:"service_id"`
	PID                    int       `json:"pid"`
	Technology             string    `json:"technology"`
	LocalPort              int       `json:"local_port"`
	StartedAt              time.Time `json:"started_at"`
	CommandArgvFingerprint string    `json:"command_argv_fingerprint"`
}

// PersistedState is the on-disk snapshot of every running id, one entry
// per service, rewritten atomically after every start/stop.
type PersistedState struct {
	Entries []PersistedEntry `json:"entries"`
}

// Find returns the entry for the given id, if present.
//
// Params:
//   - id: the service id to look up.
//
// Returns:
//   - PersistedEntry: the matching entry, zero value if not found.
//   - bool: true if an entry was found.
func (s PersistedState) Find(id ServiceId) (PersistedEntry, bool) {
	for _, e := range s.Entries {
		if e.ServiceID == id {
			return e, true
		}
	}
	return PersistedEntry{}, false
}

// WithEntry returns a copy of the state with the given entry upserted by
// ServiceID.
//
// Params:
//   - entry: the entry to insert or replace.
//
// Returns:
//   - PersistedState: the updated state.
func (s PersistedState) WithEntry(entry PersistedEntry) PersistedState {
	out := make([]PersistedEntry, 0, len(s.Entries)+1)
	replaced := false
	for _, e := range s.Entries {
		if e.ServiceID == entry.ServiceID {
			out = append(out, entry)
			replaced = true
			continue
		}
		out = append(out, e)
	}
	if !replaced {
		out = append(out, entry)
	}
	return PersistedState{Entries: out}
}

// WithoutEntry returns a copy of the state with the given id removed.
//
// Params:
//   - id: the service id to remove.
//
// Returns:
//   - PersistedState: the updated state.
func (s PersistedState) WithoutEntry(id ServiceId) PersistedState {
	out := make([]PersistedEntry, 0, len(s.Entries))
	for _, e := range s.Entries {
		if e.ServiceID != id {
			out = append(out, e)
		}
	}
	return PersistedState{Entries: out}
}
