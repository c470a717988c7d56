// Package controlapi implements the control surface described in spec §6:
// the operation set a CLI frontend (out of scope here) drives the daemon
// through. It is transport-agnostic; internal/infrastructure/transport/httpapi
// exposes it as JSON over a Unix domain socket.
package controlapi

import (
	"fmt"

	"github.com/kodflow/daemon/internal/application/portsupervisor"
	"github.com/kodflow/daemon/internal/domain/localport"
)

// Selector picks which services an operation applies to, per spec §6's
// `ids|tags|all` argument shape. A service matches if its name or derived
// id string is in IDs, or if any of its tags is in Tags, or if All is set.
type Selector struct {
	IDs  []string
	Tags []string
	All  bool
}

// Resolve returns the definitions in desired that this selector matches.
//
// Params:
//   - desired: the current configuration's service definitions.
//
// Returns:
//   - []localport.ServiceDefinition: the matching subset, in desired's order.
func (sel Selector) Resolve(desired []localport.ServiceDefinition) []localport.ServiceDefinition {
	if sel.All {
		return desired
	}

	ids := make(map[string]struct{}, len(sel.IDs))
	for _, id := range sel.IDs {
		ids[id] = struct{}{}
	}
	tags := make(map[string]struct{}, len(sel.Tags))
	for _, t := range sel.Tags {
		tags[t] = struct{}{}
	}

	var matched []localport.ServiceDefinition
	for _, def := range desired {
		if _, ok := ids[def.Name]; ok {
			matched = append(matched, def)
			continue
		}
		if _, ok := ids[localport.DeriveServiceId(def).String()]; ok {
			matched = append(matched, def)
			continue
		}
		for _, t := range def.Tags {
			if _, ok := tags[t]; ok {
				matched = append(matched, def)
				break
			}
		}
	}
	return matched
}

// OperationResult reports one service's outcome within a bulk operation,
// per spec §6's "every operation returns a structured result with
// per-service success/failure".
type OperationResult struct {
	ServiceID string `json:"service_id"`
	Name      string `json:"name"`
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
}

// ReloadResult reports what a reload() call changed.
type ReloadResult struct {
	Started []string `json:"started"`
	Stopped []string `json:"stopped"`
	Updated []string `json:"updated"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// DesiredFunc returns the currently loaded configuration, re-read on reload.
type DesiredFunc func() []localport.ServiceDefinition

// ReloadFunc re-reads configuration from disk, reconciles, and returns the
// new desired set alongside the reconciliation result.
type ReloadFunc func() ([]localport.ServiceDefinition, portsupervisor.ReconcileResult, error)

// OrphansFunc returns the orphaned-but-offered PIDs found during startup
// reconciliation (§4.8) that have not yet been cleaned up.
type OrphansFunc func() []portsupervisor.OrphanProcess

// CleanupFunc force-stops the named orphans and forgets them.
type CleanupFunc func(ids []localport.ServiceId) map[localport.ServiceId]error

// API is the control surface's implementation, wired to a running
// Supervisor and the daemon's reload/shutdown hooks.
type API struct {
	Supervisor *portsupervisor.Supervisor
	Desired    DesiredFunc
	ReloadFn   ReloadFunc
	// Shutdown requests the daemon's own multi-phase shutdown; it returns
	// immediately, the shutdown itself runs asynchronously.
	Shutdown func()
	// OrphansFn returns the PIDs offered for cleanup(ids), never auto-adopted.
	OrphansFn OrphansFunc
	// CleanupFn force-stops named orphans and forgets them.
	CleanupFn CleanupFunc
	// LogPath resolves a service's log file path by id and name.
	LogPath portsupervisor.LogPathFunc
}

// Start implements start(ids|tags|all): spawns every matched service not
// already running.
//
// Params:
//   - sel: which services to start.
//
// Returns:
//   - []OperationResult: per-service outcome, one entry per matched service.
func (a *API) Start(sel Selector) []OperationResult {
	defs := sel.Resolve(a.Desired())
	errs := a.Supervisor.Start(defs)
	return toResults(defs, errs)
}

// Stop implements stop(ids|tags|all): gracefully stops every matched
// running service. Idempotent; a service already stopped is reported ok.
//
// Params:
//   - sel: which services to stop.
//
// Returns:
//   - []OperationResult: per-service outcome.
func (a *API) Stop(sel Selector) []OperationResult {
	defs := sel.Resolve(a.Desired())
	ids := make([]localport.ServiceId, 0, len(defs))
	for _, def := range defs {
		ids = append(ids, localport.DeriveServiceId(def))
	}
	a.Supervisor.Stop(ids...)
	results := make([]OperationResult, 0, len(defs))
	for i, def := range defs {
		results = append(results, OperationResult{
			ServiceID: ids[i].String(),
			Name:      def.Name,
			OK:        true,
		})
	}
	return results
}

// Status implements status(ids?): a pure-read snapshot of matched (or all,
// when the selector is empty) RunningService records.
//
// Params:
//   - sel: which services to report; an empty selector reports all.
//
// Returns:
//   - []localport.RunningService: the matched snapshot.
func (a *API) Status(sel Selector) []localport.RunningService {
	if sel.All || (len(sel.IDs) == 0 && len(sel.Tags) == 0) {
		return a.Supervisor.Status()
	}
	defs := sel.Resolve(a.Desired())
	ids := make([]localport.ServiceId, 0, len(defs))
	for _, def := range defs {
		ids = append(ids, localport.DeriveServiceId(def))
	}
	return a.Supervisor.Status(ids...)
}

// Reload implements reload(): re-reads configuration and reconciles.
//
// Returns:
//   - ReloadResult: what changed.
//   - error: a configuration load error, if any; reconciliation itself
//     never fails as a whole (per-service errors ride in ReloadResult.Errors).
func (a *API) Reload() (ReloadResult, error) {
	_, result, err := a.ReloadFn()
	if err != nil {
		return ReloadResult{}, err
	}
	out := ReloadResult{
		Started: idStrings(result.Started),
		Stopped: idStrings(result.Stopped),
		Updated: idStrings(result.Updated),
	}
	if len(result.Errors) > 0 {
		out.Errors = make(map[string]string, len(result.Errors))
		for id, e := range result.Errors {
			out.Errors[id.String()] = e.Error()
		}
	}
	return out, nil
}

// DaemonStop implements daemon_stop(): requests the daemon's own
// multi-phase shutdown.
func (a *API) DaemonStop() {
	a.Shutdown()
}

// OrphanInfo describes one orphaned-but-offered PID for the cleanup(ids)
// operation's listing, without exposing the supervisor's internal entry type.
type OrphanInfo struct {
	ServiceID  string `json:"service_id"`
	PID        int    `json:"pid"`
	Technology string `json:"technology"`
}

// Orphans implements the read side of the supplemented cleanup(ids)
// operation (§4.8): lists persisted PIDs no longer present in configuration,
// offered to a CLI frontend for an explicit cleanup decision.
//
// Returns:
//   - []OrphanInfo: the current orphan set.
func (a *API) Orphans() []OrphanInfo {
	var orphans []portsupervisor.OrphanProcess
	if a.OrphansFn != nil {
		orphans = a.OrphansFn()
	}
	out := make([]OrphanInfo, len(orphans))
	for i, o := range orphans {
		out[i] = OrphanInfo{ServiceID: o.Entry.ServiceID.String(), PID: o.Entry.PID, Technology: o.Entry.Technology}
	}
	return out
}

// Cleanup implements cleanup(ids): force-stops the named orphaned PIDs and
// forgets them, without ever auto-adopting them into the live table. ids
// name ServiceIDs, matched against the current orphan set only; a live,
// managed service's id is rejected.
//
// Params:
//   - ids: the orphan ServiceIDs (uuid string form) to act on.
//
// Returns:
//   - []OperationResult: per-id outcome.
func (a *API) Cleanup(ids []string) []OperationResult {
	want := make([]localport.ServiceId, 0, len(ids))
	byString := make(map[string]string, len(ids))
	for _, s := range ids {
		id, err := localport.ParseServiceId(s)
		if err != nil {
			byString[s] = err.Error()
			continue
		}
		want = append(want, id)
	}

	errs := a.CleanupFn(want)
	results := make([]OperationResult, 0, len(ids))
	for s, errMsg := range byString {
		results = append(results, OperationResult{ServiceID: s, OK: false, Error: errMsg})
	}
	for _, id := range want {
		r := OperationResult{ServiceID: id.String(), OK: true}
		if err := errs[id]; err != nil {
			r.OK = false
			r.Error = err.Error()
		}
		results = append(results, r)
	}
	return results
}

// Logs implements logs(service) -> path: resolves the log file path for a
// named service. Streaming is left to the caller (tail -f semantics),
// since the control surface only needs to hand back the path.
//
// Params:
//   - name: the service's configured name.
//
// Returns:
//   - string: the log file path.
//   - error: errNotFound if no desired service has that name.
func (a *API) Logs(name string) (string, error) {
	for _, def := range a.Desired() {
		if def.Name == name {
			return a.LogPath(localport.DeriveServiceId(def), def.Name), nil
		}
	}
	return "", fmt.Errorf("service %q: %w", name, errNotFound)
}

func toResults(defs []localport.ServiceDefinition, errs map[localport.ServiceId]error) []OperationResult {
	results := make([]OperationResult, 0, len(defs))
	for _, def := range defs {
		id := localport.DeriveServiceId(def)
		r := OperationResult{ServiceID: id.String(), Name: def.Name, OK: true}
		if err := errs[id]; err != nil {
			r.OK = false
			r.Error = err.Error()
		}
		results = append(results, r)
	}
	return results
}

func idStrings(ids []localport.ServiceId) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
