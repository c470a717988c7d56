// Package bootstrap provides dependency injection wiring using Google Wire.
// It isolates all dependency construction from the main entry point,
// allowing for a minimal main.go and better testability.
package bootstrap

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/kodflow/daemon/internal/application/controlapi"
	"github.com/kodflow/daemon/internal/application/portsupervisor"
	"github.com/kodflow/daemon/internal/application/shutdown"
	"github.com/kodflow/daemon/internal/application/taskmanager"
	domainlogging "github.com/kodflow/daemon/internal/domain/logging"
	"github.com/kodflow/daemon/internal/domain/localport"
	"github.com/kodflow/daemon/internal/infrastructure/config/yaml"
	"github.com/kodflow/daemon/internal/infrastructure/persistence/statestore"
	"github.com/kodflow/daemon/internal/infrastructure/transport/httpapi"
	"github.com/kodflow/daemon/internal/kernel"
)

// version is the application version, set at build time via ldflags.
var version string = "dev"

// defaultStateDBPath is where the identity/state store lives absent an
// explicit -state-db flag.
const defaultStateDBPath = "/var/lib/daemon/state.db"

// defaultControlSocketPath is the control surface's Unix domain socket
// path absent an explicit -control-socket flag.
const defaultControlSocketPath = "/var/run/daemon/control.sock"

// desiredStore is a concurrency-safe holder for the currently loaded
// configuration: read by control-surface HTTP handlers, written by the
// event loop on reload.
type desiredStore struct {
	mu   sync.RWMutex
	defs []localport.ServiceDefinition
}

// Get returns the current desired configuration.
//
// Returns:
//   - []localport.ServiceDefinition: the current desired set.
func (d *desiredStore) Get() []localport.ServiceDefinition {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.defs
}

// Set replaces the desired configuration.
//
// Params:
//   - defs: the new desired set.
func (d *desiredStore) Set(defs []localport.ServiceDefinition) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.defs = defs
}

// orphanStore is a concurrency-safe holder for the orphaned-but-offered
// PIDs found during startup reconciliation (§4.8), so a later cleanup(ids)
// control-surface call (run on an HTTP handler goroutine) can act on them
// without racing bootstrapServices's single write at startup.
type orphanStore struct {
	mu    sync.Mutex
	items []portsupervisor.OrphanProcess
}

// Get returns the current orphan set.
func (o *orphanStore) Get() []portsupervisor.OrphanProcess {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.items
}

// Set replaces the orphan set.
func (o *orphanStore) Set(items []portsupervisor.OrphanProcess) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.items = items
}

// Remove drops the given ids from the orphan set, once cleanup(ids) has
// acted on them so a repeat call reports them as no longer orphaned rather
// than cleaning an already-gone PID twice.
func (o *orphanStore) Remove(ids []localport.ServiceId) {
	gone := make(map[localport.ServiceId]bool, len(ids))
	for _, id := range ids {
		gone[id] = true
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	kept := o.items[:0:0]
	for _, item := range o.items {
		if !gone[item.Entry.ServiceID] {
			kept = append(kept, item)
		}
	}
	o.items = kept
}

// App holds all application dependencies injected by Wire.
// It is the root object of the dependency graph.
type App struct {
	// Supervisor is the port-forward control plane.
	Supervisor *portsupervisor.Supervisor
	// Kernel provides the OS abstractions (signals, credentials, process
	// control, zombie reaping).
	Kernel *kernel.Kernel
	// Registry tracks cooperative background tasks for ordered shutdown.
	Registry *taskmanager.Registry
	// SignalBridge translates OS signals into event-loop-safe Events.
	SignalBridge *taskmanager.SignalBridge
	// Store is the embedded database backing persisted state and health history.
	Store *statestore.Store
	// Logger is the daemon-level event logger.
	Logger domainlogging.Logger
	// ControlAPI implements the control surface's operations.
	ControlAPI *controlapi.API
	// ControlServer exposes ControlAPI as JSON over a Unix domain socket.
	ControlServer *httpapi.Server
	// ConfigPath is the service fleet configuration file, reloaded on SIGHUP
	// or via the control surface's reload() operation.
	ConfigPath string
	// ControlSocketPath is where ControlServer listens.
	ControlSocketPath string
	// Cleanup releases every resource opened during wiring.
	Cleanup func()

	desired *desiredStore
	orphans *orphanStore

	ctx          context.Context
	cancel       context.CancelFunc
	emergency    chan struct{}
	shutdownOnce sync.Once
}

// requestShutdown triggers daemon_stop() asynchronously, safe to call
// before the event loop is started (the shutdownOnce guard means a signal
// arriving concurrently cannot race the coordinator twice).
func (a *App) requestShutdown() {
	go a.shutdown()
}

// Run is the main entry point called from cmd/daemon/main.go.
// It parses flags, initializes the application via Wire, and runs the main loop.
//
// Returns:
//   - int: exit code (0 for success, 1 for error).
func Run() int {
	configPath := flag.String("config", "/etc/daemon/services.yaml", "path to the service fleet configuration file")
	stateDBPath := flag.String("state-db", defaultStateDBPath, "path to the embedded state database")
	logBaseDir := flag.String("log-dir", "/var/log/daemon", "base directory for log files")
	controlSocketPath := flag.String("control-socket", defaultControlSocketPath, "path to the control surface's Unix domain socket")
	showVersion := flag.Bool("version", false, "show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("daemon %s\n", version)
		return 0
	}

	if err := run(*configPath, *stateDBPath, *logBaseDir, *controlSocketPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// run wires the application and drives its lifecycle until a shutdown
// signal has been handled to completion.
//
// Params:
//   - configPath: the service fleet configuration file path.
//   - stateDBPath: the embedded state database path.
//   - logBaseDir: the base directory log file writers resolve relative paths against.
//   - controlSocketPath: the control surface's Unix domain socket path.
//
// Returns:
//   - error: nil on a clean shutdown, error on startup failure.
func run(configPath, stateDBPath, logBaseDir, controlSocketPath string) error {
	app, err := InitializeApp(configPath, stateDBPath, logBaseDir)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	app.ControlSocketPath = controlSocketPath
	defer app.Cleanup()

	app.ctx, app.cancel = context.WithCancel(context.Background())
	app.emergency = make(chan struct{}, 1)
	defer app.cancel()

	app.Supervisor.Run(app.ctx)
	defer app.Supervisor.Shutdown()

	app.bootstrapServices()

	if app.Kernel.Reaper.IsPID1() {
		app.Kernel.Reaper.Start()
		defer app.Kernel.Reaper.Stop()
	}

	go app.serveControlSurface()

	return app.eventLoop()
}

// serveControlSurface runs the control surface's HTTP-over-Unix-socket
// listener until it is stopped during shutdown's Force phase.
func (a *App) serveControlSurface() {
	if err := a.ControlServer.Serve(a.ControlSocketPath); err != nil {
		a.Logger.Error("", "control_surface_error", "control surface stopped unexpectedly", map[string]any{
			"error": err.Error(),
		})
	}
}

// bootstrapServices adopts any live processes left over from a previous
// run, then reconciles the remainder of the desired configuration against
// the now-adopted live table, per the startup reconciliation contract.
func (a *App) bootstrapServices() {
	desired := a.desired.Get()
	orphans := a.Supervisor.Adopt(desired)
	a.orphans.Set(orphans)
	for _, o := range orphans {
		a.Logger.Warn("", "orphan_process", "persisted process no longer in configuration; offered via cleanup()", map[string]any{
			"service_id": o.Entry.ServiceID.String(),
			"pid":        o.Entry.PID,
		})
	}

	result := a.Supervisor.Reconcile(desired)
	a.Logger.Info("", "daemon_started", "supervisor reconciled initial configuration", map[string]any{
		"version": version,
		"started": len(result.Started),
		"updated": len(result.Updated),
		"stopped": len(result.Stopped),
		"errors":  len(result.Errors),
	})
}

// eventLoop consumes signal-bridge Events until a shutdown is requested,
// then hands off to the shutdown coordinator. SIGHUP triggers a
// configuration reload and reconciliation without shutting down.
//
// Returns:
//   - error: always nil; shutdown failures are logged, not propagated,
//     since by the time Force runs there is no caller left to report to.
func (a *App) eventLoop() error {
	for ev := range a.SignalBridge.Events() {
		switch ev {
		case taskmanager.EventReload:
			if _, _, err := a.reloadConfig(); err != nil {
				a.Logger.Error("", "config_reload_failed", "reload request rejected", map[string]any{
					"error": err.Error(),
				})
			}
		case taskmanager.EventShutdown:
			a.requestShutdown()
		case taskmanager.EventShutdownImmediate:
			select {
			case a.emergency <- struct{}{}:
			default:
			}
			return nil
		}
	}
	return nil
}

// reloadConfig implements the SIGHUP/reload() contract: re-reads
// configuration from ConfigPath, applies the new defaults, reconciles the
// live table against it, and swaps in the new desired set.
//
// Returns:
//   - []localport.ServiceDefinition: the newly loaded desired set.
//   - portsupervisor.ReconcileResult: what reconciliation changed.
//   - error: a configuration load/parse error, if any; the previous
//     desired set and live table are left untouched on error.
func (a *App) reloadConfig() ([]localport.ServiceDefinition, portsupervisor.ReconcileResult, error) {
	defs, defaults, err := yaml.New().Load(a.ConfigPath)
	if err != nil {
		return nil, portsupervisor.ReconcileResult{}, fmt.Errorf("loading %s: %w", a.ConfigPath, err)
	}

	a.Supervisor.SetDefaults(defaults)
	result := a.Supervisor.Reconcile(defs)
	a.desired.Set(defs)

	a.Logger.Info("", "config_reloaded", "reconciled against current configuration", map[string]any{
		"started": len(result.Started),
		"updated": len(result.Updated),
		"stopped": len(result.Stopped),
	})
	return defs, result, nil
}

// cleanupOrphans implements the control surface's cleanup(ids) operation:
// force-stops the named orphaned PIDs and forgets them, so a second call
// with the same ids finds nothing left to clean.
//
// Params:
//   - ids: the orphan ServiceIds to act on.
//
// Returns:
//   - map[localport.ServiceId]error: per-id result; nil means cleaned.
func (a *App) cleanupOrphans(ids []localport.ServiceId) map[localport.ServiceId]error {
	results := a.Supervisor.Cleanup(a.orphans.Get(), ids)
	a.orphans.Remove(ids)
	return results
}

// shutdown runs the four-phase shutdown coordinator and then exits the
// process: by the time Force completes, every child is gone and every
// resource this App opened has been released. Safe to call more than
// once (e.g. a signal and a daemon_stop() race); only the first call
// drives the coordinator.
func (a *App) shutdown() {
	a.shutdownOnce.Do(func() {
		coord := shutdown.New(shutdown.Hooks{
			Quiesce: func(context.Context) error {
				a.Logger.Info("", "shutdown_quiesce", "refusing new start requests", nil)
				return nil
			},
			Drain: func(ctx context.Context) error {
				<-ctx.Done()
				return nil
			},
			Cancel: func(context.Context) error {
				a.Registry.CancelAll()
				a.Supervisor.StopAll()
				return nil
			},
			Force: func(context.Context) error {
				a.cancel()
				a.SignalBridge.Stop()
				stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownControlSurfaceTimeout)
				defer stopCancel()
				_ = a.ControlServer.Stop(stopCtx)
				return a.Store.Close()
			},
		})
		coord.Run(a.ctx, a.emergency)
		a.Logger.Info("", "daemon_stopped", "shutdown complete", nil)
		_ = a.Logger.Close()
		os.Exit(0)
	})
}

// shutdownControlSurfaceTimeout bounds how long the control surface's
// graceful HTTP shutdown is given during the Force phase.
const shutdownControlSurfaceTimeout = 2 * time.Second
