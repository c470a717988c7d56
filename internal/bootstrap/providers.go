// Package bootstrap provides dependency injection wiring using Google Wire.
// This file contains custom providers that require conditional logic
// or special handling beyond simple constructor calls.
package bootstrap

import (
	"fmt"

	"github.com/kodflow/daemon/internal/application/controlapi"
	"github.com/kodflow/daemon/internal/application/portsupervisor"
	"github.com/kodflow/daemon/internal/application/taskmanager"
	domainlogging "github.com/kodflow/daemon/internal/domain/logging"
	"github.com/kodflow/daemon/internal/domain/localport"
	"github.com/kodflow/daemon/internal/infrastructure/adapters"
	"github.com/kodflow/daemon/internal/infrastructure/config/yaml"
	"github.com/kodflow/daemon/internal/infrastructure/healthprobe"
	daemonlogger "github.com/kodflow/daemon/internal/infrastructure/observability/logging/daemon"
	"github.com/kodflow/daemon/internal/infrastructure/persistence/statestore"
	"github.com/kodflow/daemon/internal/infrastructure/portcheck"
	"github.com/kodflow/daemon/internal/infrastructure/transport/httpapi"
	"github.com/kodflow/daemon/internal/kernel"
	"github.com/kodflow/daemon/internal/kernel/ports"
)

// ProvideAdapters builds the fixed set of technology adapters the
// supervisor dispatches Spawn/GracefulStop/ForceStop calls to.
//
// Returns:
//   - []localport.Adapter: one adapter per supported forward technology.
func ProvideAdapters() []localport.Adapter {
	return []localport.Adapter{
		adapters.NewKubernetesAdapter(),
		adapters.NewSSHAdapter(),
	}
}

// ProvideProberFactory creates the health prober factory with every
// built-in probe kind registered.
//
// Returns:
//   - *healthprobe.Factory: the prober factory instance.
func ProvideProberFactory() *healthprobe.Factory {
	return healthprobe.NewFactory()
}

// ProvidePortCheck creates the procfs-backed port ownership checker used
// during start() and startup reconciliation.
//
// Returns:
//   - *portcheck.Checker: the port ownership checker.
func ProvidePortCheck() *portcheck.Checker {
	return portcheck.New()
}

// ProvideReaper returns the zombie reaper only when running as PID 1.
// When not running as PID 1, zombie reaping is not this daemon's
// responsibility and nil is returned so callers can skip starting it.
//
// Params:
//   - r: the reaper from the kernel facade.
//
// Returns:
//   - ports.ZombieReaper: the reaper if PID 1, nil otherwise.
func ProvideReaper(r ports.ZombieReaper) ports.ZombieReaper {
	if r.IsPID1() {
		return r
	}
	return nil
}

// loadedConfig bundles the parsed fleet configuration so Wire can pass it
// as a single dependency to NewApp.
type loadedConfig struct {
	desired  []localport.ServiceDefinition
	defaults portsupervisor.Defaults
}

// LoadDesired parses the service fleet configuration file.
//
// Params:
//   - configPath: the YAML configuration file path.
//
// Returns:
//   - loadedConfig: the parsed service definitions and shared defaults.
//   - error: a parse or read error, wrapped with the file path.
func LoadDesired(configPath string) (loadedConfig, error) {
	defs, defaults, err := yaml.New().Load(configPath)
	if err != nil {
		return loadedConfig{}, fmt.Errorf("loading %s: %w", configPath, err)
	}
	return loadedConfig{desired: defs, defaults: defaults}, nil
}

// NewApp assembles the fully wired App from its constructed dependencies.
//
// Params:
//   - cfg: the parsed service fleet configuration.
//   - adaptersList: the registered technology adapters.
//   - proberFac: the health prober factory.
//   - portCheck: the port ownership checker.
//   - store: the embedded state/health-history store.
//   - k: the kernel OS-abstraction facade.
//   - logBaseDir: the base directory log file writers resolve relative paths against.
//   - configPath: the service fleet configuration file path, kept for reload.
//
// Returns:
//   - *App: the fully wired application.
//   - error: a logger construction error, if any.
func NewApp(
	cfg loadedConfig,
	adaptersList []localport.Adapter,
	proberFac *healthprobe.Factory,
	portCheck *portcheck.Checker,
	store *statestore.Store,
	k *kernel.Kernel,
	logBaseDir string,
	configPath string,
) (*App, error) {
	var logger domainlogging.Logger = daemonlogger.DefaultLogger()

	sup := portsupervisor.New(portsupervisor.Config{
		Adapters:      adaptersList,
		ProberFactory: proberFac,
		Persistence:   store,
		PortCheck:     portCheck,
		Defaults:      cfg.defaults,
		LogPath: func(id localport.ServiceId, name string) string {
			return logBaseDir + "/" + name + "-" + id.ShortString() + ".log"
		},
	})

	registry := taskmanager.NewRegistry()
	bridge := taskmanager.NewSignalBridge(k.Signals)

	var closed bool
	cleanup := func() {
		if closed {
			return
		}
		closed = true
		_ = store.Close()
		_ = logger.Close()
	}

	app := &App{
		Supervisor:   sup,
		Kernel:       k,
		Registry:     registry,
		SignalBridge: bridge,
		Store:        store,
		Logger:       logger,
		ConfigPath:   configPath,
		Cleanup:      cleanup,
		desired:      &desiredStore{defs: cfg.desired},
		orphans:      &orphanStore{},
	}

	app.ControlAPI = &controlapi.API{
		Supervisor: sup,
		Desired:    app.desired.Get,
		ReloadFn:   app.reloadConfig,
		Shutdown:   app.requestShutdown,
		OrphansFn:  app.orphans.Get,
		CleanupFn:  app.cleanupOrphans,
		LogPath: func(id localport.ServiceId, name string) string {
			return logBaseDir + "/" + name + "-" + id.ShortString() + ".log"
		},
	}
	app.ControlServer = httpapi.NewServer(app.ControlAPI)

	return app, nil
}
