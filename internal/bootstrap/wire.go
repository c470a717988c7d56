//go:build wireinject

package bootstrap

import (
	"github.com/google/wire"
	"github.com/kodflow/daemon/internal/application/taskmanager"
	"github.com/kodflow/daemon/internal/infrastructure/config/yaml"
	"github.com/kodflow/daemon/internal/infrastructure/observability/logging/daemon"
	"github.com/kodflow/daemon/internal/infrastructure/persistence/statestore"
	"github.com/kodflow/daemon/internal/kernel"
)

// InitializeApp creates the application with all dependencies wired.
// This function is the injector that Wire will generate code for.
//
// Params:
//   - configPath: the path to the service fleet YAML configuration file.
//   - stateDBPath: the path to the embedded state database.
//   - logBaseDir: the base directory log file writers resolve relative paths against.
//
// Returns:
//   - *App: the fully wired application.
//   - error: any error during dependency construction.
func InitializeApp(configPath, stateDBPath, logBaseDir string) (*App, error) {
	wire.Build(
		// Infrastructure: configuration loader.
		yaml.New,

		// Infrastructure: adapters, prober factory, port ownership check.
		ProvideAdapters,
		ProvideProberFactory,
		ProvidePortCheck,

		// Infrastructure: state store.
		statestore.Open,

		// Kernel: OS abstraction facade.
		kernel.New,

		// Application: task manager.
		taskmanager.NewRegistry,
		taskmanager.NewSignalBridge,

		// Observability: daemon logger.
		daemon.DefaultLogger,

		// Providers: custom provider functions and final wiring.
		ProvideReaper,
		LoadDesired,
		NewApp,
	)
	return nil, nil
}
