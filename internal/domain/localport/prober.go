package localport

import (
	"context"

	"github.com/kodflow/daemon/internal/domain/health"
)

// Target carries what a Prober needs to know about the service it is
// checking, independent of the probe's kind-specific config.
type Target struct {
	// ServiceName is the human-readable name, for diagnostics.
	ServiceName string
	// LocalPort is the forward's local listening port.
	LocalPort int
	// ClusterContext is the kubeconfig context, populated only for services
	// whose technology is kubernetes; used by the cluster probe.
	ClusterContext string
}

// Prober is an independent health check implementation. Every probe must
// honor ctx's deadline with hard cancellation; a stuck probe must never
// block the health monitor scheduler.
type Prober interface {
	// Kind returns the probe kind this implementation serves.
	Kind() ProbeKind
	// Probe executes one check against target/spec and returns its verdict.
	Probe(ctx context.Context, target Target, spec HealthCheckSpec) health.CheckResult
}

// ProberFactory creates Probers by kind.
type ProberFactory interface {
	// Create returns a Prober for the given kind.
	//
	// Returns:
	//   - error: ErrUnknownProbeKind if kind has no registered constructor.
	Create(kind ProbeKind) (Prober, error)
}
