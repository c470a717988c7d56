package healthprobe

import (
	"fmt"

	"github.com/kodflow/daemon/internal/domain/localport"
)

// Factory constructs Probers by kind, constructing each exactly once and
// reusing the instance across calls since probers here hold no per-probe
// mutable state.
type Factory struct {
	probers map[localport.ProbeKind]localport.Prober
}

// NewFactory creates a Factory with every built-in probe kind registered.
//
// Returns:
//   - *Factory: a ready-to-use factory.
func NewFactory() *Factory {
	return &Factory{
		probers: map[localport.ProbeKind]localport.Prober{
			localport.ProbeKindTCP:      NewTCPProber(),
			localport.ProbeKindHTTP:     NewHTTPProber(),
			localport.ProbeKindKafka:    NewKafkaProber(),
			localport.ProbeKindPostgres: NewPostgresProber(),
			localport.ProbeKindCluster:  NewClusterProber(),
		},
	}
}

// Create returns the Prober registered for kind.
//
// Params:
//   - kind: the probe kind to resolve.
//
// Returns:
//   - localport.Prober: the matching prober.
//   - error: localport.ErrUnknownProbeKind if kind is not registered.
func (f *Factory) Create(kind localport.ProbeKind) (localport.Prober, error) {
	p, ok := f.probers[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", localport.ErrUnknownProbeKind, kind)
	}
	return p, nil
}

var _ localport.ProberFactory = (*Factory)(nil)
