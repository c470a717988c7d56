// Package healthprobe provides infrastructure implementations of the
// localport.Prober port: tcp, http, kafka, postgres, and cluster-info checks.
package healthprobe

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/kodflow/daemon/internal/domain/health"
	"github.com/kodflow/daemon/internal/domain/localport"
)

// TCPProber checks that a TCP connection can be established to the
// service's local port.
type TCPProber struct{}

// NewTCPProber creates a TCP prober.
//
// Returns:
//   - *TCPProber: a ready-to-use prober.
func NewTCPProber() *TCPProber {
	return &TCPProber{}
}

// Kind returns localport.ProbeKindTCP.
//
// Returns:
//   - localport.ProbeKind: the kind this prober serves.
func (p *TCPProber) Kind() localport.ProbeKind {
	return localport.ProbeKindTCP
}

// Probe dials localhost:<local_port>, closing immediately on success.
//
// Params:
//   - ctx: deadline-bearing context; the dial is cancelled when ctx is done.
//   - target: carries the local port to probe.
//   - spec: unused by this prober kind.
//
// Returns:
//   - health.CheckResult: success if the connection was established within
//     the context deadline, failure otherwise.
func (p *TCPProber) Probe(ctx context.Context, target localport.Target, spec localport.HealthCheckSpec) health.CheckResult {
	start := time.Now()
	addr := net.JoinHostPort("localhost", strconv.Itoa(target.LocalPort))
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	latency := time.Since(start)
	if err != nil {
		return health.NewFailureCheckResult(latency, "", fmt.Errorf("tcp dial %s: %w", addr, err))
	}
	_ = conn.Close()
	return health.NewSuccessCheckResult(latency, "connected to "+addr)
}

var _ localport.Prober = (*TCPProber)(nil)
