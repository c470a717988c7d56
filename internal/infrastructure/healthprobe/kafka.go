package healthprobe

import (
	"context"
	"fmt"
	"time"

	kafka "github.com/segmentio/kafka-go"

	"github.com/kodflow/daemon/internal/domain/health"
	"github.com/kodflow/daemon/internal/domain/localport"
)

// KafkaProber opens a metadata request against the forwarded broker and
// succeeds if at least one broker entry is returned.
type KafkaProber struct {
	dialer *kafka.Dialer
}

// NewKafkaProber creates a Kafka prober.
//
// Returns:
//   - *KafkaProber: a ready-to-use prober.
func NewKafkaProber() *KafkaProber {
	return &KafkaProber{dialer: &kafka.Dialer{Timeout: 0, DualStack: true}}
}

// Kind returns localport.ProbeKindKafka.
//
// Returns:
//   - localport.ProbeKind: the kind this prober serves.
func (p *KafkaProber) Kind() localport.ProbeKind {
	return localport.ProbeKindKafka
}

// Probe dials the forwarded broker at localhost:<local_port> and requests
// its broker list; any non-empty list counts as healthy.
//
// Params:
//   - ctx: deadline-bearing context for the dial and metadata round trip.
//   - target: carries the local port to dial.
//   - spec: carries optional bootstrap_servers override.
//
// Returns:
//   - health.CheckResult: success if at least one broker was returned.
func (p *KafkaProber) Probe(ctx context.Context, target localport.Target, spec localport.HealthCheckSpec) health.CheckResult {
	start := time.Now()
	addr := fmt.Sprintf("localhost:%d", target.LocalPort)
	if spec.Kafka != nil && spec.Kafka.BootstrapServers != "" {
		addr = spec.Kafka.BootstrapServers
	}

	conn, err := p.dialer.DialContext(ctx, "tcp", addr)
	latency := time.Since(start)
	if err != nil {
		return health.NewFailureCheckResult(latency, "", fmt.Errorf("kafka dial %s: %w", addr, err))
	}
	defer func() { _ = conn.Close() }()

	brokers, err := conn.Brokers()
	latency = time.Since(start)
	if err != nil {
		return health.NewFailureCheckResult(latency, "", fmt.Errorf("kafka metadata: %w", err))
	}
	if len(brokers) == 0 {
		return health.NewFailureCheckResult(latency, "", fmt.Errorf("kafka metadata returned no brokers"))
	}
	return health.NewSuccessCheckResult(latency, fmt.Sprintf("%d broker(s)", len(brokers)))
}

var _ localport.Prober = (*KafkaProber)(nil)
