package localport

import "time"

// ProbeKind identifies a health probe implementation.
type ProbeKind string

// Supported probe kinds.
const (
	ProbeKindTCP      ProbeKind = "tcp"
	ProbeKindHTTP     ProbeKind = "http"
	ProbeKindKafka    ProbeKind = "kafka"
	ProbeKindPostgres ProbeKind = "postgres"
	ProbeKindCluster  ProbeKind = "cluster"
)

// HTTPProbeConfig is the kind-specific config for a http probe.
type HTTPProbeConfig struct {
	URL            string
	Method         string
	ExpectedStatus []int
	Headers        map[string]string
}

// KafkaProbeConfig is the kind-specific config for a kafka probe.
// BootstrapServers is a single host:port; the YAML loader takes the first
// entry of the configured bootstrap_servers list.
type KafkaProbeConfig struct {
	BootstrapServers string
}

// PostgresProbeConfig is the kind-specific config for a postgres probe.
type PostgresProbeConfig struct {
	Database string
	User     string
	Password string
	Host     string
	Port     int
}

// ClusterProbeConfig is the kind-specific config for a cluster-info probe.
// It evaluates cluster-side health for a kubernetes context. The result
// counts only for the service this probe belongs to; it is not applied to
// other services bound to the same context.
type ClusterProbeConfig struct {
	ClusterInfo     bool
	PodStatus       bool
	NodeStatus      bool
	EventsOnFailure bool
	Interval        time.Duration
	Timeout         time.Duration
}

// HealthCheckSpec configures how a service's health is probed.
type HealthCheckSpec struct {
	// Kind selects the probe implementation.
	Kind ProbeKind
	// Interval is the time between consecutive probes.
	Interval time.Duration
	// Timeout is the maximum time a single probe may take.
	Timeout time.Duration
	// FailureThreshold is the number of consecutive failures before the
	// service transitions to unhealthy.
	FailureThreshold int
	// SuccessThreshold is the number of consecutive successes required to
	// transition back to healthy.
	SuccessThreshold int
	// HTTP carries kind-specific config when Kind is http.
	HTTP *HTTPProbeConfig
	// Kafka carries kind-specific config when Kind is kafka.
	Kafka *KafkaProbeConfig
	// Postgres carries kind-specific config when Kind is postgres.
	Postgres *PostgresProbeConfig
	// Cluster carries kind-specific config when Kind is cluster.
	Cluster *ClusterProbeConfig
}

// DefaultHealthCheckSpec returns the baseline tcp-probe spec applied when
// configuration supplies no defaults.
//
// Returns:
//   - HealthCheckSpec: tcp probe, 10s interval, 5s timeout, 3 failure / 1
//     success thresholds.
func DefaultHealthCheckSpec() HealthCheckSpec {
	return HealthCheckSpec{
		Kind:             ProbeKindTCP,
		Interval:         10 * time.Second,
		Timeout:          5 * time.Second,
		FailureThreshold: 3,
		SuccessThreshold: 1,
	}
}
