package yaml

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kodflow/daemon/internal/application/portsupervisor"
	"github.com/kodflow/daemon/internal/domain/localport"
)

// Loader reads a declarative fleet configuration file.
type Loader struct{}

// New creates a configuration loader.
//
// Returns:
//   - *Loader: a ready-to-use loader.
func New() *Loader {
	return &Loader{}
}

// Load reads path, applies environment substitution, and parses the result
// into service definitions and fleet-wide defaults.
//
// Params:
//   - path: the configuration file path.
//
// Returns:
//   - []localport.ServiceDefinition: the declared services.
//   - portsupervisor.Defaults: the fleet-wide defaults.
//   - error: any error reading, substituting, or parsing the file.
func (l *Loader) Load(path string) ([]localport.ServiceDefinition, portsupervisor.Defaults, error) {
	raw, err := os.ReadFile(path) // #nosec G304 - config path is trusted input
	if err != nil {
		return nil, portsupervisor.Defaults{}, fmt.Errorf("reading config file: %w", err)
	}
	return l.Parse(raw)
}

// Parse parses already-read configuration bytes, after substituting
// ${VAR} and ${VAR:default} references against the process environment.
//
// Params:
//   - raw: the YAML document bytes.
//
// Returns:
//   - []localport.ServiceDefinition: the declared services.
//   - portsupervisor.Defaults: the fleet-wide defaults.
//   - error: any error parsing or validating the document.
func (l *Loader) Parse(raw []byte) ([]localport.ServiceDefinition, portsupervisor.Defaults, error) {
	substituted := substituteEnv(string(raw))

	var doc document
	if err := yaml.Unmarshal([]byte(substituted), &doc); err != nil {
		return nil, portsupervisor.Defaults{}, fmt.Errorf("parsing yaml: %w", err)
	}

	defaults := portsupervisor.Defaults{
		HealthCheck:   localport.DefaultHealthCheckSpec(),
		RestartPolicy: localport.DefaultRestartPolicy(),
	}
	if doc.Defaults.HealthCheck != nil {
		defaults.HealthCheck = translateHealthCheck(doc.Defaults.HealthCheck)
	}
	if doc.Defaults.RestartPolicy != nil {
		defaults.RestartPolicy = translateRestartPolicy(doc.Defaults.RestartPolicy)
	}

	defs := make([]localport.ServiceDefinition, 0, len(doc.Services))
	for _, sv := range doc.Services {
		def, err := translateService(sv)
		if err != nil {
			return nil, portsupervisor.Defaults{}, fmt.Errorf("service %q: %w", sv.Name, err)
		}
		defs = append(defs, def)
	}
	return defs, defaults, nil
}

// substituteEnv expands ${VAR} and ${VAR:default} references using
// os.Expand, the loader's entire environment-substitution responsibility
// per §6.
func substituteEnv(s string) string {
	return os.Expand(s, func(key string) string {
		name, fallback, hasFallback := strings.Cut(key, ":")
		if v, ok := os.LookupEnv(name); ok {
			return v
		}
		if hasFallback {
			return fallback
		}
		return ""
	})
}

func translateService(sv serviceDoc) (localport.ServiceDefinition, error) {
	tech, err := parseTechnology(sv.Technology)
	if err != nil {
		return localport.ServiceDefinition{}, err
	}

	def := localport.ServiceDefinition{
		Name:        sv.Name,
		Technology:  tech,
		LocalPort:   sv.LocalPort,
		RemotePort:  sv.RemotePort,
		Tags:        sv.Tags,
		Description: sv.Description,
		Enabled:     sv.Enabled == nil || *sv.Enabled,
	}

	switch tech {
	case localport.TechnologyKubernetes:
		def.Kubernetes = &localport.KubernetesConnection{
			Kind:      sv.Connection.Kind,
			Name:      sv.Connection.Name,
			Namespace: sv.Connection.Namespace,
			Context:   sv.Connection.Context,
		}
	case localport.TechnologySSH:
		def.SSH = &localport.SSHConnection{
			Host:         sv.Connection.Host,
			User:         sv.Connection.User,
			Port:         sv.Connection.Port,
			AuthHint:     sv.Connection.AuthHint,
			IdentityFile: sv.Connection.IdentityFile,
			PasswordEnv:  sv.Connection.PasswordEnv,
		}
	}

	if sv.HealthCheck != nil {
		hc := translateHealthCheck(sv.HealthCheck)
		def.HealthCheck = &hc
	}
	if sv.RestartPolicy != nil {
		rp := translateRestartPolicy(sv.RestartPolicy)
		def.RestartPolicy = &rp
	}

	if err := def.Validate(); err != nil {
		return localport.ServiceDefinition{}, err
	}
	return def, nil
}

func parseTechnology(s string) (localport.Technology, error) {
	switch s {
	case "kubernetes":
		return localport.TechnologyKubernetes, nil
	case "ssh":
		return localport.TechnologySSH, nil
	default:
		return "", fmt.Errorf("%w: unknown technology %q", localport.ErrInvalidDefinition, s)
	}
}

func translateHealthCheck(d *healthCheckDoc) localport.HealthCheckSpec {
	spec := localport.DefaultHealthCheckSpec()
	if d.Kind != "" {
		spec.Kind = localport.ProbeKind(d.Kind)
	}
	if d.IntervalS > 0 {
		spec.Interval = secondsToDuration(d.IntervalS)
	}
	if d.TimeoutS > 0 {
		spec.Timeout = secondsToDuration(d.TimeoutS)
	}
	if d.FailureThreshold > 0 {
		spec.FailureThreshold = d.FailureThreshold
	}
	if d.SuccessThreshold > 0 {
		spec.SuccessThreshold = d.SuccessThreshold
	}

	switch spec.Kind {
	case localport.ProbeKindHTTP:
		spec.HTTP = &localport.HTTPProbeConfig{
			URL: d.Config.URL, Method: d.Config.Method,
			ExpectedStatus: d.Config.ExpectedStatus, Headers: d.Config.Headers,
		}
	case localport.ProbeKindKafka:
		kafka := &localport.KafkaProbeConfig{}
		if len(d.Config.BootstrapServers) > 0 {
			kafka.BootstrapServers = d.Config.BootstrapServers[0]
		}
		spec.Kafka = kafka
	case localport.ProbeKindPostgres:
		spec.Postgres = &localport.PostgresProbeConfig{
			Database: d.Config.Database, User: d.Config.User, Password: d.Config.Password,
			Host: d.Config.Host, Port: d.Config.Port,
		}
	case localport.ProbeKindCluster:
		spec.Cluster = &localport.ClusterProbeConfig{
			ClusterInfo: d.Config.Commands.ClusterInfo, PodStatus: d.Config.Commands.PodStatus,
			NodeStatus: d.Config.Commands.NodeStatus, EventsOnFailure: d.Config.Commands.EventsOnFailure,
			Interval: spec.Interval, Timeout: spec.Timeout,
		}
	}
	return spec
}

func translateRestartPolicy(d *restartPolicyDoc) localport.RestartPolicy {
	p := localport.DefaultRestartPolicy()
	if d.Enabled != nil {
		p.Enabled = *d.Enabled
	}
	if d.MaxAttempts > 0 {
		p.MaxAttempts = d.MaxAttempts
	}
	if d.InitialDelayS > 0 {
		p.InitialDelay = secondsToDuration(d.InitialDelayS)
	}
	if d.MaxDelayS > 0 {
		p.MaxDelay = secondsToDuration(d.MaxDelayS)
	}
	if d.BackoffMultiplier > 0 {
		p.BackoffMultiplier = d.BackoffMultiplier
	}
	return p
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
