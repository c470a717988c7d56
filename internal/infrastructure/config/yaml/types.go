// Package yaml loads the declarative service configuration described in
// §6: a version, fleet-wide defaults, and a list of service definitions,
// with ${VAR} / ${VAR:default} environment substitution applied before
// parsing.
package yaml

// document is the raw YAML shape, decoded before translation into
// localport domain types.
type document struct {
	Version  string       `yaml:"version"`
	Defaults defaultsDoc  `yaml:"defaults"`
	Services []serviceDoc `yaml:"services"`
}

type defaultsDoc struct {
	HealthCheck   *healthCheckDoc   `yaml:"health_check"`
	RestartPolicy *restartPolicyDoc `yaml:"restart_policy"`
}

type serviceDoc struct {
	Name          string            `yaml:"name"`
	Technology    string            `yaml:"technology"`
	LocalPort     int               `yaml:"local_port"`
	RemotePort    int               `yaml:"remote_port"`
	Connection    connectionDoc     `yaml:"connection"`
	Enabled       *bool             `yaml:"enabled"`
	Tags          []string          `yaml:"tags"`
	Description   string            `yaml:"description"`
	HealthCheck   *healthCheckDoc   `yaml:"health_check"`
	RestartPolicy *restartPolicyDoc `yaml:"restart_policy"`
}

type connectionDoc struct {
	// Kubernetes fields.
	Kind      string `yaml:"kind"`
	Name      string `yaml:"name"`
	Namespace string `yaml:"namespace"`
	Context   string `yaml:"context"`

	// SSH fields.
	Host         string `yaml:"host"`
	User         string `yaml:"user"`
	Port         int    `yaml:"port"`
	AuthHint     string `yaml:"auth_hint"`
	IdentityFile string `yaml:"identity_file"`
	PasswordEnv  string `yaml:"password_env"`
}

type healthCheckDoc struct {
	Kind             string          `yaml:"kind"`
	IntervalS        float64         `yaml:"interval_s"`
	TimeoutS         float64         `yaml:"timeout_s"`
	FailureThreshold int             `yaml:"failure_threshold"`
	SuccessThreshold int             `yaml:"success_threshold"`
	Config           healthConfigDoc `yaml:"config"`
}

type healthConfigDoc struct {
	URL              string             `yaml:"url"`
	Method           string             `yaml:"method"`
	ExpectedStatus   []int              `yaml:"expected_status"`
	Headers          map[string]string  `yaml:"headers"`
	BootstrapServers []string           `yaml:"bootstrap_servers"`
	Database         string             `yaml:"database"`
	User             string             `yaml:"user"`
	Password         string             `yaml:"password"`
	Host             string             `yaml:"host"`
	Port             int                `yaml:"port"`
	Commands         clusterCommandsDoc `yaml:"commands"`
}

type clusterCommandsDoc struct {
	ClusterInfo     bool `yaml:"cluster_info"`
	PodStatus       bool `yaml:"pod_status"`
	NodeStatus      bool `yaml:"node_status"`
	EventsOnFailure bool `yaml:"events_on_failure"`
}

type restartPolicyDoc struct {
	Enabled           *bool   `yaml:"enabled"`
	MaxAttempts       int     `yaml:"max_attempts"`
	InitialDelayS     float64 `yaml:"initial_delay_s"`
	MaxDelayS         float64 `yaml:"max_delay_s"`
	BackoffMultiplier float64 `yaml:"backoff_multiplier"`
}
