package yaml_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodflow/daemon/internal/domain/localport"
	yamlcfg "github.com/kodflow/daemon/internal/infrastructure/config/yaml"
)

const sampleDoc = `
version: "1"
defaults:
  restart_policy:
    max_attempts: 5
    initial_delay_s: 1
services:
  - name: db
    technology: kubernetes
    local_port: 5432
    remote_port: 5432
    connection:
      kind: service
      name: db
      namespace: ${NAMESPACE:default}
  - name: bastion
    technology: ssh
    local_port: 2222
    remote_port: 22
    connection:
      host: ${BASTION_HOST}
      user: ops
`

func TestLoader_ParsesServicesAndDefaults(t *testing.T) {
	t.Setenv("BASTION_HOST", "bastion.example.com")

	l := yamlcfg.New()
	defs, defaults, err := l.Parse([]byte(sampleDoc))
	require.NoError(t, err)

	require.Len(t, defs, 2)
	assert.Equal(t, localport.TechnologyKubernetes, defs[0].Technology)
	assert.Equal(t, "default", defs[0].Kubernetes.Namespace)
	assert.Equal(t, "bastion.example.com", defs[1].SSH.Host)
	assert.Equal(t, 5, defaults.RestartPolicy.MaxAttempts)
}

func TestLoader_RejectsUnknownTechnology(t *testing.T) {
	l := yamlcfg.New()
	_, _, err := l.Parse([]byte(`
services:
  - name: bad
    technology: carrier-pigeon
    local_port: 1
    remote_port: 1
`))
	assert.ErrorIs(t, err, localport.ErrInvalidDefinition)
}
