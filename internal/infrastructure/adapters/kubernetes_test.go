//go:build unix

package adapters_test

import (
	"context"
	"testing"

	"github.com/kodflow/daemon/internal/domain/localport"
	"github.com/kodflow/daemon/internal/infrastructure/adapters"
	"github.com/stretchr/testify/assert"
)

func TestKubernetesAdapter_SpawnMissingBinary(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	a := adapters.NewKubernetesAdapter()
	def := localport.ServiceDefinition{
		Name:       "db",
		Technology: localport.TechnologyKubernetes,
		LocalPort:  5432,
		RemotePort: 5432,
		Kubernetes: &localport.KubernetesConnection{Kind: "service", Name: "postgres"},
	}

	_, err := a.Spawn(context.Background(), def, t.TempDir()+"/db.log")
	assert.ErrorIs(t, err, localport.ErrToolMissing)
}

func TestKubernetesAdapter_Technology(t *testing.T) {
	a := adapters.NewKubernetesAdapter()
	assert.Equal(t, localport.TechnologyKubernetes, a.Technology())
}

func TestKubernetesAdapter_ExpectedFingerprintEmptyWithoutBinary(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	a := adapters.NewKubernetesAdapter()
	def := localport.ServiceDefinition{
		Name:       "db",
		Technology: localport.TechnologyKubernetes,
		LocalPort:  5432,
		RemotePort: 5432,
		Kubernetes: &localport.KubernetesConnection{Kind: "service", Name: "postgres"},
	}

	assert.Empty(t, a.ExpectedFingerprint(def))
}

func TestKubernetesAdapter_ExpectedFingerprintNilConnection(t *testing.T) {
	a := adapters.NewKubernetesAdapter()
	assert.Empty(t, a.ExpectedFingerprint(localport.ServiceDefinition{Technology: localport.TechnologyKubernetes}))
}
