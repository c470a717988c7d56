package portsupervisor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodflow/daemon/internal/application/portsupervisor"
	"github.com/kodflow/daemon/internal/domain/health"
	"github.com/kodflow/daemon/internal/domain/localport"
)

func TestSupervisor_CleanupForceStopsAndForgetsOrphan(t *testing.T) {
	adapter := newFakeAdapter()
	prober := &scriptedProber{results: []health.CheckResult{health.NewSuccessCheckResult(0, "")}}
	s := newTestSupervisor(t, adapter, prober)

	orphanID := localport.DeriveServiceId(testDef("stale", 7777))
	orphan := portsupervisor.OrphanProcess{Entry: localport.PersistedEntry{
		ServiceID: orphanID, PID: 9999, Technology: string(localport.TechnologyKubernetes),
	}}

	results := s.Cleanup([]portsupervisor.OrphanProcess{orphan}, []localport.ServiceId{orphanID})
	require.Len(t, results, 1)
	assert.NoError(t, results[orphanID])
	assert.Contains(t, adapter.forced, 9999)
}

func TestSupervisor_CleanupRejectsIDNotInOrphanSet(t *testing.T) {
	adapter := newFakeAdapter()
	prober := &scriptedProber{results: []health.CheckResult{health.NewSuccessCheckResult(0, "")}}
	s := newTestSupervisor(t, adapter, prober)

	unknownID := localport.DeriveServiceId(testDef("nope", 1))
	results := s.Cleanup(nil, []localport.ServiceId{unknownID})
	require.Len(t, results, 1)
	assert.Error(t, results[unknownID])
}

func TestSupervisor_SetDefaultsAppliesToFutureStarts(t *testing.T) {
	adapter := newFakeAdapter()
	prober := &scriptedProber{results: []health.CheckResult{health.NewSuccessCheckResult(0, "")}}
	s := newTestSupervisor(t, adapter, prober)

	s.SetDefaults(portsupervisor.Defaults{
		RestartPolicy: localport.RestartPolicy{Enabled: false, MaxAttempts: 0},
	})

	def := testDef("db", 5432)
	errs := s.Start([]localport.ServiceDefinition{def})
	for _, err := range errs {
		require.NoError(t, err)
	}
}
