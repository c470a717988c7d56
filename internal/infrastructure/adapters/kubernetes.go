//go:build unix

package adapters

import (
	"context"
	"fmt"

	"github.com/kodflow/daemon/internal/domain/localport"
)

// kubectlBinary is the forwarder binary name this adapter discovers on PATH.
const kubectlBinary = "kubectl"

// KubernetesAdapter spawns `kubectl port-forward` equivalents for services
// whose technology is kubernetes.
type KubernetesAdapter struct {
	spawner *spawner
}

// NewKubernetesAdapter creates a Kubernetes subprocess adapter.
//
// Returns:
//   - *KubernetesAdapter: a ready-to-use adapter.
func NewKubernetesAdapter() *KubernetesAdapter {
	return &KubernetesAdapter{spawner: newSpawner()}
}

// Technology returns localport.TechnologyKubernetes.
//
// Returns:
//   - localport.Technology: the technology this adapter implements.
func (a *KubernetesAdapter) Technology() localport.Technology {
	return localport.TechnologyKubernetes
}

// Spawn builds and starts `kubectl port-forward <kind>/<name> <local>:<remote>`
// with optional namespace and context flags.
//
// Params:
//   - ctx: context bound to the spawn call only.
//   - def: the service definition; def.Kubernetes must be set.
//   - logPath: the service log file to redirect output into.
//
// Returns:
//   - localport.Handle: the spawned child's handle.
//   - error: localport.ErrToolMissing if kubectl is not on PATH, or a spawn error.
func (a *KubernetesAdapter) Spawn(ctx context.Context, def localport.ServiceDefinition, logPath string) (localport.Handle, error) {
	if def.Kubernetes == nil {
		return localport.Handle{}, fmt.Errorf("%w: kubernetes connection is nil", localport.ErrInvalidDefinition)
	}
	binary, err := resolveBinary(kubectlBinary)
	if err != nil {
		return localport.Handle{}, err
	}

	args := kubernetesArgs(def)
	spec := spawnSpec{Binary: binary, Args: args, FingerprintArgs: args}
	return a.spawner.spawn(ctx, spec, def, logPath)
}

// kubernetesArgs builds the kubectl port-forward argv for def, shared
// between Spawn and ExpectedFingerprint so the two can never disagree.
func kubernetesArgs(def localport.ServiceDefinition) []string {
	k := def.Kubernetes
	args := []string{"port-forward", fmt.Sprintf("%s/%s", k.Kind, k.Name), fmt.Sprintf("%d:%d", def.LocalPort, def.RemotePort)}
	if k.Namespace != "" {
		args = append(args, "-n", k.Namespace)
	}
	if k.Context != "" {
		args = append(args, "--context", k.Context)
	}
	return args
}

// ExpectedFingerprint reports the argv fingerprint this adapter would
// produce for def, without spawning anything. Used by startup
// reconciliation to verify a persisted PID's command still matches intent.
//
// Params:
//   - def: the service definition; def.Kubernetes must be set.
//
// Returns:
//   - string: the expected fingerprint, or "" if kubectl cannot be resolved.
func (a *KubernetesAdapter) ExpectedFingerprint(def localport.ServiceDefinition) string {
	if def.Kubernetes == nil {
		return ""
	}
	binary, err := resolveBinary(kubectlBinary)
	if err != nil {
		return ""
	}
	return fingerprint(binary, kubernetesArgs(def))
}

// GracefulStop sends the terminate signal to the forwarder's process group.
//
// Params:
//   - pid: the process group leader's PID.
//
// Returns:
//   - error: any error delivering the signal.
func (a *KubernetesAdapter) GracefulStop(pid int) error {
	return a.spawner.gracefulStop(pid)
}

// ForceStop kills the forwarder's process group unconditionally.
//
// Params:
//   - pid: the process group leader's PID.
//
// Returns:
//   - error: any error delivering the signal.
func (a *KubernetesAdapter) ForceStop(pid int) error {
	return a.spawner.forceStop(pid)
}

var _ localport.Adapter = (*KubernetesAdapter)(nil)
