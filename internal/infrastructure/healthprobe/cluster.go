package healthprobe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/kodflow/daemon/internal/domain/health"
	"github.com/kodflow/daemon/internal/domain/localport"
)

// ClusterProber runs cluster-info-equivalent checks (and optionally pod/node
// listing) against a kubernetes context, independent of any single
// forward's local socket. A failure here is reported as the probed
// service's own result only: it is not combined with a local-socket probe
// and not applied to other services bound to the same context.
type ClusterProber struct {
	kubeconfigPath func() string
}

// NewClusterProber creates a cluster-info prober.
//
// Returns:
//   - *ClusterProber: a ready-to-use prober.
func NewClusterProber() *ClusterProber {
	return &ClusterProber{kubeconfigPath: defaultKubeconfigPath}
}

// Kind returns localport.ProbeKindCluster.
//
// Returns:
//   - localport.ProbeKind: the kind this prober serves.
func (p *ClusterProber) Kind() localport.ProbeKind {
	return localport.ProbeKindCluster
}

// Probe builds a clientset for target.ClusterContext and, per spec.Cluster,
// checks server reachability (cluster-info equivalent) and optionally pod
// and node listing.
//
// Params:
//   - ctx: deadline-bearing context for all API calls.
//   - target: carries the kubeconfig context to probe.
//   - spec: must carry Cluster config.
//
// Returns:
//   - health.CheckResult: success if every configured check succeeded.
func (p *ClusterProber) Probe(ctx context.Context, target localport.Target, spec localport.HealthCheckSpec) health.CheckResult {
	start := time.Now()
	cfg := spec.Cluster
	if cfg == nil {
		cfg = &localport.ClusterProbeConfig{ClusterInfo: true}
	}

	restCfg, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
		&clientcmd.ClientConfigLoadingRules{ExplicitPath: p.kubeconfigPath()},
		&clientcmd.ConfigOverrides{CurrentContext: target.ClusterContext},
	).ClientConfig()
	if err != nil {
		return health.NewFailureCheckResult(time.Since(start), "", fmt.Errorf("loading kubeconfig: %w", err))
	}

	clientset, err := kubernetes.NewForConfig(restCfg)
	if err != nil {
		return health.NewFailureCheckResult(time.Since(start), "", fmt.Errorf("building clientset: %w", err))
	}

	if cfg.ClusterInfo {
		if _, err := clientset.Discovery().ServerVersion(); err != nil {
			return health.NewFailureCheckResult(time.Since(start), "", fmt.Errorf("cluster-info: %w", err))
		}
	}
	if cfg.NodeStatus {
		if _, err := clientset.CoreV1().Nodes().List(ctx, metav1.ListOptions{Limit: 1}); err != nil {
			return health.NewFailureCheckResult(time.Since(start), "", fmt.Errorf("node status: %w", err))
		}
	}
	if cfg.PodStatus {
		if _, err := clientset.CoreV1().Pods("").List(ctx, metav1.ListOptions{Limit: 1}); err != nil {
			return health.NewFailureCheckResult(time.Since(start), "", fmt.Errorf("pod status: %w", err))
		}
	}

	return health.NewSuccessCheckResult(time.Since(start), "cluster reachable")
}

// defaultKubeconfigPath resolves the kubeconfig path the same way the
// kubernetes subprocess adapter does: respect KUBECONFIG, else fall back to
// ~/.kube/config.
//
// Returns:
//   - string: the resolved kubeconfig path.
func defaultKubeconfigPath() string {
	if v := os.Getenv("KUBECONFIG"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".kube", "config")
}

var _ localport.Prober = (*ClusterProber)(nil)
