package provisioner

import (
	"context"
	"time"

	"k8s.io/client-go/kubernetes"

	"github.com/storeforge/storeforge/pkg/k8s"
	"github.com/storeforge/storeforge/pkg/k8s/readiness"
)

// preflight uses a shorter budget than workload readiness: a namespace that
// is still terminating after a minute of waiting is stuck, not slow.
const (
	preflightAttempts = 12
	preflightInterval = 5 * time.Second
)

// ClusterGate implements NamespaceGate against a live cluster.
type ClusterGate struct {
	clientset kubernetes.Interface
}

var _ NamespaceGate = (*ClusterGate)(nil)

// NewClusterGate creates a namespace pre-flight gate.
func NewClusterGate(clientset kubernetes.Interface) *ClusterGate {
	return &ClusterGate{clientset: clientset}
}

// WaitForAbsence blocks until the namespace is gone, or fails fast when it
// exists and is not terminating.
func (g *ClusterGate) WaitForAbsence(ctx context.Context, namespace string) error {
	return k8s.WaitForNamespaceAbsence(ctx, g.clientset, namespace,
		preflightAttempts, preflightInterval)
}

// ClusterWaiter implements WorkloadWaiter against a live cluster using the
// configured poll budget.
type ClusterWaiter struct {
	clientset kubernetes.Interface
	attempts  int
	interval  time.Duration
}

var _ WorkloadWaiter = (*ClusterWaiter)(nil)

// NewClusterWaiter creates a workload readiness waiter polling attempts times
// with the given interval.
func NewClusterWaiter(
	clientset kubernetes.Interface,
	attempts int,
	interval time.Duration,
) *ClusterWaiter {
	return &ClusterWaiter{
		clientset: clientset,
		attempts:  attempts,
		interval:  interval,
	}
}

// WaitForWorkload polls until a pod matching the selector reports Ready.
func (w *ClusterWaiter) WaitForWorkload(ctx context.Context, namespace, selector string) error {
	return readiness.WaitForPodReady(ctx, w.clientset,
		namespace, selector, w.attempts, w.interval)
}
