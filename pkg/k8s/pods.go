package k8s

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// FindWorkloadPod resolves a label selector to a single running pod name.
//
// Zero matches returns ErrPodNotFound. Multiple matches pick the first-listed
// pod and log the ambiguity: during pod churn (rolling restarts, scale
// events) transient ambiguity is expected and should not fail the caller.
func FindWorkloadPod(
	ctx context.Context,
	clientset kubernetes.Interface,
	logger logrus.FieldLogger,
	namespace, selector string,
) (string, error) {
	pods, err := clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{
		LabelSelector: selector,
	})
	if err != nil {
		return "", fmt.Errorf("list pods in %q: %w", namespace, err)
	}

	running := make([]string, 0, len(pods.Items))

	for i := range pods.Items {
		if pods.Items[i].Status.Phase == corev1.PodRunning {
			running = append(running, pods.Items[i].Name)
		}
	}

	if len(running) == 0 {
		return "", fmt.Errorf("selector %q in namespace %q: %w", selector, namespace, ErrPodNotFound)
	}

	if len(running) > 1 && logger != nil {
		logger.WithFields(logrus.Fields{
			"namespace": namespace,
			"selector":  selector,
			"matches":   len(running),
			"picked":    running[0],
		}).Warn("multiple running pods match selector, picking first")
	}

	return running[0], nil
}

// IsPodReady reports whether the pod has condition Ready=True.
func IsPodReady(pod *corev1.Pod) bool {
	for _, cond := range pod.Status.Conditions {
		if cond.Type == corev1.PodReady {
			return cond.Status == corev1.ConditionTrue
		}
	}

	return false
}
