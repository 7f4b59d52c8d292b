package readiness

import (
	"context"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/storeforge/storeforge/pkg/k8s"
)

// WaitForPodReady polls until at least one pod matching the selector has
// condition Ready=True. Transient list errors continue the poll rather than
// aborting it; a freshly created namespace can briefly refuse list calls.
func WaitForPodReady(
	ctx context.Context,
	clientset kubernetes.Interface,
	namespace, selector string,
	attempts int,
	interval time.Duration,
) error {
	return Poll(ctx, attempts, interval, func(ctx context.Context) (bool, error) {
		pods, err := clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{
			LabelSelector: selector,
		})
		if err != nil {
			return false, nil //nolint:nilerr // returning nil to continue polling
		}

		for i := range pods.Items {
			if k8s.IsPodReady(&pods.Items[i]) {
				return true, nil
			}
		}

		return false, nil
	})
}
