package k8s

import (
	"context"
	"fmt"
	"time"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// NamespaceAbsent reports whether the namespace does not exist. A namespace
// in the Terminating phase counts as present: installing into it would race
// the prior teardown.
func NamespaceAbsent(
	ctx context.Context,
	clientset kubernetes.Interface,
	name string,
) (bool, error) {
	_, err := clientset.CoreV1().Namespaces().Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			return true, nil
		}

		return false, fmt.Errorf("get namespace %q: %w", name, err)
	}

	return false, nil
}

// IsNamespaceTerminating reports whether the namespace exists and is in the
// Terminating phase.
func IsNamespaceTerminating(
	ctx context.Context,
	clientset kubernetes.Interface,
	name string,
) (bool, error) {
	namespace, err := clientset.CoreV1().Namespaces().Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			return false, nil
		}

		return false, fmt.Errorf("get namespace %q: %w", name, err)
	}

	return namespace.Status.Phase == corev1.NamespaceTerminating, nil
}

// WaitForNamespaceAbsence polls until the namespace no longer exists, or the
// attempt budget runs out. Namespace deletion after an uninstall is
// asynchronous, so a store name can only be reused once the old namespace is
// fully gone.
//
// A namespace that exists but is NOT terminating fails fast with
// ErrNamespaceTerminating wrapped in a non-wait reason: waiting would never
// succeed while something else owns the name.
func WaitForNamespaceAbsence(
	ctx context.Context,
	clientset kubernetes.Interface,
	name string,
	attempts int,
	interval time.Duration,
) error {
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		absent, err := NamespaceAbsent(ctx, clientset, name)
		if err != nil {
			return err
		}

		if absent {
			return nil
		}

		terminating, err := IsNamespaceTerminating(ctx, clientset, name)
		if err != nil {
			return err
		}

		if !terminating {
			return fmt.Errorf("namespace %q already exists and is not terminating: %w",
				name, ErrNamespaceTerminating)
		}

		if attempt == attempts {
			break
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			if !timer.Stop() {
				<-timer.C
			}

			return fmt.Errorf("namespace absence wait cancelled: %w", ctx.Err())
		case <-timer.C:
		}
	}

	return fmt.Errorf("namespace %q: %w", name, ErrNamespaceTerminating)
}
