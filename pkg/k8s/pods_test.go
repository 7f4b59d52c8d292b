package k8s_test

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/storeforge/storeforge/pkg/k8s"
)

const wordpressSelector = "app.kubernetes.io/name=wordpress"

func newPod(name, namespace string, phase corev1.PodPhase, ready bool) *corev1.Pod {
	readyStatus := corev1.ConditionFalse
	if ready {
		readyStatus = corev1.ConditionTrue
	}

	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
			Labels:    map[string]string{"app.kubernetes.io/name": "wordpress"},
		},
		Status: corev1.PodStatus{
			Phase: phase,
			Conditions: []corev1.PodCondition{
				{Type: corev1.PodReady, Status: readyStatus},
			},
		},
	}
}

func discardLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return logger
}

func TestFindWorkloadPod_SingleRunningPod(t *testing.T) {
	t.Parallel()

	clientset := fake.NewClientset(newPod("wordpress-0", "shop-one", corev1.PodRunning, true))

	name, err := k8s.FindWorkloadPod(
		context.Background(), clientset, discardLogger(), "shop-one", wordpressSelector)

	require.NoError(t, err)
	assert.Equal(t, "wordpress-0", name)
}

func TestFindWorkloadPod_NoMatch(t *testing.T) {
	t.Parallel()

	clientset := fake.NewClientset()

	_, err := k8s.FindWorkloadPod(
		context.Background(), clientset, discardLogger(), "shop-one", wordpressSelector)

	require.Error(t, err)
	assert.ErrorIs(t, err, k8s.ErrPodNotFound)
}

func TestFindWorkloadPod_IgnoresNonRunningPods(t *testing.T) {
	t.Parallel()

	clientset := fake.NewClientset(
		newPod("wordpress-pending", "shop-one", corev1.PodPending, false),
		newPod("wordpress-failed", "shop-one", corev1.PodFailed, false),
	)

	_, err := k8s.FindWorkloadPod(
		context.Background(), clientset, discardLogger(), "shop-one", wordpressSelector)

	require.Error(t, err)
	assert.ErrorIs(t, err, k8s.ErrPodNotFound)
}

func TestFindWorkloadPod_MultipleRunningPicksFirst(t *testing.T) {
	t.Parallel()

	clientset := fake.NewClientset(
		newPod("wordpress-0", "shop-one", corev1.PodRunning, true),
		newPod("wordpress-1", "shop-one", corev1.PodRunning, true),
	)

	name, err := k8s.FindWorkloadPod(
		context.Background(), clientset, discardLogger(), "shop-one", wordpressSelector)

	require.NoError(t, err)
	assert.NotEmpty(t, name)
}

func TestFindWorkloadPod_ScopedToNamespace(t *testing.T) {
	t.Parallel()

	clientset := fake.NewClientset(newPod("wordpress-0", "other-ns", corev1.PodRunning, true))

	_, err := k8s.FindWorkloadPod(
		context.Background(), clientset, discardLogger(), "shop-one", wordpressSelector)

	require.Error(t, err)
	assert.ErrorIs(t, err, k8s.ErrPodNotFound)
}

func TestIsPodReady(t *testing.T) {
	t.Parallel()

	assert.True(t, k8s.IsPodReady(newPod("a", "ns", corev1.PodRunning, true)))
	assert.False(t, k8s.IsPodReady(newPod("b", "ns", corev1.PodRunning, false)))
	assert.False(t, k8s.IsPodReady(&corev1.Pod{}))
}
