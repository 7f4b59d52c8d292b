// Package exec runs commands inside a store's running workload pod via the
// cluster's remote-execution API. It is the only path the adapters use for
// post-deploy configuration and in-pod checks.
package exec

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/remotecommand"

	"github.com/storeforge/storeforge/pkg/k8s"
)

// DefaultTimeout bounds a single in-pod command execution.
const DefaultTimeout = 2 * time.Minute

// Interface executes a single command inside the workload pod matching a
// selector and returns its stdout.
type Interface interface {
	Exec(ctx context.Context, namespace, podSelector, command string) (string, error)
}

// Executor is the SPDY-based implementation of Interface.
type Executor struct {
	clientset  *kubernetes.Clientset
	restConfig *rest.Config
	logger     logrus.FieldLogger
	timeout    time.Duration
}

var _ Interface = (*Executor)(nil)

// NewExecutor creates a pod command executor. A zero timeout falls back to
// DefaultTimeout.
func NewExecutor(
	clientset *kubernetes.Clientset,
	restConfig *rest.Config,
	logger logrus.FieldLogger,
	timeout time.Duration,
) *Executor {
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return &Executor{
		clientset:  clientset,
		restConfig: restConfig,
		logger:     logger,
		timeout:    timeout,
	}
}

// Exec resolves the selector to one running pod and runs the command through
// a login-less shell. Stdout is returned trimmed; on failure stderr is folded
// into the returned error so the provisioner can report a readable reason.
func (e *Executor) Exec(
	ctx context.Context,
	namespace, podSelector, command string,
) (string, error) {
	podName, err := k8s.FindWorkloadPod(ctx, e.clientset, e.logger, namespace, podSelector)
	if err != nil {
		return "", err
	}

	execCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	request := e.clientset.CoreV1().RESTClient().
		Post().
		Resource("pods").
		Name(podName).
		Namespace(namespace).
		SubResource("exec").
		VersionedParams(&corev1.PodExecOptions{
			Command: []string{"/bin/bash", "-c", command},
			Stdout:  true,
			Stderr:  true,
		}, scheme.ParameterCodec)

	executor, err := remotecommand.NewSPDYExecutor(e.restConfig, "POST", request.URL())
	if err != nil {
		return "", fmt.Errorf("create pod executor: %w", err)
	}

	var stdout, stderr bytes.Buffer

	streamErr := executor.StreamWithContext(execCtx, remotecommand.StreamOptions{
		Stdout: &stdout,
		Stderr: &stderr,
	})
	if streamErr != nil {
		errOutput := strings.TrimSpace(stderr.String())
		if errOutput != "" {
			return "", fmt.Errorf("exec in pod %q: %w: %s", podName, streamErr, errOutput)
		}

		return "", fmt.Errorf("exec in pod %q: %w", podName, streamErr)
	}

	return strings.TrimSpace(stdout.String()), nil
}
