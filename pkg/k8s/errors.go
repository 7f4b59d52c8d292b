package k8s

import "errors"

// ErrKubeconfigPathEmpty is returned when kubeconfig path is empty.
var ErrKubeconfigPathEmpty = errors.New("kubeconfig path is empty")

// ErrNamespaceTerminating is returned when a namespace still exists because a
// prior teardown has not finished. Retryable precondition failure: callers
// poll namespace absence before reusing the name.
var ErrNamespaceTerminating = errors.New("namespace is still terminating")

// ErrPodNotFound is returned when no running pod matches a workload selector.
var ErrPodNotFound = errors.New("no running pod matches selector")
