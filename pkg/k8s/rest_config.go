// Package k8s provides Kubernetes client construction and the cluster-level
// helpers the orchestrator needs: namespace lifecycle checks and workload pod
// lookup by selector.
package k8s

import (
	"fmt"
	"os"
	"path/filepath"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// DefaultKubeconfigPath returns the default kubeconfig path for the current user.
func DefaultKubeconfigPath() string {
	homeDir, _ := os.UserHomeDir()

	return filepath.Join(homeDir, ".kube", "config")
}

// GetRESTConfig loads the kubeconfig using the standard client-go loading
// rules (KUBECONFIG env var, default path) and returns a REST config.
func GetRESTConfig() (*rest.Config, error) {
	config, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
		clientcmd.NewDefaultClientConfigLoadingRules(),
		&clientcmd.ConfigOverrides{},
	).ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("load kubeconfig: %w", err)
	}

	return config, nil
}

// BuildRESTConfig builds a Kubernetes REST config from an explicit kubeconfig
// path and optional context. An empty context uses the kubeconfig's default.
func BuildRESTConfig(kubeconfig, context string) (*rest.Config, error) {
	if kubeconfig == "" {
		return nil, ErrKubeconfigPathEmpty
	}

	loadingRules := &clientcmd.ClientConfigLoadingRules{ExplicitPath: kubeconfig}

	overrides := &clientcmd.ConfigOverrides{}
	if context != "" {
		overrides.CurrentContext = context
	}

	clientConfig := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, overrides)

	restConfig, err := clientConfig.ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
	}

	return restConfig, nil
}

// NewClientset builds a typed clientset from a kubeconfig path and optional
// context, falling back to the default loading rules when the path is empty.
func NewClientset(kubeconfig, context string) (*kubernetes.Clientset, *rest.Config, error) {
	var (
		restConfig *rest.Config
		err        error
	)

	if kubeconfig == "" {
		restConfig, err = GetRESTConfig()
	} else {
		restConfig, err = BuildRESTConfig(kubeconfig, context)
	}

	if err != nil {
		return nil, nil, err
	}

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("create kubernetes client: %w", err)
	}

	return clientset, restConfig, nil
}
