// Package adapter defines the platform adapter contract and the registry
// that resolves an engine identifier to its adapter.
//
// Everything platform-specific lives behind the Adapter interface so the
// provisioner never branches on engine type.
package adapter

import (
	"context"

	v1alpha1 "github.com/storeforge/storeforge/pkg/apis/store/v1alpha1"
)

// ChartDependency declares the upstream chart an adapter builds on.
type ChartDependency struct {
	// Name is the dependency chart name (e.g. "wordpress").
	Name string `json:"name"`
	// Version is the accepted version constraint.
	Version string `json:"version"`
	// Repository is the chart's source repository URL.
	Repository string `json:"repository"`
	// Condition is the values path that enables the dependency.
	Condition string `json:"condition"`
}

// Adapter is the fixed capability contract every platform implements.
//
// Methods taking a context perform cluster calls; the rest are pure.
// Configure must be safe to retry: a partial prior attempt cannot corrupt
// state when re-invoked, so implementations use check-before-act command
// sequences.
type Adapter interface {
	// Engine returns the engine identifier this adapter serves.
	Engine() v1alpha1.Engine

	// ChartDependency returns the declarative chart dependency descriptor.
	// Pure, no side effects.
	ChartDependency() ChartDependency

	// DefaultValues renders the platform-specific values tree for a store.
	// Deterministic given the same inputs, except freshly generated
	// credentials, which come from a cryptographically secure source.
	DefaultValues(storeName, host string) map[string]any

	// Configure performs post-deploy setup against the platform's running
	// instance. Returns a structured error so failures stay attributable.
	Configure(ctx context.Context, namespace, releaseName string) error

	// AdminPassword retrieves the platform admin credential, or
	// ErrCredentialUnavailable when it is not available yet.
	AdminPassword(ctx context.Context, namespace, releaseName string) (string, error)

	// PodSelector returns the label selector locating the platform's
	// primary workload pod.
	PodSelector(releaseName string) string

	// URLPath returns the storefront path suffix appended to the base host.
	URLPath() string

	// IsReady reports platform-level readiness beyond "pod is running".
	IsReady(ctx context.Context, namespace, releaseName string) bool
}
