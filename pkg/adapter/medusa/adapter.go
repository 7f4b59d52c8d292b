// Package medusa registers the Medusa engine as a stub: the engine is known
// to the registry, but every operation fails with ErrNotImplemented until
// the platform is built out.
package medusa

import (
	"context"
	"fmt"

	"github.com/storeforge/storeforge/pkg/adapter"
	v1alpha1 "github.com/storeforge/storeforge/pkg/apis/store/v1alpha1"
)

// Adapter is the Medusa platform stub.
type Adapter struct{}

var _ adapter.Adapter = (*Adapter)(nil)

// New creates the Medusa stub adapter.
func New() *Adapter {
	return &Adapter{}
}

// Engine returns the medusa engine identifier.
func (a *Adapter) Engine() v1alpha1.Engine {
	return v1alpha1.EngineMedusa
}

// ChartDependency is not implemented yet.
func (a *Adapter) ChartDependency() adapter.ChartDependency {
	return adapter.ChartDependency{}
}

// DefaultValues is not implemented yet.
func (a *Adapter) DefaultValues(_, _ string) map[string]any {
	return nil
}

// Configure is not implemented yet.
func (a *Adapter) Configure(_ context.Context, _, _ string) error {
	return fmt.Errorf("medusa configure: %w", adapter.ErrNotImplemented)
}

// AdminPassword is not implemented yet.
func (a *Adapter) AdminPassword(_ context.Context, _, _ string) (string, error) {
	return "", fmt.Errorf("medusa admin password: %w", adapter.ErrNotImplemented)
}

// PodSelector is not implemented yet.
func (a *Adapter) PodSelector(_ string) string {
	return ""
}

// URLPath returns the Medusa storefront root.
func (a *Adapter) URLPath() string {
	return "/"
}

// IsReady is not implemented yet.
func (a *Adapter) IsReady(_ context.Context, _, _ string) bool {
	return false
}
