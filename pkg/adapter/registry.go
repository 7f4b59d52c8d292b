package adapter

import (
	"fmt"
	"slices"

	v1alpha1 "github.com/storeforge/storeforge/pkg/apis/store/v1alpha1"
)

// Registry maps engine identifiers to adapters. It is populated once at
// startup and read-only afterwards, making unsynchronized concurrent reads
// safe across provisioning pipelines.
type Registry struct {
	entries map[v1alpha1.Engine]registryEntry
}

type registryEntry struct {
	adapter     Adapter
	implemented bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[v1alpha1.Engine]registryEntry)}
}

// Register adds a fully implemented adapter.
func (r *Registry) Register(a Adapter) {
	r.entries[a.Engine()] = registryEntry{adapter: a, implemented: true}
}

// RegisterStub adds an adapter whose methods fail with ErrNotImplemented.
// The engine shows up in SupportedEngines but IsImplemented reports false.
func (r *Registry) RegisterStub(a Adapter) {
	r.entries[a.Engine()] = registryEntry{adapter: a, implemented: false}
}

// Resolve returns the adapter for an engine, or ErrUnsupportedEngine when
// the engine is not registered. Stubbed adapters resolve successfully;
// their methods fail instead.
func (r *Registry) Resolve(engine v1alpha1.Engine) (Adapter, error) {
	entry, ok := r.entries[engine]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEngine, engine)
	}

	return entry.adapter, nil
}

// IsImplemented reports whether the engine is registered with a working
// adapter rather than a stub.
func (r *Registry) IsImplemented(engine v1alpha1.Engine) bool {
	entry, ok := r.entries[engine]

	return ok && entry.implemented
}

// SupportedEngines returns all registered engines, stubs included, sorted
// for stable output.
func (r *Registry) SupportedEngines() []v1alpha1.Engine {
	engines := make([]v1alpha1.Engine, 0, len(r.entries))
	for engine := range r.entries {
		engines = append(engines, engine)
	}

	slices.Sort(engines)

	return engines
}
