package di

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/storeforge/storeforge/pkg/adapter"
	"github.com/storeforge/storeforge/pkg/server"
	"github.com/storeforge/storeforge/pkg/svc/provisioner"
)

// Dependency resolvers.

// ResolveServer retrieves the HTTP server from the injector with consistent
// error handling.
func ResolveServer(injector Injector) (*server.Server, error) {
	srv, err := do.Invoke[*server.Server](injector)
	if err != nil {
		return nil, fmt.Errorf("resolve server dependency: %w", err)
	}

	return srv, nil
}

// ResolveProvisioner retrieves the provisioner dependency from the injector
// with consistent error handling.
func ResolveProvisioner(injector Injector) (*provisioner.Provisioner, error) {
	prov, err := do.Invoke[*provisioner.Provisioner](injector)
	if err != nil {
		return nil, fmt.Errorf("resolve provisioner dependency: %w", err)
	}

	return prov, nil
}

// ResolveRegistry retrieves the adapter registry dependency from the injector
// with consistent error handling.
func ResolveRegistry(injector Injector) (*adapter.Registry, error) {
	registry, err := do.Invoke[*adapter.Registry](injector)
	if err != nil {
		return nil, fmt.Errorf("resolve registry dependency: %w", err)
	}

	return registry, nil
}
