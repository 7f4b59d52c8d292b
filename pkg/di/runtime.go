// Package di wires the orchestrator's components together. Each invocation
// gets a fresh injector so tests can swap dependencies by appending modules.
package di

import (
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
)

// Injector is the dependency container handed to modules and handlers.
type Injector = do.Injector

// Module registers one or more dependencies with the injector.
type Module func(Injector) error

// Runtime holds the base module set applied to every invocation.
type Runtime struct {
	modules []Module
}

// New creates a runtime from the given base modules. Nil modules are skipped.
func New(modules ...Module) *Runtime {
	return &Runtime{modules: modules}
}

// Invoke creates a fresh injector, applies the base modules followed by any
// extras in order, then runs the handler. The injector is shut down when the
// handler returns.
func (r *Runtime) Invoke(handler func(Injector) error, extras ...Module) error {
	injector := do.New()
	defer func() { _ = injector.Shutdown() }()

	for _, module := range r.modules {
		if module == nil {
			continue
		}

		if err := module(injector); err != nil {
			return err
		}
	}

	for _, module := range extras {
		if module == nil {
			continue
		}

		if err := module(injector); err != nil {
			return err
		}
	}

	return handler(injector)
}

// RunEWithRuntime adapts an injector-aware handler to a cobra RunE.
func RunEWithRuntime(
	runtime *Runtime,
	handler func(cmd *cobra.Command, injector Injector) error,
) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		return runtime.Invoke(func(injector Injector) error {
			return handler(cmd, injector)
		})
	}
}
