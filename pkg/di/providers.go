package di

import (
	"github.com/samber/do/v2"
	"github.com/sirupsen/logrus"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"

	"github.com/storeforge/storeforge/pkg/adapter"
	"github.com/storeforge/storeforge/pkg/adapter/medusa"
	"github.com/storeforge/storeforge/pkg/adapter/woocommerce"
	"github.com/storeforge/storeforge/pkg/client/helm"
	"github.com/storeforge/storeforge/pkg/config"
	"github.com/storeforge/storeforge/pkg/k8s"
	podexec "github.com/storeforge/storeforge/pkg/k8s/exec"
	"github.com/storeforge/storeforge/pkg/server"
	"github.com/storeforge/storeforge/pkg/svc/provisioner"
	"github.com/storeforge/storeforge/pkg/svc/reporter"
)

// Dependency providers.

// NewRuntime constructs the runtime container for the orchestrator. In mock
// mode no cluster-facing dependency is registered; the provisioner
// short-circuits before it would need one.
func NewRuntime(settings *config.Settings, logger logrus.FieldLogger) *Runtime {
	modules := []Module{
		provideSettings(settings),
		provideLogger(logger),
		provideReporter,
	}

	if !settings.MockMode {
		modules = append(modules,
			provideCluster,
			provideHelmClient,
			provideExecutor,
		)
	}

	return New(append(modules,
		provideRegistry,
		provideProvisioner,
		provideServer,
	)...)
}

func provideSettings(settings *config.Settings) Module {
	return func(i Injector) error {
		do.Provide(i, func(Injector) (*config.Settings, error) {
			return settings, nil
		})

		return nil
	}
}

func provideLogger(logger logrus.FieldLogger) Module {
	return func(i Injector) error {
		do.Provide(i, func(Injector) (logrus.FieldLogger, error) {
			return logger, nil
		})

		return nil
	}
}

func provideReporter(i Injector) error {
	do.Provide(i, func(i Injector) (reporter.Interface, error) {
		settings := do.MustInvoke[*config.Settings](i)
		logger := do.MustInvoke[logrus.FieldLogger](i)

		return reporter.New(
			settings.BackendAPIBase,
			settings.OrchestratorToken,
			settings.CallbackTimeout,
			logger,
		), nil
	})

	return nil
}

// clusterClients bundles the clientset with the REST config it was built
// from; the exec transport needs both.
type clusterClients struct {
	clientset  *kubernetes.Clientset
	restConfig *rest.Config
}

func provideCluster(i Injector) error {
	do.Provide(i, func(i Injector) (*clusterClients, error) {
		settings := do.MustInvoke[*config.Settings](i)

		clientset, restConfig, err := k8s.NewClientset(settings.Kubeconfig, settings.KubeContext)
		if err != nil {
			return nil, err
		}

		return &clusterClients{clientset: clientset, restConfig: restConfig}, nil
	})

	return nil
}

func provideHelmClient(i Injector) error {
	do.Provide(i, func(i Injector) (helm.Interface, error) {
		settings := do.MustInvoke[*config.Settings](i)

		return helm.NewClient(settings.Kubeconfig, settings.KubeContext)
	})

	return nil
}

func provideExecutor(i Injector) error {
	do.Provide(i, func(i Injector) (podexec.Interface, error) {
		settings := do.MustInvoke[*config.Settings](i)
		logger := do.MustInvoke[logrus.FieldLogger](i)

		clients, err := do.Invoke[*clusterClients](i)
		if err != nil {
			return nil, err
		}

		return podexec.NewExecutor(
			clients.clientset,
			clients.restConfig,
			logger,
			settings.ExecTimeout,
		), nil
	})

	return nil
}

func provideRegistry(i Injector) error {
	do.Provide(i, func(i Injector) (*adapter.Registry, error) {
		settings := do.MustInvoke[*config.Settings](i)
		logger := do.MustInvoke[logrus.FieldLogger](i)

		registry := adapter.NewRegistry()

		if settings.MockMode {
			// Adapters are never exercised in mock mode; register the
			// engines so request validation still distinguishes supported
			// from unsupported.
			registry.Register(woocommerce.New(nil, nil, logger))
		} else {
			executor := do.MustInvoke[podexec.Interface](i)
			clients := do.MustInvoke[*clusterClients](i)
			registry.Register(woocommerce.New(executor, clients.clientset, logger))
		}

		registry.RegisterStub(medusa.New())

		return registry, nil
	})

	return nil
}

func provideProvisioner(i Injector) error {
	do.Provide(i, func(i Injector) (*provisioner.Provisioner, error) {
		settings := do.MustInvoke[*config.Settings](i)
		logger := do.MustInvoke[logrus.FieldLogger](i)
		registry := do.MustInvoke[*adapter.Registry](i)
		statusReporter := do.MustInvoke[reporter.Interface](i)

		var (
			driver helm.Interface
			gate   provisioner.NamespaceGate
			waiter provisioner.WorkloadWaiter
		)

		if !settings.MockMode {
			var err error

			driver, err = do.Invoke[helm.Interface](i)
			if err != nil {
				return nil, err
			}

			clients := do.MustInvoke[*clusterClients](i)
			gate = provisioner.NewClusterGate(clients.clientset)
			waiter = provisioner.NewClusterWaiter(
				clients.clientset,
				settings.PollAttempts,
				settings.PollInterval,
			)
		}

		return provisioner.New(
			registry,
			driver,
			gate,
			waiter,
			statusReporter,
			settings,
			logger,
		), nil
	})

	return nil
}

func provideServer(i Injector) error {
	do.Provide(i, func(i Injector) (*server.Server, error) {
		settings := do.MustInvoke[*config.Settings](i)
		logger := do.MustInvoke[logrus.FieldLogger](i)

		orchestrator, err := do.Invoke[*provisioner.Provisioner](i)
		if err != nil {
			return nil, err
		}

		return server.New(
			settings.ListenAddr,
			orchestrator,
			settings.OrchestratorToken,
			logger,
		), nil
	})

	return nil
}
