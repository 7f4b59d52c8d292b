package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/storeforge/storeforge/pkg/config"
	"github.com/storeforge/storeforge/pkg/di"
	"github.com/storeforge/storeforge/pkg/ui/notify"
)

// NewServeCmd creates the serve command, which runs the orchestration server
// until interrupted.
func NewServeCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:          "serve",
		Short:        "Run the store orchestration server",
		Long:         "Run the store orchestration server until interrupted (SIGINT/SIGTERM)",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, configFile)
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "",
		"Path to an optional config file (settings also come from the environment)")

	return cmd
}

func runServe(cmd *cobra.Command, configFile string) error {
	settings, err := config.Load(configFile)
	if err != nil {
		return err
	}

	logger := newLogger()

	if settings.MockMode {
		notify.Warningf(cmd.ErrOrStderr(), "mock mode enabled: no cluster calls will be made")
	}

	runtime := di.NewRuntime(settings, logger)

	return runtime.Invoke(func(injector di.Injector) error {
		srv, err := di.ResolveServer(injector)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		notify.Activityf(cmd.OutOrStdout(), "serving on %s", settings.ListenAddr)

		return srv.ListenAndServe(ctx)
	})
}

func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logger.SetLevel(level)
	}

	return logger
}
