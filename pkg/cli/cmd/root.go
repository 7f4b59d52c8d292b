// Package cmd defines the storeforge command tree.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCmd creates and returns the root command with version info and
// subcommands.
func NewRootCmd(version, commit, date string) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "storeforge",
		Short:        "Storeforge orchestrates e-commerce store deployments on Kubernetes",
		Long:         "Storeforge orchestrates e-commerce store deployments on Kubernetes",
		RunE:         handleRootRunE,
		SilenceUsage: true,
	}

	cmd.Version = fmt.Sprintf("%s (Built on %s from Git SHA %s)", version, date, commit)

	cmd.AddCommand(NewServeCmd())

	return cmd
}

// Execute runs the provided root command and handles errors.
func Execute(cmd *cobra.Command) error {
	err := cmd.Execute()
	if err != nil {
		return fmt.Errorf("command execution failed: %w", err)
	}

	return nil
}

// handleRootRunE handles the root command.
func handleRootRunE(cmd *cobra.Command, _ []string) error {
	// The err can safely be ignored, as it can never fail at runtime.
	_ = cmd.Help()

	return nil
}
