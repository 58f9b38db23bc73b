// Package commands implements the countrybot command line.
package commands

import (
	"fmt"

	"github.com/masingita/countrybot/config"
	"github.com/masingita/countrybot/logging"
	"github.com/spf13/cobra"
)

// Execute runs the command selected by the process arguments
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "countrybot",
		Short:        "Country facts chatbot with a browser frontend",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadEnv(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			logging.Setup()
			return nil
		},
		RunE: runServe,
	}

	root.AddCommand(serveCmd(), migrateCmd(), cleanupCmd())
	return root
}
