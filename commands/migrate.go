package commands

import (
	"fmt"

	"github.com/masingita/countrybot/config"
	"github.com/masingita/countrybot/db"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			if config.PostgresConnectionString == "" {
				return fmt.Errorf("COUNTRYBOT_POSTGRES_CONNECTION_STRING is required")
			}
			if err := db.Init(cmd.Context()); err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer db.Close()

			log.Info().Msg("Database is up to date")
			return nil
		},
	}
}
