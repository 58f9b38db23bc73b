package commands

import (
	"fmt"

	"github.com/masingita/countrybot/api"
	"github.com/masingita/countrybot/chatbot"
	"github.com/masingita/countrybot/config"
	"github.com/masingita/countrybot/db"
	"github.com/spf13/cobra"
)

func cleanupCmd() *cobra.Command {
	var olderThan string

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete stored conversations not updated within the retention period",
		RunE: func(cmd *cobra.Command, args []string) error {
			maxAge := retention()
			if olderThan != "" {
				d, err := api.ParseAge(olderThan)
				if err != nil {
					return err
				}
				maxAge = d
			}

			if config.PostgresConnectionString == "" {
				return fmt.Errorf("COUNTRYBOT_POSTGRES_CONNECTION_STRING is required")
			}
			if err := db.Init(cmd.Context()); err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer db.Close()

			count, err := chatbot.NewService(db.NewConversationStore(), nil).DeleteOlderThan(cmd.Context(), maxAge)
			if err != nil {
				return fmt.Errorf("failed to delete conversations: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d conversations older than %s\n", count, maxAge)
			return nil
		},
	}

	cmd.Flags().StringVar(&olderThan, "older-than", "", "age such as 720h or 30d (default the configured retention)")
	return cmd
}
