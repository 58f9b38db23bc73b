package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/masingita/countrybot/api"
	"github.com/masingita/countrybot/chatbot"
	"github.com/masingita/countrybot/config"
	"github.com/masingita/countrybot/countries"
	"github.com/masingita/countrybot/db"
	"github.com/masingita/countrybot/frontend"
	"github.com/masingita/countrybot/routes"
	"github.com/masingita/countrybot/server"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	shutdownTimeout       = 10 * time.Second
	retentionInterval     = time.Hour
	cachePurgeInterval    = 10 * time.Minute
	memoryStoreWarningMsg = "COUNTRYBOT_POSTGRES_CONNECTION_STRING not set, conversations are kept in memory only"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	local, err := countries.LoadLocal()
	if err != nil {
		return fmt.Errorf("failed to load local country data: %w", err)
	}
	client := countries.NewClient(config.CountriesAPIURL, time.Duration(config.APITimeoutSeconds)*time.Second, config.APIRetryAttempts)
	countryService := countries.NewService(client, local, time.Duration(config.CacheTTLSeconds)*time.Second)
	chatService := chatbot.NewService(store, countryService)
	api.Init(chatService, countryService)

	go chatbot.RunRetention(ctx, store, retention(), retentionInterval)
	go purgeCaches(ctx, countryService, cachePurgeInterval)

	version := api.Version
	if version == "dev" {
		version = ""
	}

	table := routes.Default()
	frontend.Register(table)

	gin.SetMode(gin.ReleaseMode)
	router := server.NewRouter(server.Options{
		Routes:          table,
		Frontend:        frontend.Handler(frontend.Options{Version: version}),
		AllowedOrigins:  config.AllowedOrigins,
		DefaultLanguage: config.DefaultLanguage,
		ChatRateLimit:   config.ChatRateLimit,
	})

	log.Info().Str("store", store.Kind()).Str("countries_api", config.CountriesAPIURL).Msg("countrybot starting")
	return server.Run(ctx, server.CreateServer(config.HTTPAddr, router), shutdownTimeout)
}

// openStore connects to Postgres when configured and falls back to memory
func openStore(ctx context.Context) (chatbot.Store, error) {
	if config.PostgresConnectionString == "" {
		log.Warn().Msg(memoryStoreWarningMsg)
		return chatbot.NewMemoryStore(), nil
	}
	if err := db.Init(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return db.NewConversationStore(), nil
}

func retention() time.Duration {
	if config.RetentionDays <= 0 {
		return chatbot.DefaultRetention
	}
	return time.Duration(config.RetentionDays) * 24 * time.Hour
}

func purgeCaches(ctx context.Context, s *countries.Service, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.PurgeExpired(); removed > 0 {
				log.Debug().Int("removed_count", removed).Msg("Purged expired country cache entries")
			}
		}
	}
}
