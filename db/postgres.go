package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/masingita/countrybot/config"
	"github.com/masingita/countrybot/metrics"
	"github.com/rs/zerolog/log"
)

var pool *pgxpool.Pool

var ErrNotConfigured = errors.New("postgres connection string is not configured")

// Init connects to postgres using the configured connection string and runs
// pending migrations
func Init(ctx context.Context) error {
	if config.PostgresConnectionString == "" {
		return ErrNotConfigured
	}
	err := setupPostgres(ctx, config.PostgresConnectionString)
	if err != nil {
		log.Error().Ctx(ctx).Err(err).Msg("Failed to setup postgres")
		return err
	}
	return nil
}

// Close releases the connection pool
func Close() {
	if pool != nil {
		pool.Close()
		pool = nil
	}
}

// Ping checks that the database is reachable
func Ping(ctx context.Context) error {
	if pool == nil {
		return ErrNotConfigured
	}
	return pool.Ping(ctx)
}

// PoolStats reports connection pool usage, nil before Init
func PoolStats() *pgxpool.Stat {
	if pool == nil {
		return nil
	}
	return pool.Stat()
}

func setupPostgres(ctx context.Context, connectionString string) (err error) {
	conf, err := pgxpool.ParseConfig(connectionString)
	if err != nil {
		log.Error().Ctx(ctx).Err(err).Msg("Failed to parse postgres config")
		return
	}

	conf.MaxConns = 8

	pool, err = pgxpool.NewWithConfig(ctx, conf)
	if err != nil {
		log.Error().Ctx(ctx).Err(err).Msg("Failed to create postgres pool")
		return
	}

	if err = pool.Ping(ctx); err != nil {
		log.Error().Ctx(ctx).Err(err).Msg("Failed to connect to postgres")
		Close()
		return
	}

	metrics.RegisterPgxpoolStatsCollector(pool)

	return migrate(ctx)
}
