package db

import (
	"context"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

//go:embed migrations
var migrations embed.FS

const createMigrationsTableSQL = `
CREATE TABLE IF NOT EXISTS migrations (
    name TEXT PRIMARY KEY,
    hash TEXT NOT NULL,
    executed_at TIMESTAMP WITH TIME ZONE NOT NULL
);`

type migration struct {
	name    string
	content string
	hash    string
}

// loadMigrations reads the embedded .sql files in name order
func loadMigrations(fsys fs.FS) ([]migration, error) {
	entries, err := fs.ReadDir(fsys, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	out := make([]migration, 0, len(names))
	for _, name := range names {
		content, err := fs.ReadFile(fsys, "migrations/"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", name, err)
		}
		hash := sha256.Sum256(content)
		out = append(out, migration{name: name, content: string(content), hash: hex.EncodeToString(hash[:])})
	}
	return out, nil
}

func migrate(ctx context.Context) error {
	_, err := pool.Exec(ctx, createMigrationsTableSQL)
	if err != nil {
		log.Error().Ctx(ctx).Err(err).Msg("Failed to create migrations table")
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	pending, err := loadMigrations(migrations)
	if err != nil {
		log.Error().Ctx(ctx).Err(err).Msg("Failed to load migrations")
		return err
	}

	for _, m := range pending {
		var exists bool
		var storedHash string
		err := pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM migrations WHERE name = $1), COALESCE((SELECT hash FROM migrations WHERE name = $1), '') as hash", m.name).Scan(&exists, &storedHash)
		if err != nil {
			log.Error().Ctx(ctx).Err(err).Str("migration_file", m.name).Msg("Failed to check migration status")
			return fmt.Errorf("failed to check migration status for %s: %w", m.name, err)
		}

		if exists {
			if m.hash != storedHash {
				log.Error().Ctx(ctx).
					Str("migration_file", m.name).
					Str("stored_hash", storedHash).
					Str("current_hash", m.hash).
					Msg("Migration file has changed after being executed")
				return fmt.Errorf("migration file %s has been modified after execution", m.name)
			}
			log.Debug().Ctx(ctx).Str("migration_file", m.name).Msg("Migration already executed, skipping")
			continue
		}

		if err := apply(ctx, m); err != nil {
			return err
		}
		log.Info().Ctx(ctx).Str("migration_file", m.name).Msg("Successfully executed migration")
	}

	return nil
}

// apply runs one migration and records it in the same transaction
func apply(ctx context.Context, m migration) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Error().Ctx(ctx).Err(err).Str("migration_file", m.name).Msg("Failed to begin transaction")
		return fmt.Errorf("failed to begin transaction for %s: %w", m.name, err)
	}
	defer tx.Rollback(ctx)

	if _, err = tx.Exec(ctx, m.content); err != nil {
		log.Error().Ctx(ctx).Err(err).Str("migration_file", m.name).Msg("Failed to execute migration")
		return fmt.Errorf("failed to execute migration %s: %w", m.name, err)
	}

	_, err = tx.Exec(ctx, "INSERT INTO migrations (name, hash, executed_at) VALUES ($1, $2, $3)",
		m.name, m.hash, time.Now().UTC())
	if err != nil {
		log.Error().Ctx(ctx).Err(err).Str("migration_file", m.name).Msg("Failed to record migration")
		return fmt.Errorf("failed to record migration %s: %w", m.name, err)
	}

	if err = tx.Commit(ctx); err != nil {
		log.Error().Ctx(ctx).Err(err).Str("migration_file", m.name).Msg("Failed to commit migration transaction")
		return fmt.Errorf("failed to commit migration %s: %w", m.name, err)
	}
	return nil
}
