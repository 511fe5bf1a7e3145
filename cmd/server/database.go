package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/phrazzld/bankcards-api/internal/config"
	"github.com/phrazzld/bankcards-api/internal/platform/postgres"
	"github.com/phrazzld/bankcards-api/internal/redact"
)

const pingTimeout = 5 * time.Second

// openDatabase opens the connection pool, verifies connectivity and applies
// pending migrations when auto_migrate is set.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %s", redact.Error(err))
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %s", redact.Error(err))
	}
	log.Info("database connection established",
		slog.Int("max_open_conns", cfg.MaxOpenConns))

	if cfg.AutoMigrate {
		if err := postgres.Migrate(ctx, db, log); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
		if version, err := postgres.MigrationVersion(ctx, db, log); err == nil {
			log.Info("database schema up to date", slog.Int64("version", version))
		}
	}

	return db, nil
}
