package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "migrations"

// slogGooseLogger routes goose output through slog.
type slogGooseLogger struct {
	logger *slog.Logger
}

func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func prepareGoose(log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(&slogGooseLogger{logger: log.With(slog.String("component", "migrations"))})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return nil
}

// Migrate applies every pending embedded migration.
func Migrate(ctx context.Context, db *sql.DB, log *slog.Logger) error {
	if err := prepareGoose(log); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, migrationsDir); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// MigrationVersion returns the currently applied schema version.
func MigrationVersion(ctx context.Context, db *sql.DB, log *slog.Logger) (int64, error) {
	if err := prepareGoose(log); err != nil {
		return 0, err
	}
	return goose.GetDBVersionContext(ctx, db)
}
