package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/bankcards-api/internal/api"
	"github.com/phrazzld/bankcards-api/internal/cardcrypt"
	"github.com/phrazzld/bankcards-api/internal/config"
	"github.com/phrazzld/bankcards-api/internal/platform/postgres"
	"github.com/phrazzld/bankcards-api/internal/service"
	"github.com/phrazzld/bankcards-api/internal/service/auth"
	"github.com/phrazzld/bankcards-api/internal/store"
)

// application holds the shared dependencies of the server.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore store.UserStore
	cardStore store.CardStore

	jwtService auth.JWTService
	hasher     auth.PasswordHasher

	authService service.AuthService
	userService service.UserService
	cardService service.CardService
}

// newApplication wires stores and services around an open database and
// creates the bootstrap administrator when one is configured.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	cipher, err := cardcrypt.NewEncryptor([]byte(cfg.Cards.EncryptionKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize card encryption: %w", err)
	}

	app.hasher = auth.NewBcryptHasher(cfg.Auth.BCryptCost)
	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.cardStore = postgres.NewPostgresCardStore(db, logger)

	app.authService = service.NewAuthService(app.userStore, app.hasher, app.jwtService, db, logger)
	app.userService = service.NewUserService(app.userStore, app.cardStore, cipher, db, logger)
	app.cardService = service.NewCardService(app.cardStore, app.userStore, cipher, db, logger)

	if err := bootstrapAdmin(ctx, app.userStore, app.hasher, cfg.Auth, logger); err != nil {
		return nil, err
	}

	logger.Info("application initialized")
	return app, nil
}

// pagination returns the list size limits from configuration.
func (app *application) pagination() api.Pagination {
	return api.Pagination{
		UserDefaultSize:  app.config.Cards.UserPageSize,
		AdminDefaultSize: app.config.Cards.DefaultPageSize,
		MaxSize:          app.config.Cards.MaxPageSize,
	}
}

// Run serves HTTP until ctx is canceled.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases the database pool.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}
	app.logger.Info("application shutdown completed")
}
