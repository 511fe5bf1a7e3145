package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/bankcards-api/internal/config"
	"github.com/phrazzld/bankcards-api/internal/domain"
	"github.com/phrazzld/bankcards-api/internal/service/auth"
	"github.com/phrazzld/bankcards-api/internal/store"
)

// bootstrapAdmin creates the configured administrator if its username is
// still free. Nothing happens when no bootstrap username is configured.
func bootstrapAdmin(
	ctx context.Context,
	users store.UserStore,
	hasher auth.PasswordHasher,
	cfg config.AuthConfig,
	log *slog.Logger,
) error {
	if cfg.BootstrapAdminUsername == "" {
		return nil
	}
	if cfg.BootstrapAdminEmail == "" || cfg.BootstrapAdminPassword == "" {
		return fmt.Errorf("bootstrap admin %q needs an email and a password", cfg.BootstrapAdminUsername)
	}

	exists, err := users.ExistsByUsername(ctx, cfg.BootstrapAdminUsername)
	if err != nil {
		return fmt.Errorf("failed to check bootstrap admin: %w", err)
	}
	if exists {
		log.Debug("bootstrap admin already present",
			slog.String("username", cfg.BootstrapAdminUsername))
		return nil
	}

	hash, err := hasher.Hash(cfg.BootstrapAdminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash bootstrap admin password: %w", err)
	}
	admin, err := domain.NewUser(cfg.BootstrapAdminUsername, cfg.BootstrapAdminEmail, hash)
	if err != nil {
		return fmt.Errorf("invalid bootstrap admin: %w", err)
	}
	admin.Role = domain.RoleAdmin

	if err := users.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create bootstrap admin: %w", err)
	}

	log.Info("bootstrap admin created", slog.String("user_id", admin.ID.String()))
	return nil
}
