package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/bankcards-api/internal/domain"
	"github.com/phrazzld/bankcards-api/internal/platform/logger"
	"github.com/phrazzld/bankcards-api/internal/service/auth"
	"github.com/phrazzld/bankcards-api/internal/store"
)

// AuthResult is returned by a successful registration or login.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	UserID    uuid.UUID
	Username  string
	Role      domain.Role
}

// AuthService registers users and issues access tokens.
type AuthService interface {
	// Register creates a USER account and returns a token for it.
	// Returns ErrDuplicateEmail or ErrDuplicateUsername when either value is taken.
	Register(ctx context.Context, username, email, password string) (*AuthResult, error)

	// Authenticate checks the credentials and returns a fresh token.
	// Returns ErrInvalidCredentials for unknown users and wrong passwords alike,
	// ErrAccountDisabled for blocked users.
	Authenticate(ctx context.Context, username, password string) (*AuthResult, error)
}

type authService struct {
	userStore store.UserStore
	hasher    auth.PasswordHasher
	jwt       auth.JWTService
	db        *sql.DB
	logger    *slog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	userStore store.UserStore,
	hasher auth.PasswordHasher,
	jwtService auth.JWTService,
	db *sql.DB,
	logger *slog.Logger,
) AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &authService{
		userStore: userStore,
		hasher:    hasher,
		jwt:       jwtService,
		db:        db,
		logger:    logger.With("component", "auth_service"),
	}
}

// Register implements AuthService.
func (s *authService) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, NewServiceError("auth", "register", err)
	}

	user, err := domain.NewUser(username, email, hash)
	if err != nil {
		return nil, domain.NewValidationError("user", err.Error(), err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.userStore.WithTx(tx)

		taken, err := txStore.ExistsByEmail(ctx, user.Email)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateEmail
		}

		taken, err = txStore.ExistsByUsername(ctx, user.Username)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateUsername
		}

		return duplicateError(txStore.Create(ctx, user))
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) || errors.Is(err, ErrDuplicateUsername) {
			log.Debug("registration rejected", "username", user.Username, "reason", err)
			return nil, err
		}
		log.Error("failed to register user", "username", user.Username, "error", err)
		return nil, NewServiceError("auth", "register", err)
	}

	log.Info("user registered", "user_id", user.ID, "username", user.Username)
	return s.issue(ctx, user)
}

// Authenticate implements AuthService.
func (s *authService) Authenticate(ctx context.Context, username, password string) (*AuthResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.userStore.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("login for unknown username")
			return nil, ErrInvalidCredentials
		}
		log.Error("failed to load user for login", "error", err)
		return nil, NewServiceError("auth", "authenticate", err)
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			log.Error("password comparison failed", "user_id", user.ID, "error", err)
		}
		return nil, ErrInvalidCredentials
	}

	if !user.Enabled {
		log.Debug("login for disabled account", "user_id", user.ID)
		return nil, ErrAccountDisabled
	}

	return s.issue(ctx, user)
}

func (s *authService) issue(ctx context.Context, user *domain.User) (*AuthResult, error) {
	token, expiresAt, err := s.jwt.GenerateToken(ctx, user.ID, user.Role)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to issue token",
			"user_id", user.ID,
			"error", err)
		return nil, NewServiceError("auth", "issue token", err)
	}

	return &AuthResult{
		Token:     token,
		ExpiresAt: expiresAt,
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
	}, nil
}
