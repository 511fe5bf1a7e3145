package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/bankcards-api/internal/cardcrypt"
	"github.com/phrazzld/bankcards-api/internal/domain"
	"github.com/phrazzld/bankcards-api/internal/platform/logger"
	"github.com/phrazzld/bankcards-api/internal/store"
)

// UserUpdate carries every field an administrator may overwrite.
type UserUpdate struct {
	Username string
	Email    string
	Enabled  bool
	Role     domain.Role
}

// UserService provides the administrator's user management operations.
type UserService interface {
	// GetUser retrieves a user with its cards.
	GetUser(ctx context.Context, id uuid.UUID) (*UserWithCards, error)

	// ListUsers returns a page of users whose username or email contains search.
	ListUsers(ctx context.Context, search string, page domain.PageRequest) (*domain.Page[UserWithCards], error)

	// UpdateUser overwrites username, email, enabled flag and role.
	UpdateUser(ctx context.Context, id uuid.UUID, update UserUpdate) (*UserWithCards, error)

	// BlockUser disables the account; the user can no longer log in or use issued tokens.
	BlockUser(ctx context.Context, id uuid.UUID) error

	// UnblockUser re-enables the account.
	UnblockUser(ctx context.Context, id uuid.UUID) error

	// DeleteUser removes a user that owns no cards.
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	userStore store.UserStore
	cardStore store.CardStore
	presenter cardPresenter
	db        *sql.DB
	logger    *slog.Logger
}

// NewUserService creates a new UserService
func NewUserService(
	userStore store.UserStore,
	cardStore store.CardStore,
	cipher cardcrypt.Cipher,
	db *sql.DB,
	logger *slog.Logger,
) UserService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "user_service")
	return &UserServiceImpl{
		userStore: userStore,
		cardStore: cardStore,
		presenter: cardPresenter{cipher: cipher, logger: logger},
		db:        db,
		logger:    logger,
	}
}

// GetUser implements UserService.
func (s *UserServiceImpl) GetUser(ctx context.Context, id uuid.UUID) (*UserWithCards, error) {
	user, err := s.userStore.GetByID(ctx, id)
	if err != nil {
		return nil, s.wrap(ctx, "get user", err)
	}
	return s.withCards(ctx, s.cardStore, user)
}

// ListUsers implements UserService.
func (s *UserServiceImpl) ListUsers(
	ctx context.Context,
	search string,
	page domain.PageRequest,
) (*domain.Page[UserWithCards], error) {
	users, err := s.userStore.Search(ctx, strings.TrimSpace(search), page)
	if err != nil {
		return nil, s.wrap(ctx, "list users", err)
	}

	ids := make([]uuid.UUID, 0, len(users.Items))
	for _, u := range users.Items {
		ids = append(ids, u.ID)
	}
	cards, err := s.cardStore.ListByOwners(ctx, ids)
	if err != nil {
		return nil, s.wrap(ctx, "list users", err)
	}

	result := domain.MapPage(users, func(u *domain.User) UserWithCards {
		return UserWithCards{User: u, Cards: s.presenter.views(cards[u.ID])}
	})
	return &result, nil
}

// UpdateUser implements UserService.
func (s *UserServiceImpl) UpdateUser(ctx context.Context, id uuid.UUID, update UserUpdate) (*UserWithCards, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	var result *UserWithCards

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		users := s.userStore.WithTx(tx)

		user, err := users.GetByID(ctx, id)
		if err != nil {
			return err
		}

		username := strings.TrimSpace(update.Username)
		email := strings.TrimSpace(update.Email)

		if username != user.Username {
			taken, err := users.ExistsByUsername(ctx, username)
			if err != nil {
				return err
			}
			if taken {
				return ErrDuplicateUsername
			}
		}
		if !strings.EqualFold(email, user.Email) {
			taken, err := users.ExistsByEmail(ctx, email)
			if err != nil {
				return err
			}
			if taken {
				return ErrDuplicateEmail
			}
		}

		user.Username = username
		user.Email = email
		user.Enabled = update.Enabled
		user.Role = update.Role
		if err := user.Validate(); err != nil {
			return domain.NewValidationError("user", err.Error(), err)
		}

		if err := users.Update(ctx, user); err != nil {
			return duplicateError(err)
		}

		result, err = s.withCards(ctx, s.cardStore.WithTx(tx), user)
		return err
	})
	if err != nil {
		return nil, s.wrap(ctx, "update user", err)
	}

	log.Info("user updated",
		"user_id", id,
		"role", update.Role,
		"enabled", update.Enabled)
	return result, nil
}

// BlockUser implements UserService.
func (s *UserServiceImpl) BlockUser(ctx context.Context, id uuid.UUID) error {
	return s.setEnabled(ctx, id, false)
}

// UnblockUser implements UserService.
func (s *UserServiceImpl) UnblockUser(ctx context.Context, id uuid.UUID) error {
	return s.setEnabled(ctx, id, true)
}

func (s *UserServiceImpl) setEnabled(ctx context.Context, id uuid.UUID, enabled bool) error {
	if err := s.userStore.SetEnabled(ctx, id, enabled); err != nil {
		return s.wrap(ctx, "set enabled", err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("user enabled flag changed",
		"user_id", id,
		"enabled", enabled)
	return nil
}

// DeleteUser implements UserService.
func (s *UserServiceImpl) DeleteUser(ctx context.Context, id uuid.UUID) error {
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		users := s.userStore.WithTx(tx)

		if _, err := users.GetByID(ctx, id); err != nil {
			return err
		}

		owned, err := s.cardStore.WithTx(tx).CountByOwner(ctx, id)
		if err != nil {
			return err
		}
		if owned > 0 {
			return ErrUserHasCards
		}

		if err := users.Delete(ctx, id); err != nil {
			if errors.Is(err, store.ErrReferenced) {
				return ErrUserHasCards
			}
			return err
		}
		return nil
	})
	if err != nil {
		return s.wrap(ctx, "delete user", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("user deleted", "user_id", id)
	return nil
}

func (s *UserServiceImpl) withCards(ctx context.Context, cards store.CardStore, user *domain.User) (*UserWithCards, error) {
	owned, err := cards.ListByOwners(ctx, []uuid.UUID{user.ID})
	if err != nil {
		return nil, err
	}
	return &UserWithCards{User: user, Cards: s.presenter.views(owned[user.ID])}, nil
}

// wrap passes expected outcomes through unchanged and logs everything else.
func (s *UserServiceImpl) wrap(ctx context.Context, operation string, err error) error {
	switch {
	case store.IsNotFoundError(err),
		store.IsDuplicateError(err),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, ErrUserHasCards):
		logger.FromContextOrDefault(ctx, s.logger).Debug("user operation rejected",
			"operation", operation,
			"reason", err)
		return fmt.Errorf("%s: %w", operation, err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Error("user operation failed",
		"operation", operation,
		"error", err)
	return NewServiceError("user", operation, err)
}
