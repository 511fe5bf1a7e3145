package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/bankcards-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user to the store.
	// Returns ErrEmailExists or ErrUsernameExists when a unique value is taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByUsername retrieves a user by username (exact match).
	// Returns ErrUserNotFound if the user does not exist.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// ExistsByUsername reports whether any user has the given username.
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// ExistsByEmail reports whether any user has the given email (case-insensitive).
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Search returns a page of users whose username or email contains term,
	// case-insensitively. An empty term matches every user.
	Search(ctx context.Context, term string, page domain.PageRequest) (domain.Page[*domain.User], error)

	// Update overwrites username, email, role, enabled and password hash.
	// Returns ErrUserNotFound if the user does not exist.
	Update(ctx context.Context, user *domain.User) error

	// SetEnabled changes only the enabled flag.
	// Returns ErrUserNotFound if the user does not exist.
	SetEnabled(ctx context.Context, id uuid.UUID, enabled bool) error

	// Delete removes a user.
	// Returns ErrUserNotFound if the user does not exist, ErrReferenced if cards still point to it.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new UserStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) UserStore
}
