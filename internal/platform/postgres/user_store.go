package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/bankcards-api/internal/domain"
	"github.com/phrazzld/bankcards-api/internal/platform/logger"
	"github.com/phrazzld/bankcards-api/internal/store"
)

const userColumns = `id, username, email, hashed_password, role, enabled, created_at, updated_at`

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the UserStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
func NewPostgresUserStore(db store.DBTX, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

// WithTx implements store.UserStore.WithTx.
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &PostgresUserStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.UserStore.Create.
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		user.ID,
		user.Username,
		user.Email,
		user.HashedPassword,
		user.Role,
		user.Enabled,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("user create rejected by unique index", slog.String("user_id", user.ID.String()))
		} else {
			log.Error("failed to insert user", slog.String("user_id", user.ID.String()), slog.Any("error", err))
		}
		return mapUserUniqueViolation(err)
	}

	log.Debug("user created", slog.String("user_id", user.ID.String()))
	return nil
}

// GetByID implements store.UserStore.GetByID.
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return s.scanOne(ctx, row)
}

// GetByUsername implements store.UserStore.GetByUsername.
func (s *PostgresUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	return s.scanOne(ctx, row)
}

// ExistsByUsername implements store.UserStore.ExistsByUsername.
func (s *PostgresUserStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return s.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username)
}

// ExistsByEmail implements store.UserStore.ExistsByEmail.
func (s *PostgresUserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))`, email)
}

func (s *PostgresUserStore) exists(ctx context.Context, query string, arg string) (bool, error) {
	var found bool
	if err := s.db.QueryRowContext(ctx, query, arg).Scan(&found); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to check user existence", slog.Any("error", err))
		return false, MapError(err)
	}
	return found, nil
}

// Search implements store.UserStore.Search.
func (s *PostgresUserStore) Search(
	ctx context.Context,
	term string,
	page domain.PageRequest,
) (domain.Page[*domain.User], error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	result := domain.Page[*domain.User]{Page: page.Page, Size: page.Size, Items: []*domain.User{}}

	var where whereBuilder
	if term != "" {
		where.add(`(username ILIKE ? OR email ILIKE ?)`, containsPattern(term), containsPattern(term))
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`+where.clause(), where.args...).
		Scan(&result.TotalItems); err != nil {
		log.Error("failed to count users", slog.Any("error", err))
		return result, MapError(err)
	}
	if result.TotalItems == 0 {
		return result, nil
	}

	query := `SELECT ` + userColumns + ` FROM users` + where.clause() +
		` ORDER BY created_at, id LIMIT ` + where.next(1) + ` OFFSET ` + where.next(2)
	args := append(where.args, page.Size, page.Offset())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to search users", slog.Any("error", err))
		return result, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return result, MapError(err)
		}
		result.Items = append(result.Items, user)
	}
	if err := rows.Err(); err != nil {
		return result, MapError(err)
	}

	return result, nil
}

// Update implements store.UserStore.Update.
func (s *PostgresUserStore) Update(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	user.UpdatedAt = time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET username = $1, email = $2, hashed_password = $3, role = $4, enabled = $5, updated_at = $6
		WHERE id = $7`,
		user.Username,
		user.Email,
		user.HashedPassword,
		user.Role,
		user.Enabled,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		log.Debug("failed to update user", slog.String("user_id", user.ID.String()), slog.Any("error", err))
		return mapUserUniqueViolation(err)
	}

	return CheckRowsAffected(result, store.ErrUserNotFound)
}

// SetEnabled implements store.UserStore.SetEnabled.
func (s *PostgresUserStore) SetEnabled(ctx context.Context, id uuid.UUID, enabled bool) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET enabled = $1, updated_at = $2 WHERE id = $3`,
		enabled, time.Now().UTC(), id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to change user enabled flag",
			slog.String("user_id", id.String()), slog.Any("error", err))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrUserNotFound)
}

// Delete implements store.UserStore.Delete.
func (s *PostgresUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: user %s still owns cards", store.ErrReferenced, id)
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete user",
			slog.String("user_id", id.String()), slog.Any("error", err))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrUserNotFound)
}

func (s *PostgresUserStore) scanOne(ctx context.Context, row *sql.Row) (*domain.User, error) {
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to load user", slog.Any("error", err))
		return nil, MapError(err)
	}
	return user, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.HashedPassword,
		&u.Role,
		&u.Enabled,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
