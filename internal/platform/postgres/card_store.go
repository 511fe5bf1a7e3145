package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/bankcards-api/internal/domain"
	"github.com/phrazzld/bankcards-api/internal/platform/logger"
	"github.com/phrazzld/bankcards-api/internal/store"
)

const cardColumns = `id, user_id, card_number, holder_name, expiration_date, balance, status, created_at, updated_at`

// PostgresCardStore implements the store.CardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCardStore creates a new PostgreSQL implementation of the CardStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresCardStore(db store.DBTX, logger *slog.Logger) *PostgresCardStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCardStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_store")),
	}
}

// Ensure PostgresCardStore implements store.CardStore interface
var _ store.CardStore = (*PostgresCardStore)(nil)

// WithTx implements store.CardStore.WithTx.
func (s *PostgresCardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &PostgresCardStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.CardStore.Create.
func (s *PostgresCardStore) Create(ctx context.Context, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cards (`+cardColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		card.ID,
		card.OwnerID,
		card.EncryptedNumber,
		card.HolderName,
		card.ExpirationDate,
		card.Balance,
		card.Status,
		card.CreatedAt,
		card.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to insert card",
			slog.String("card_id", card.ID.String()),
			slog.String("owner_id", card.OwnerID.String()),
			slog.Any("error", err))
		return MapError(err)
	}

	log.Debug("card created", slog.String("card_id", card.ID.String()))
	return nil
}

// GetByID implements store.CardStore.GetByID.
func (s *PostgresCardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = $1`, id)
	return s.scanOne(ctx, row)
}

// GetByIDForUpdate implements store.CardStore.GetByIDForUpdate.
func (s *PostgresCardStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = $1 FOR UPDATE`, id)
	return s.scanOne(ctx, row)
}

// List implements store.CardStore.List.
func (s *PostgresCardStore) List(
	ctx context.Context,
	filter store.CardFilter,
	page domain.PageRequest,
) (domain.Page[*domain.Card], error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	result := domain.Page[*domain.Card]{Page: page.Page, Size: page.Size, Items: []*domain.Card{}}

	var where whereBuilder
	if filter.OwnerID != nil {
		where.add(`user_id = ?`, *filter.OwnerID)
	}
	if filter.HolderSearch != "" {
		where.add(`holder_name ILIKE ?`, containsPattern(filter.HolderSearch))
	}
	if filter.Status != nil {
		where.add(`status = ?`, *filter.Status)
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cards`+where.clause(), where.args...).
		Scan(&result.TotalItems); err != nil {
		log.Error("failed to count cards", slog.Any("error", err))
		return result, MapError(err)
	}
	if result.TotalItems == 0 {
		return result, nil
	}

	query := `SELECT ` + cardColumns + ` FROM cards` + where.clause() +
		` ORDER BY created_at DESC, id LIMIT ` + where.next(1) + ` OFFSET ` + where.next(2)
	args := append(where.args, page.Size, page.Offset())

	cards, err := s.query(ctx, query, args...)
	if err != nil {
		log.Error("failed to list cards", slog.Any("error", err))
		return result, err
	}
	result.Items = cards
	return result, nil
}

// ListByOwners implements store.CardStore.ListByOwners.
func (s *PostgresCardStore) ListByOwners(
	ctx context.Context,
	ownerIDs []uuid.UUID,
) (map[uuid.UUID][]*domain.Card, error) {
	grouped := make(map[uuid.UUID][]*domain.Card, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return grouped, nil
	}

	placeholders := make([]string, len(ownerIDs))
	args := make([]interface{}, len(ownerIDs))
	for i, id := range ownerIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := `SELECT ` + cardColumns + ` FROM cards WHERE user_id IN (` +
		strings.Join(placeholders, ", ") + `) ORDER BY created_at, id`

	cards, err := s.query(ctx, query, args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list cards by owners",
			slog.Int("owner_count", len(ownerIDs)), slog.Any("error", err))
		return nil, err
	}

	for _, card := range cards {
		grouped[card.OwnerID] = append(grouped[card.OwnerID], card)
	}
	return grouped, nil
}

// CountByOwner implements store.CardStore.CountByOwner.
func (s *PostgresCardStore) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cards WHERE user_id = $1`, ownerID).Scan(&n)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to count cards of owner",
			slog.String("owner_id", ownerID.String()), slog.Any("error", err))
		return 0, MapError(err)
	}
	return n, nil
}

// UpdateStatus implements store.CardStore.UpdateStatus.
func (s *PostgresCardStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.CardStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, domain.ErrInvalidCardStatus)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE cards SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now().UTC(), id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update card status",
			slog.String("card_id", id.String()), slog.Any("error", err))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrCardNotFound)
}

// UpdateBalance implements store.CardStore.UpdateBalance.
func (s *PostgresCardStore) UpdateBalance(ctx context.Context, card *domain.Card) error {
	if card.Balance.IsNegative() {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, domain.ErrNegativeBalance)
	}

	card.UpdatedAt = time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		`UPDATE cards SET balance = $1, updated_at = $2 WHERE id = $3`,
		card.Balance, card.UpdatedAt, card.ID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update card balance",
			slog.String("card_id", card.ID.String()), slog.Any("error", err))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrCardNotFound)
}

// Delete implements store.CardStore.Delete.
func (s *PostgresCardStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM cards WHERE id = $1`, id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete card",
			slog.String("card_id", id.String()), slog.Any("error", err))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrCardNotFound)
}

func (s *PostgresCardStore) query(ctx context.Context, query string, args ...interface{}) ([]*domain.Card, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	cards := []*domain.Card{}
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, MapError(err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return cards, nil
}

func (s *PostgresCardStore) scanOne(ctx context.Context, row *sql.Row) (*domain.Card, error) {
	card, err := scanCard(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCardNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to load card", slog.Any("error", err))
		return nil, MapError(err)
	}
	return card, nil
}

func scanCard(row rowScanner) (*domain.Card, error) {
	var c domain.Card
	err := row.Scan(
		&c.ID,
		&c.OwnerID,
		&c.EncryptedNumber,
		&c.HolderName,
		&c.ExpirationDate,
		&c.Balance,
		&c.Status,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.ExpirationDate = domain.DateOnly(c.ExpirationDate)
	return &c, nil
}
