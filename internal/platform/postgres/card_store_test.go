package postgres_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/phrazzld/bankcards-api/internal/domain"
	"github.com/phrazzld/bankcards-api/internal/platform/postgres"
	"github.com/phrazzld/bankcards-api/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cardColumns = []string{
	"id", "user_id", "card_number", "holder_name", "expiration_date", "balance", "status", "created_at", "updated_at",
}

func testCard(t *testing.T, ownerID uuid.UUID) *domain.Card {
	t.Helper()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	c, err := domain.NewCard(ownerID, "ciphertext", "IVAN PETROV", now.AddDate(2, 0, 0), decimal.RequireFromString("150.25"), now)
	require.NoError(t, err)
	return c
}

func cardRow(c *domain.Card) []driver.Value {
	return []driver.Value{
		c.ID.String(), c.OwnerID.String(), c.EncryptedNumber, c.HolderName, c.ExpirationDate,
		c.Balance.StringFixed(2), string(c.Status), c.CreatedAt, c.UpdatedAt,
	}
}

func TestPostgresCardStore_Create(t *testing.T) {
	t.Run("inserts valid card", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := postgres.NewPostgresCardStore(db, nil)
		c := testCard(t, uuid.New())

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO cards")).
			WithArgs(c.ID, c.OwnerID, c.EncryptedNumber, c.HolderName, sqlmock.AnyArg(), c.Balance, c.Status,
				sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.Create(context.Background(), c))
	})

	t.Run("unknown owner", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := postgres.NewPostgresCardStore(db, nil)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO cards")).
			WillReturnError(newPgError(pgerrcode.ForeignKeyViolation, "cards_user_id_fkey"))

		err := s.Create(context.Background(), testCard(t, uuid.New()))
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})

	t.Run("invalid card is rejected", func(t *testing.T) {
		db, _ := newMockDB(t)
		s := postgres.NewPostgresCardStore(db, nil)
		c := testCard(t, uuid.New())
		c.Balance = decimal.RequireFromString("-1")

		assert.ErrorIs(t, s.Create(context.Background(), c), store.ErrInvalidEntity)
	})
}

func TestPostgresCardStore_Get(t *testing.T) {
	t.Run("by id", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := postgres.NewPostgresCardStore(db, nil)
		c := testCard(t, uuid.New())

		mock.ExpectQuery(regexp.QuoteMeta("FROM cards WHERE id = $1")).
			WithArgs(c.ID).
			WillReturnRows(sqlmock.NewRows(cardColumns).AddRow(cardRow(c)...))

		got, err := s.GetByID(context.Background(), c.ID)
		require.NoError(t, err)
		assert.Equal(t, c.OwnerID, got.OwnerID)
		assert.True(t, c.Balance.Equal(got.Balance))
		assert.Equal(t, domain.CardStatusActive, got.Status)
		assert.Equal(t, c.ExpirationDate, got.ExpirationDate)
	})

	t.Run("for update locks the row", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := postgres.NewPostgresCardStore(db, nil)
		c := testCard(t, uuid.New())

		mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 FOR UPDATE")).
			WithArgs(c.ID).
			WillReturnRows(sqlmock.NewRows(cardColumns).AddRow(cardRow(c)...))

		_, err := s.GetByIDForUpdate(context.Background(), c.ID)
		require.NoError(t, err)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := postgres.NewPostgresCardStore(db, nil)

		mock.ExpectQuery(regexp.QuoteMeta("FROM cards WHERE id = $1")).
			WillReturnRows(sqlmock.NewRows(cardColumns))

		_, err := s.GetByID(context.Background(), uuid.New())
		assert.ErrorIs(t, err, store.ErrCardNotFound)
		assert.True(t, store.IsNotFoundError(err))
	})
}

func TestPostgresCardStore_List(t *testing.T) {
	t.Run("combines all filters", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := postgres.NewPostgresCardStore(db, nil)
		owner := uuid.New()
		status := domain.CardStatusBlocked
		c := testCard(t, owner)

		mock.ExpectQuery(regexp.QuoteMeta(
			"SELECT COUNT(*) FROM cards WHERE user_id = $1 AND holder_name ILIKE $2 AND status = $3")).
			WithArgs(owner, "%petrov%", status).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC, id LIMIT $4 OFFSET $5")).
			WithArgs(owner, "%petrov%", status, 10, 0).
			WillReturnRows(sqlmock.NewRows(cardColumns).AddRow(cardRow(c)...))

		page, err := s.List(context.Background(),
			store.CardFilter{OwnerID: &owner, HolderSearch: "petrov", Status: &status},
			domain.PageRequest{Page: 0, Size: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.TotalItems)
		require.Len(t, page.Items, 1)
		assert.Equal(t, c.ID, page.Items[0].ID)
	})

	t.Run("no filters", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := postgres.NewPostgresCardStore(db, nil)

		mock.ExpectQuery(`^SELECT COUNT\(\*\) FROM cards$`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		page, err := s.List(context.Background(), store.CardFilter{}, domain.PageRequest{Page: 3, Size: 20})
		require.NoError(t, err)
		assert.Empty(t, page.Items)
		assert.Equal(t, 3, page.Page)
	})
}

func TestPostgresCardStore_ListByOwners(t *testing.T) {
	t.Run("groups cards by owner", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := postgres.NewPostgresCardStore(db, nil)
		a, b := uuid.New(), uuid.New()
		c1, c2, c3 := testCard(t, a), testCard(t, b), testCard(t, a)

		mock.ExpectQuery(regexp.QuoteMeta("WHERE user_id IN ($1, $2)")).
			WithArgs(a, b).
			WillReturnRows(sqlmock.NewRows(cardColumns).
				AddRow(cardRow(c1)...).
				AddRow(cardRow(c2)...).
				AddRow(cardRow(c3)...))

		grouped, err := s.ListByOwners(context.Background(), []uuid.UUID{a, b})
		require.NoError(t, err)
		assert.Len(t, grouped[a], 2)
		assert.Len(t, grouped[b], 1)
	})

	t.Run("no owners means no query", func(t *testing.T) {
		db, _ := newMockDB(t)
		s := postgres.NewPostgresCardStore(db, nil)

		grouped, err := s.ListByOwners(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, grouped)
	})
}

func TestPostgresCardStore_Updates(t *testing.T) {
	t.Run("count by owner", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := postgres.NewPostgresCardStore(db, nil)
		owner := uuid.New()

		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM cards WHERE user_id = $1")).
			WithArgs(owner).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

		n, err := s.CountByOwner(context.Background(), owner)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("update status", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := postgres.NewPostgresCardStore(db, nil)
		id := uuid.New()

		mock.ExpectExec(regexp.QuoteMeta("UPDATE cards SET status = $1")).
			WithArgs(domain.CardStatusBlocked, sqlmock.AnyArg(), id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, s.UpdateStatus(context.Background(), id, domain.CardStatusBlocked))
	})

	t.Run("update status rejects unknown status", func(t *testing.T) {
		db, _ := newMockDB(t)
		s := postgres.NewPostgresCardStore(db, nil)

		err := s.UpdateStatus(context.Background(), uuid.New(), domain.CardStatus("LOST"))
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})

	t.Run("update balance of missing card", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := postgres.NewPostgresCardStore(db, nil)
		c := testCard(t, uuid.New())

		mock.ExpectExec(regexp.QuoteMeta("UPDATE cards SET balance = $1")).
			WithArgs(c.Balance, sqlmock.AnyArg(), c.ID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, s.UpdateBalance(context.Background(), c), store.ErrCardNotFound)
	})

	t.Run("balance check constraint", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := postgres.NewPostgresCardStore(db, nil)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE cards SET balance = $1")).
			WillReturnError(newPgError(pgerrcode.CheckViolation, "cards_balance_check"))

		assert.ErrorIs(t, s.UpdateBalance(context.Background(), testCard(t, uuid.New())), store.ErrInvalidEntity)
	})

	t.Run("delete", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := postgres.NewPostgresCardStore(db, nil)
		id := uuid.New()

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM cards WHERE id = $1")).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, s.Delete(context.Background(), id))
	})
}

func TestPostgresCardStore_TransferInTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	s := postgres.NewPostgresCardStore(db, nil)
	from, to := testCard(t, uuid.New()), testCard(t, uuid.New())

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE cards SET balance = $1")).
		WithArgs(decimal.RequireFromString("100.25"), sqlmock.AnyArg(), from.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE cards SET balance = $1")).
		WithArgs(to.Balance, sqlmock.AnyArg(), to.ID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := store.RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.WithTx(tx)
		require.NoError(t, from.Debit(decimal.NewFromInt(50)))
		if err := txStore.UpdateBalance(ctx, from); err != nil {
			return err
		}
		return txStore.UpdateBalance(ctx, to)
	})
	assert.ErrorIs(t, err, store.ErrCardNotFound)
}
