package service_test

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/phrazzld/bankcards-api/internal/cardcrypt"
	"github.com/phrazzld/bankcards-api/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 5, 20, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

// newTxDB returns a database whose transaction boundaries are verified at cleanup.
func newTxDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func newCipher(t *testing.T) *cardcrypt.Encryptor {
	t.Helper()
	enc, err := cardcrypt.NewEncryptor([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)
	return enc
}

type cardOpt func(*domain.Card)

func withStatus(s domain.CardStatus) cardOpt { return func(c *domain.Card) { c.Status = s } }

func withExpiration(d time.Time) cardOpt {
	return func(c *domain.Card) { c.ExpirationDate = domain.DateOnly(d) }
}

func newTestCard(t *testing.T, cipher *cardcrypt.Encryptor, owner uuid.UUID, balance string, opts ...cardOpt) *domain.Card {
	t.Helper()
	encrypted, err := cipher.Encrypt("4111111111111234")
	require.NoError(t, err)

	card, err := domain.NewCard(owner, encrypted, "IVAN PETROV", testNow.AddDate(1, 0, 0),
		decimal.RequireFromString(balance), testNow)
	require.NoError(t, err)
	for _, opt := range opts {
		opt(card)
	}
	return card
}

func newTestUser(t *testing.T, username string) *domain.User {
	t.Helper()
	u, err := domain.NewUser(username, username+"@example.com", "hashed:secret123")
	require.NoError(t, err)
	return u
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// txExpect registers the transaction boundaries a service call should produce.
type txExpect struct {
	sqlmock.Sqlmock
}

func (m txExpect) commits() {
	m.ExpectBegin()
	m.ExpectCommit()
}

func (m txExpect) rollsBack() {
	m.ExpectBegin()
	m.ExpectRollback()
}
