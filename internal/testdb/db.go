package testdb

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/phrazzld/bankcards-api/internal/platform/postgres"
	"github.com/stretchr/testify/require"
)

// TestTimeout bounds connection and migration steps.
const TestTimeout = 30 * time.Second

// URLEnvVars lists the variables checked for a test database URL, in order.
var URLEnvVars = []string{"DATABASE_URL", "BANKCARDS_TEST_DB_URL"}

// DatabaseURL returns the first configured test database URL, or "".
func DatabaseURL() string {
	for _, name := range URLEnvVars {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// ShouldSkipDatabaseTest reports whether no test database is configured.
func ShouldSkipDatabaseTest() bool {
	return DatabaseURL() == ""
}

// Open connects to the test database, applies migrations and registers
// cleanup. The test is skipped when no database URL is configured.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	dbURL := DatabaseURL()
	if dbURL == "" {
		t.Skip("DATABASE_URL not set - skipping integration test")
	}

	db, err := sql.Open("pgx", dbURL)
	require.NoError(t, err, "open %s", MaskDatabaseURL(dbURL))
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("database %s unreachable: %v", MaskDatabaseURL(dbURL), err)
	}
	require.NoError(t, postgres.Migrate(ctx, db, nil), "apply migrations")

	return db
}

// WithTx runs fn inside a transaction that is always rolled back.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err, "begin test transaction")

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("failed to roll back test transaction: %v", err)
		}
	}()

	fn(t, tx)
}

// MaskDatabaseURL hides the password of a database URL for logging.
func MaskDatabaseURL(dbURL string) string {
	u, err := url.Parse(dbURL)
	if err != nil {
		return "[unparseable database URL]"
	}
	if u.User != nil {
		if _, hasPassword := u.User.Password(); hasPassword {
			u.User = url.UserPassword(u.User.Username(), "xxxxx")
		}
	}
	return u.String()
}
