// Package testdb provides helpers for PostgreSQL integration tests.
//
// Each test runs inside a transaction that is rolled back when the test
// function returns, so tests do not need cleanup and can share a database.
//
//	func TestCardStore(t *testing.T) {
//	    db := testdb.Open(t) // skips when no database URL is configured
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        cards := postgres.NewPostgresCardStore(tx, nil)
//	        ...
//	    })
//	}
//
// The database URL is read from DATABASE_URL, then BANKCARDS_TEST_DB_URL.
// Open applies the embedded migrations before returning.
package testdb
