package db

import (
	"database/sql"
	"path/filepath"
	"testing"
)

// NewTestDB opens a throwaway on-disk database with the items schema, using
// the same pragmas as the backend. It is removed when the test ends.
func NewTestDB(tb testing.TB) *sql.DB {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "barang.sqlite3")
	database, err := Open(path)
	if err != nil {
		tb.Fatalf("opening test database %s: %v", path, err)
	}
	tb.Cleanup(func() { database.Close() })

	if err := EnsureSchema(database); err != nil {
		tb.Fatalf("applying schema: %v", err)
	}
	return database
}
