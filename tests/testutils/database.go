package testutils

import (
	"database/sql"
	"path/filepath"
	"testing"

	"cirrus/db"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

func SetupTestDatabase(t *testing.T) *sql.DB {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	testDB, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_timeout=10000&_foreign_keys=on")
	require.NoError(t, err)

	err = db.InitializeSchema(testDB)
	require.NoError(t, err)

	t.Cleanup(func() { testDB.Close() })

	return testDB
}

func SetupTestRepositoryFactory(t *testing.T) *db.RepositoryFactory {
	testDB := SetupTestDatabase(t)
	return db.NewRepositoryFactory(testDB, "cirrus_test")
}
