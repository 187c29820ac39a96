// Package testutil provides shared test helpers: throwaway databases and
// product tables with known distributions.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Veraticus/nutrisort/internal/storage"
)

// SetupTestDB creates a new in-memory database with all migrations applied.
// It is closed automatically when the test ends.
func SetupTestDB(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}

// TempDBPath returns a database path inside the test's temporary directory.
func TempDBPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "nutrisort.db")
}
