// Package testutil seeds throwaway SQLite ledgers for tests.
//
// Example:
//
//	db := testutil.SetupTestDB(t, func(b *testutil.Builder) {
//		b.WithBasicCategories().
//			WithIncome("txn-1", testutil.CategoryChores, "2024-01-02", 100).
//			WithBudget(50)
//	})
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Veraticus/pointbook/internal/model"
	"github.com/Veraticus/pointbook/internal/storage"
)

// TestDB is a migrated ledger in a temporary directory.
type TestDB struct {
	Storage    *storage.SQLiteStorage
	t          *testing.T
	Categories map[CategoryName]model.Category
}

// SetupTestDB creates a migrated ledger and applies configure to seed it.
// The database is closed when the test ends.
func SetupTestDB(t *testing.T, configure func(*Builder)) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "pointbook.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	builder := NewBuilder()
	if configure != nil {
		configure(builder)
	}

	cats, err := builder.Build(context.Background(), store)
	if err != nil {
		t.Fatalf("failed to seed test database: %v", err)
	}

	return &TestDB{
		Storage:    store,
		Categories: cats,
		t:          t,
	}
}

// CategoryID returns the id assigned to a seeded category or fails the test.
func (db *TestDB) CategoryID(name CategoryName) string {
	db.t.Helper()
	if name == CategoryGeneral {
		return model.DefaultCategoryID
	}
	cat, ok := db.Categories[name]
	if !ok {
		db.t.Fatalf("category %q was not seeded", name)
	}
	return cat.ID
}
