package storage_test

import (
	"context"
	"path/filepath"
	"testing"

	"fintrack/internal/storage"
	"fintrack/internal/storage/storetest"
)

func newSQLite(t *testing.T) storage.Store {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "nested", "fintrack.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteRepository(t *testing.T) {
	storetest.Run(t, newSQLite)
}

func TestSQLiteRepositoryReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fintrack.db")
	ctx := context.Background()

	repo, err := storage.NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := repo.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
	u, err := repo.UserByUsername(ctx, "nobody")
	if err == nil || u != nil {
		t.Fatalf("expected miss on empty database")
	}
	repo.Close()

	// Migrations must be idempotent across restarts.
	repo, err = storage.NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer repo.Close()
}
