package storage

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/tmp/test.db")

	if cfg.Path != "/tmp/test.db" {
		t.Errorf("Expected path '/tmp/test.db', got '%s'", cfg.Path)
	}
	if cfg.MaxOpenConns <= 0 {
		t.Error("Expected positive MaxOpenConns")
	}
	if cfg.JournalMode != "WAL" {
		t.Errorf("Expected WAL journal mode, got '%s'", cfg.JournalMode)
	}
}

func TestOpen_NilConfig(t *testing.T) {
	_, err := Open(nil)
	if err == nil {
		t.Error("Expected error for nil config")
	}
}

func TestOpen_InMemory(t *testing.T) {
	cfg := DefaultConfig(":memory:")
	cfg.MaxOpenConns = 1
	cfg.MaxIdleConns = 1

	db, err := Open(cfg)
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			t.Errorf("Error closing database: %v", err)
		}
	}()

	if err := db.Ping(); err != nil {
		t.Errorf("failed to ping database: %v", err)
	}
}

func TestOpen_AutoMigrate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deckvault.db")

	cfg := DefaultConfig(path)
	cfg.AutoMigrate = true

	db, err := Open(cfg)
	if err != nil {
		t.Fatalf("failed to open database with migrations: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			t.Errorf("Error closing database: %v", err)
		}
	}()

	// The initial migration must have created the core tables.
	for _, table := range []string{"decks", "cards", "deck_entries", "deck_versions", "matches"} {
		var name string
		err := db.Conn().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("expected table %s to exist after migration: %v", table, err)
		}
	}
}

func TestMigrationManager_UpDown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deckvault.db")

	mgr, err := NewMigrationManager(path)
	if err != nil {
		t.Fatalf("failed to create migration manager: %v", err)
	}
	defer func() {
		if err := mgr.Close(); err != nil {
			t.Errorf("Error closing migration manager: %v", err)
		}
	}()

	if err := mgr.Up(); err != nil {
		t.Fatalf("failed to apply migrations: %v", err)
	}

	version, dirty, err := mgr.Version()
	if err != nil {
		t.Fatalf("failed to get version: %v", err)
	}
	if dirty {
		t.Error("migration state should not be dirty")
	}
	if version == 0 {
		t.Error("expected a nonzero migration version after Up")
	}

	// Up is idempotent.
	if err := mgr.Up(); err != nil {
		t.Errorf("re-applying migrations should be a no-op: %v", err)
	}

	if err := mgr.Down(); err != nil {
		t.Errorf("failed to roll back: %v", err)
	}
}
