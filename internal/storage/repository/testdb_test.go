package repository

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

// setupTestDB creates an in-memory database with the full schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	// Each pooled connection would get its own in-memory database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Error closing database: %v", err)
		}
	})

	schema := `
		CREATE TABLE decks (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			format TEXT NOT NULL,
			description TEXT,
			created_at DATETIME NOT NULL,
			modified_at DATETIME NOT NULL
		);

		CREATE TABLE cards (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			set_code TEXT NOT NULL,
			mana_cost TEXT
		);

		CREATE TABLE deck_entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			deck_id TEXT NOT NULL,
			card_id INTEGER NOT NULL,
			quantity INTEGER NOT NULL,
			board TEXT NOT NULL,
			FOREIGN KEY (deck_id) REFERENCES decks(id) ON DELETE CASCADE,
			UNIQUE(deck_id, card_id, board),
			CHECK(quantity > 0),
			CHECK(board IN ('main', 'sideboard', 'commander', 'companion'))
		);

		CREATE TABLE deck_versions (
			id TEXT PRIMARY KEY,
			deck_id TEXT NOT NULL,
			version_number INTEGER NOT NULL,
			name TEXT NOT NULL,
			source TEXT NOT NULL,
			change_type TEXT,
			snapshot TEXT NOT NULL,
			diff TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (deck_id) REFERENCES decks(id) ON DELETE CASCADE,
			UNIQUE(deck_id, version_number)
		);

		CREATE TABLE matches (
			id TEXT PRIMARY KEY,
			deck_id TEXT NOT NULL,
			deck_version_id TEXT,
			result TEXT NOT NULL,
			opponent_name TEXT,
			played_at DATETIME NOT NULL,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (deck_id) REFERENCES decks(id) ON DELETE CASCADE,
			CHECK(result IN ('win', 'loss'))
		);
	`

	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	return db
}
