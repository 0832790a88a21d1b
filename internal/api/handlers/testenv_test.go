package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mtgvault/deckvault/internal/storage"
	"github.com/mtgvault/deckvault/internal/storage/models"
	"github.com/mtgvault/deckvault/internal/storage/repository"
	"github.com/mtgvault/deckvault/internal/versioning"
)

const handlerTestSchema = `
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
		UNIQUE(deck_id, card_id, board)
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
		UNIQUE(deck_id, version_number)
	);

	CREATE TABLE matches (
		id TEXT PRIMARY KEY,
		deck_id TEXT NOT NULL,
		deck_version_id TEXT,
		result TEXT NOT NULL,
		opponent_name TEXT,
		played_at DATETIME NOT NULL,
		created_at DATETIME NOT NULL
	);
`

// testEnv wires handlers onto a router over a real in-memory database, so
// handler tests exercise the same SQL paths production does.
type testEnv struct {
	db       *storage.DB
	decks    repository.DeckRepository
	cards    repository.CardRepository
	versions repository.VersionRepository
	matches  repository.MatchRepository
	engine   *versioning.Engine
	router   chi.Router
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := storage.DefaultConfig(":memory:")
	// Every pooled connection would see its own in-memory database.
	cfg.MaxOpenConns = 1
	cfg.MaxIdleConns = 1

	db, err := storage.Open(cfg)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Error closing database: %v", err)
		}
	})

	if _, err := db.Conn().Exec(handlerTestSchema); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	env := &testEnv{
		db:       db,
		decks:    repository.NewDeckRepository(db.Conn()),
		cards:    repository.NewCardRepository(db.Conn()),
		versions: repository.NewVersionRepository(db.Conn()),
		matches:  repository.NewMatchRepository(db.Conn()),
		engine:   versioning.NewEngine(db, versioning.DefaultConfig()),
	}

	deckHandler := NewDeckHandler(env.decks, env.cards, env.engine)
	versionHandler := NewVersionHandler(env.engine)
	matchHandler := NewMatchHandler(env.matches, env.decks, env.versions)
	cardHandler := NewCardHandler(env.cards)

	router := chi.NewRouter()
	router.Route("/decks", func(r chi.Router) {
		r.Get("/", deckHandler.GetDecks)
		r.Post("/", deckHandler.CreateDeck)
		r.Get("/{deckID}", deckHandler.GetDeck)
		r.Put("/{deckID}", deckHandler.UpdateDeck)
		r.Delete("/{deckID}", deckHandler.DeleteDeck)
		r.Put("/{deckID}/entries", deckHandler.UpsertEntry)
		r.Post("/{deckID}/entries/remove", deckHandler.RemoveEntry)
		r.Post("/{deckID}/import", deckHandler.ImportDeck)
		r.Get("/{deckID}/snapshot", versionHandler.GetSnapshot)
		r.Route("/{deckID}/versions", func(r chi.Router) {
			r.Get("/", versionHandler.ListVersions)
			r.Post("/", versionHandler.CreateVersion)
			r.Get("/{versionID}", versionHandler.GetVersion)
			r.Post("/{versionID}/restore", versionHandler.Restore)
		})
		r.Get("/{deckID}/matches", matchHandler.GetMatches)
		r.Post("/{deckID}/matches", matchHandler.RecordMatch)
	})
	router.Route("/cards", func(r chi.Router) {
		r.Get("/", cardHandler.SearchCards)
		r.Get("/{cardID}", cardHandler.GetCard)
	})
	env.router = router

	return env
}

func (env *testEnv) createDeck(t *testing.T, deckID, name string) {
	t.Helper()

	now := time.Now()
	deck := &models.Deck{ID: deckID, Name: name, Format: "Standard", CreatedAt: now, ModifiedAt: now}
	if err := env.decks.Create(context.Background(), deck); err != nil {
		t.Fatalf("failed to create deck: %v", err)
	}
}

func (env *testEnv) createCard(t *testing.T, id int, name string) {
	t.Helper()

	if err := env.cards.Upsert(context.Background(), &models.Card{ID: id, Name: name, SetCode: "TST"}); err != nil {
		t.Fatalf("failed to create card: %v", err)
	}
}

func (env *testEnv) addEntry(t *testing.T, deckID string, cardID, qty int, board models.Board) {
	t.Helper()

	entry := &models.DeckEntry{DeckID: deckID, CardID: cardID, Quantity: qty, Board: board}
	if err := env.decks.UpsertEntry(context.Background(), entry); err != nil {
		t.Fatalf("failed to add entry: %v", err)
	}
}
