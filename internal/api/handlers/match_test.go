package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/mtgvault/deckvault/internal/storage/models"
	"github.com/mtgvault/deckvault/internal/versioning"
)

func TestRecordMatch(t *testing.T) {
	env := setupTestEnv(t)
	env.createDeck(t, "deck-1", "Test Deck")

	opponent := "Jace"
	rec := doJSON(t, env.router, http.MethodPost, "/decks/deck-1/matches", RecordMatchRequest{
		Result:       "win",
		OpponentName: &opponent,
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var match models.Match
	decodeData(t, rec, &match)
	if match.Result != "win" {
		t.Errorf("expected result 'win', got '%s'", match.Result)
	}
	if match.OpponentName == nil || *match.OpponentName != "Jace" {
		t.Errorf("unexpected opponent: %v", match.OpponentName)
	}
	// No versions exist yet, so the match stays unattributed.
	if match.DeckVersionID != nil {
		t.Errorf("expected orphaned match, got version %s", *match.DeckVersionID)
	}
}

func TestRecordMatch_AttributedToLatestVersion(t *testing.T) {
	env := setupTestEnv(t)
	env.createDeck(t, "deck-1", "Test Deck")
	env.createCard(t, 100, "Abrade")
	env.addEntry(t, "deck-1", 100, 4, models.BoardMain)

	version, err := env.engine.CreateVersion(context.Background(), "deck-1", models.SourceManualEdit, versioning.CreateOptions{})
	if err != nil {
		t.Fatalf("failed to create version: %v", err)
	}

	rec := doJSON(t, env.router, http.MethodPost, "/decks/deck-1/matches", RecordMatchRequest{Result: "loss"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var match models.Match
	decodeData(t, rec, &match)
	if match.DeckVersionID == nil || *match.DeckVersionID != version.ID {
		t.Errorf("expected match attributed to %s, got %v", version.ID, match.DeckVersionID)
	}
}

func TestRecordMatch_InvalidResult(t *testing.T) {
	env := setupTestEnv(t)
	env.createDeck(t, "deck-1", "Test Deck")

	rec := doJSON(t, env.router, http.MethodPost, "/decks/deck-1/matches", RecordMatchRequest{Result: "draw"})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
}

func TestRecordMatch_DeckNotFound(t *testing.T) {
	env := setupTestEnv(t)

	rec := doJSON(t, env.router, http.MethodPost, "/decks/missing/matches", RecordMatchRequest{Result: "win"})

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}
}

func TestRecordMatch_BadPlayedAt(t *testing.T) {
	env := setupTestEnv(t)
	env.createDeck(t, "deck-1", "Test Deck")

	badTime := "yesterday"
	rec := doJSON(t, env.router, http.MethodPost, "/decks/deck-1/matches", RecordMatchRequest{
		Result:   "win",
		PlayedAt: &badTime,
	})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
}

func TestGetMatches(t *testing.T) {
	env := setupTestEnv(t)
	env.createDeck(t, "deck-1", "Test Deck")

	for _, result := range []string{"win", "loss", "win"} {
		rec := doJSON(t, env.router, http.MethodPost, "/decks/deck-1/matches", RecordMatchRequest{Result: result})
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed to record match: status %d", rec.Code)
		}
	}

	rec := doJSON(t, env.router, http.MethodGet, "/decks/deck-1/matches", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var matches []*models.Match
	decodeData(t, rec, &matches)
	if len(matches) != 3 {
		t.Errorf("expected 3 matches, got %d", len(matches))
	}
}

func TestMatchStats_AppearInVersionHistory(t *testing.T) {
	env := setupTestEnv(t)
	env.createDeck(t, "deck-1", "Test Deck")
	env.createCard(t, 100, "Abrade")
	env.addEntry(t, "deck-1", 100, 4, models.BoardMain)

	if _, err := env.engine.CreateVersion(context.Background(), "deck-1", models.SourceManualEdit, versioning.CreateOptions{}); err != nil {
		t.Fatalf("failed to create version: %v", err)
	}

	for _, result := range []string{"win", "win", "loss"} {
		rec := doJSON(t, env.router, http.MethodPost, "/decks/deck-1/matches", RecordMatchRequest{Result: result})
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed to record match: status %d", rec.Code)
		}
	}

	rec := doJSON(t, env.router, http.MethodGet, "/decks/deck-1/versions", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var versions []*models.VersionSummary
	decodeData(t, rec, &versions)
	if len(versions) != 1 {
		t.Fatalf("expected 1 version, got %d", len(versions))
	}
	if versions[0].MatchesWon != 2 || versions[0].MatchesLost != 1 {
		t.Errorf("expected 2-1 record, got %d-%d", versions[0].MatchesWon, versions[0].MatchesLost)
	}
}
