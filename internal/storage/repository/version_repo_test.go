package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mtgvault/deckvault/internal/storage/models"
)

func testVersion(deckID string, number int) *models.DeckVersion {
	return &models.DeckVersion{
		ID:            deckID + "-v" + time.Now().Format("150405.000000000") + string(rune('a'+number)),
		DeckID:        deckID,
		VersionNumber: number,
		Name:          "v1",
		Source:        models.SourceManualEdit,
		Snapshot: []models.SnapshotCard{
			{CardID: 100, Name: "Lightning Bolt", Quantity: 4, Board: models.BoardMain},
		},
		Diff: []models.DeckChange{
			{Action: models.ActionAdded, CardName: "Lightning Bolt", Board: models.BoardMain, Quantity: 4},
		},
		CreatedAt: time.Now(),
	}
}

func TestVersionRepository_InsertAndLatest(t *testing.T) {
	db := setupTestDB(t)
	repo := NewVersionRepository(db)
	ctx := context.Background()

	createTestDeck(t, db, "deck-1", "Test Deck")

	v1 := testVersion("deck-1", 1)
	if err := repo.Insert(ctx, v1); err != nil {
		t.Fatalf("failed to insert version: %v", err)
	}

	v2 := testVersion("deck-1", 2)
	v2.Name = "v2"
	if err := repo.Insert(ctx, v2); err != nil {
		t.Fatalf("failed to insert version: %v", err)
	}

	latest, err := repo.Latest(ctx, "deck-1")
	if err != nil {
		t.Fatalf("failed to get latest version: %v", err)
	}
	if latest == nil {
		t.Fatal("expected a latest version")
	}
	if latest.VersionNumber != 2 {
		t.Errorf("expected latest version 2, got %d", latest.VersionNumber)
	}
	if len(latest.Snapshot) != 1 || latest.Snapshot[0].Name != "Lightning Bolt" {
		t.Errorf("snapshot did not round-trip: %+v", latest.Snapshot)
	}
	if len(latest.Diff) != 1 || latest.Diff[0].Action != models.ActionAdded {
		t.Errorf("diff did not round-trip: %+v", latest.Diff)
	}
}

func TestVersionRepository_Latest_NoVersions(t *testing.T) {
	db := setupTestDB(t)
	repo := NewVersionRepository(db)

	createTestDeck(t, db, "deck-1", "Test Deck")

	latest, err := repo.Latest(context.Background(), "deck-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if latest != nil {
		t.Errorf("expected nil for deck with no versions, got %+v", latest)
	}
}

func TestVersionRepository_DuplicateNumber(t *testing.T) {
	db := setupTestDB(t)
	repo := NewVersionRepository(db)
	ctx := context.Background()

	createTestDeck(t, db, "deck-1", "Test Deck")

	if err := repo.Insert(ctx, testVersion("deck-1", 1)); err != nil {
		t.Fatalf("failed to insert version: %v", err)
	}

	err := repo.Insert(ctx, testVersion("deck-1", 1))
	if !errors.Is(err, ErrDuplicateVersion) {
		t.Errorf("expected ErrDuplicateVersion, got %v", err)
	}
}

func TestVersionRepository_CorruptBlobDegrades(t *testing.T) {
	db := setupTestDB(t)
	repo := NewVersionRepository(db)
	ctx := context.Background()

	createTestDeck(t, db, "deck-1", "Test Deck")

	_, err := db.Exec(`
		INSERT INTO deck_versions (id, deck_id, version_number, name, source, snapshot, diff, created_at)
		VALUES ('bad-version', 'deck-1', 1, 'v1', 'manual_edit', 'not json', '{"schema":1,"changes":[]}', ?)
	`, time.Now())
	if err != nil {
		t.Fatalf("failed to insert corrupt row: %v", err)
	}

	latest, err := repo.Latest(ctx, "deck-1")
	if err != nil {
		t.Fatalf("corrupt blob should not fail the read: %v", err)
	}
	if !latest.Corrupt {
		t.Error("expected version to be flagged corrupt")
	}
	if latest.Snapshot != nil {
		t.Errorf("expected nil snapshot for corrupt blob, got %+v", latest.Snapshot)
	}
	if latest.VersionNumber != 1 {
		t.Errorf("version metadata should survive a corrupt blob, got number %d", latest.VersionNumber)
	}
}

func TestVersionRepository_ListByDeck_MatchStats(t *testing.T) {
	db := setupTestDB(t)
	repo := NewVersionRepository(db)
	matches := NewMatchRepository(db)
	ctx := context.Background()

	createTestDeck(t, db, "deck-1", "Test Deck")

	v1 := testVersion("deck-1", 1)
	if err := repo.Insert(ctx, v1); err != nil {
		t.Fatalf("failed to insert version: %v", err)
	}
	v2 := testVersion("deck-1", 2)
	if err := repo.Insert(ctx, v2); err != nil {
		t.Fatalf("failed to insert version: %v", err)
	}

	now := time.Now()
	for i, result := range []string{"win", "win", "loss"} {
		match := &models.Match{
			ID:            v1.ID + "-m" + string(rune('a'+i)),
			DeckID:        "deck-1",
			DeckVersionID: &v1.ID,
			Result:        result,
			PlayedAt:      now,
			CreatedAt:     now,
		}
		if err := matches.Create(ctx, match); err != nil {
			t.Fatalf("failed to create match: %v", err)
		}
	}

	summaries, err := repo.ListByDeck(ctx, "deck-1")
	if err != nil {
		t.Fatalf("failed to list versions: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 versions, got %d", len(summaries))
	}

	// Newest first.
	if summaries[0].VersionNumber != 2 || summaries[1].VersionNumber != 1 {
		t.Errorf("expected descending version order, got %d then %d",
			summaries[0].VersionNumber, summaries[1].VersionNumber)
	}

	if summaries[1].MatchesWon != 2 || summaries[1].MatchesLost != 1 {
		t.Errorf("expected v1 record 2-1, got %d-%d", summaries[1].MatchesWon, summaries[1].MatchesLost)
	}
	if summaries[0].MatchesWon != 0 || summaries[0].MatchesLost != 0 {
		t.Errorf("expected v2 record 0-0, got %d-%d", summaries[0].MatchesWon, summaries[0].MatchesLost)
	}
}
