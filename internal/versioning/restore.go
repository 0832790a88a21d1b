package versioning

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mtgvault/deckvault/internal/storage/models"
)

// Restore rolls the deck back to the state captured in the target version.
//
// Inside one transaction it force-creates a rollback version capturing the
// state being abandoned, replaces the live main and sideboard entries with
// the target snapshot, and touches the deck's last-modified marker.
// Commander and companion entries are never touched: those are singleton
// slots a user sets independently of build iteration.
//
// The snapshot-then-delete-then-insert ordering under a single transaction
// means a crash never leaves the deck with fewer cards than either the
// pre- or post-restore configuration.
//
// Returns the rollback version so the caller can offer an "undo this
// restore" action referencing it.
func (e *Engine) Restore(ctx context.Context, deckID, targetVersionID string) (*models.DeckVersion, error) {
	var rollback *models.DeckVersion

	err := e.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		decks := e.decks.WithTx(tx)
		versions := e.versions.WithTx(tx)

		target, err := versions.GetByID(ctx, targetVersionID)
		if err != nil {
			return err
		}
		if target == nil || target.DeckID != deckID {
			return fmt.Errorf("%w: version %s", ErrNotFound, targetVersionID)
		}
		if target.Corrupt {
			// Restore is all-or-nothing; a snapshot that cannot be
			// read cannot be replayed.
			return fmt.Errorf("%w: version %s snapshot is unreadable", ErrCorrupt, targetVersionID)
		}

		// Capture the state being abandoned so the restore itself is
		// reversible. The policy always approves rollback versions.
		rollback, err = e.createVersionTx(ctx, tx, deckID, models.SourceRollback, CreateOptions{})
		if err != nil {
			return err
		}

		if err := decks.ClearEntries(ctx, deckID, models.BoardMain, models.BoardSideboard); err != nil {
			return err
		}

		for _, card := range target.Snapshot {
			if card.Board == models.BoardCommander || card.Board == models.BoardCompanion {
				continue
			}
			entry := &models.DeckEntry{
				DeckID:   deckID,
				CardID:   card.CardID,
				Quantity: card.Quantity,
				Board:    card.Board,
			}
			if err := decks.UpsertEntry(ctx, entry); err != nil {
				return err
			}
		}

		return decks.Touch(ctx, deckID, e.now())
	})
	if err != nil {
		return nil, err
	}

	return rollback, nil
}
