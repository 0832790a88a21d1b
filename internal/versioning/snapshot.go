package versioning

import (
	"context"
	"fmt"

	"github.com/mtgvault/deckvault/internal/storage/models"
)

// Capture reads the deck's live entries into an ordered snapshot, sorted by
// (board, name) so two structurally equal states serialize identically.
// Read-only and idempotent; returns ErrNotFound if the deck does not exist.
//
// When capture feeds a version insert it runs inside that transaction (see
// createVersionTx) so the snapshot is point-in-time consistent with the
// write that triggered it. This standalone form is for history display and
// external callers.
func (e *Engine) Capture(ctx context.Context, deckID string) ([]models.SnapshotCard, error) {
	deck, err := e.decks.GetByID(ctx, deckID)
	if err != nil {
		return nil, err
	}
	if deck == nil {
		return nil, fmt.Errorf("%w: deck %s", ErrNotFound, deckID)
	}

	return e.decks.SnapshotEntries(ctx, deckID)
}
