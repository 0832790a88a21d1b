package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/mtgvault/deckvault/internal/storage/models"
)

// DeckRepository handles database operations for decks and their live entries.
type DeckRepository interface {
	// WithTx returns a copy of the repository that runs against the given transaction.
	WithTx(tx *sql.Tx) DeckRepository

	// Create inserts a new deck into the database.
	Create(ctx context.Context, deck *models.Deck) error

	// Update updates an existing deck.
	Update(ctx context.Context, deck *models.Deck) error

	// GetByID retrieves a deck by its ID. Returns nil if the deck does not exist.
	GetByID(ctx context.Context, id string) (*models.Deck, error)

	// List retrieves all decks ordered by most recently modified.
	List(ctx context.Context) ([]*models.Deck, error)

	// Delete deletes a deck by its ID.
	Delete(ctx context.Context, id string) error

	// Touch updates the deck's last-modified marker.
	Touch(ctx context.Context, id string, modifiedAt time.Time) error

	// UpsertEntry adds a card to a deck or replaces its quantity if the
	// (deck, card, board) entry already exists.
	UpsertEntry(ctx context.Context, entry *models.DeckEntry) error

	// RemoveEntry removes a card from a deck board.
	RemoveEntry(ctx context.Context, deckID string, cardID int, board models.Board) error

	// GetEntries retrieves all live entries for a deck.
	GetEntries(ctx context.Context, deckID string) ([]*models.DeckEntry, error)

	// ClearEntries removes all entries for a deck on the given boards.
	ClearEntries(ctx context.Context, deckID string, boards ...models.Board) error

	// SnapshotEntries reads the deck's live entries joined to card display
	// names, sorted by (board, name). This is the canonical snapshot order.
	SnapshotEntries(ctx context.Context, deckID string) ([]models.SnapshotCard, error)
}

// deckRepository is the concrete implementation of DeckRepository.
type deckRepository struct {
	q Querier
}

// NewDeckRepository creates a new deck repository.
func NewDeckRepository(db *sql.DB) DeckRepository {
	return &deckRepository{q: db}
}

func (r *deckRepository) WithTx(tx *sql.Tx) DeckRepository {
	return &deckRepository{q: tx}
}

// Create inserts a new deck into the database.
func (r *deckRepository) Create(ctx context.Context, deck *models.Deck) error {
	query := `
		INSERT INTO decks (id, name, format, description, created_at, modified_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.q.ExecContext(ctx, query,
		deck.ID,
		deck.Name,
		deck.Format,
		deck.Description,
		deck.CreatedAt,
		deck.ModifiedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create deck: %w", err)
	}

	return nil
}

// Update updates an existing deck.
func (r *deckRepository) Update(ctx context.Context, deck *models.Deck) error {
	query := `
		UPDATE decks
		SET name = ?, format = ?, description = ?, modified_at = ?
		WHERE id = ?
	`

	_, err := r.q.ExecContext(ctx, query,
		deck.Name,
		deck.Format,
		deck.Description,
		deck.ModifiedAt,
		deck.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update deck: %w", err)
	}

	return nil
}

// GetByID retrieves a deck by its ID.
func (r *deckRepository) GetByID(ctx context.Context, id string) (*models.Deck, error) {
	query := `
		SELECT id, name, format, description, created_at, modified_at
		FROM decks
		WHERE id = ?
	`

	deck := &models.Deck{}
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&deck.ID,
		&deck.Name,
		&deck.Format,
		&deck.Description,
		&deck.CreatedAt,
		&deck.ModifiedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deck by id: %w", err)
	}

	return deck, nil
}

// List retrieves all decks.
func (r *deckRepository) List(ctx context.Context) ([]*models.Deck, error) {
	query := `
		SELECT id, name, format, description, created_at, modified_at
		FROM decks
		ORDER BY modified_at DESC
	`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	defer rows.Close()

	var decks []*models.Deck
	for rows.Next() {
		deck := &models.Deck{}
		err := rows.Scan(
			&deck.ID,
			&deck.Name,
			&deck.Format,
			&deck.Description,
			&deck.CreatedAt,
			&deck.ModifiedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deck: %w", err)
		}
		decks = append(decks, deck)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating decks: %w", err)
	}

	return decks, nil
}

// Delete deletes a deck by its ID.
func (r *deckRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM decks WHERE id = ?`

	_, err := r.q.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete deck: %w", err)
	}

	return nil
}

// Touch updates the deck's last-modified marker.
func (r *deckRepository) Touch(ctx context.Context, id string, modifiedAt time.Time) error {
	query := `UPDATE decks SET modified_at = ? WHERE id = ?`

	_, err := r.q.ExecContext(ctx, query, modifiedAt, id)
	if err != nil {
		return fmt.Errorf("failed to touch deck: %w", err)
	}

	return nil
}

// UpsertEntry adds a card to a deck or replaces its quantity.
func (r *deckRepository) UpsertEntry(ctx context.Context, entry *models.DeckEntry) error {
	query := `
		INSERT INTO deck_entries (deck_id, card_id, quantity, board)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(deck_id, card_id, board) DO UPDATE SET
			quantity = excluded.quantity
	`

	result, err := r.q.ExecContext(ctx, query,
		entry.DeckID,
		entry.CardID,
		entry.Quantity,
		entry.Board,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert deck entry: %w", err)
	}

	// If this is an insert, set the ID
	if entry.ID == 0 {
		id, err := result.LastInsertId()
		if err == nil {
			entry.ID = int(id)
		}
	}

	return nil
}

// RemoveEntry removes a card from a deck board.
func (r *deckRepository) RemoveEntry(ctx context.Context, deckID string, cardID int, board models.Board) error {
	query := `DELETE FROM deck_entries WHERE deck_id = ? AND card_id = ? AND board = ?`

	_, err := r.q.ExecContext(ctx, query, deckID, cardID, board)
	if err != nil {
		return fmt.Errorf("failed to remove deck entry: %w", err)
	}

	return nil
}

// GetEntries retrieves all live entries for a deck.
func (r *deckRepository) GetEntries(ctx context.Context, deckID string) ([]*models.DeckEntry, error) {
	query := `
		SELECT id, deck_id, card_id, quantity, board
		FROM deck_entries
		WHERE deck_id = ?
		ORDER BY board, card_id
	`

	rows, err := r.q.QueryContext(ctx, query, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to get deck entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.DeckEntry
	for rows.Next() {
		entry := &models.DeckEntry{}
		err := rows.Scan(
			&entry.ID,
			&entry.DeckID,
			&entry.CardID,
			&entry.Quantity,
			&entry.Board,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deck entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating deck entries: %w", err)
	}

	return entries, nil
}

// ClearEntries removes all entries for a deck on the given boards.
// With no boards it removes every entry for the deck.
func (r *deckRepository) ClearEntries(ctx context.Context, deckID string, boards ...models.Board) error {
	query := `DELETE FROM deck_entries WHERE deck_id = ?`
	args := []any{deckID}

	if len(boards) > 0 {
		placeholders := strings.Repeat(", ?", len(boards))[2:]
		query += ` AND board IN (` + placeholders + `)`
		for _, board := range boards {
			args = append(args, board)
		}
	}

	_, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to clear deck entries: %w", err)
	}

	return nil
}

// SnapshotEntries reads the deck's live entries joined to card names in
// canonical (board, name) order.
func (r *deckRepository) SnapshotEntries(ctx context.Context, deckID string) ([]models.SnapshotCard, error) {
	query := `
		SELECT de.card_id, c.name, de.quantity, de.board
		FROM deck_entries de
		JOIN cards c ON c.id = de.card_id
		WHERE de.deck_id = ?
		ORDER BY de.board, c.name
	`

	rows, err := r.q.QueryContext(ctx, query, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot entries: %w", err)
	}
	defer rows.Close()

	var cards []models.SnapshotCard
	for rows.Next() {
		var card models.SnapshotCard
		err := rows.Scan(&card.CardID, &card.Name, &card.Quantity, &card.Board)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot entry: %w", err)
		}
		cards = append(cards, card)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshot entries: %w", err)
	}

	return cards, nil
}
