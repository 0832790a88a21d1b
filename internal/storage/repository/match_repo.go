package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mtgvault/deckvault/internal/storage/models"
)

// MatchRepository handles database operations for recorded match results.
type MatchRepository interface {
	// WithTx returns a copy of the repository that runs against the given transaction.
	WithTx(tx *sql.Tx) MatchRepository

	// Create inserts a new match into the database. DeckVersionID may be
	// nil; the match is then attributed later by AttachOrphans.
	Create(ctx context.Context, match *models.Match) error

	// GetByID retrieves a match by its ID. Returns nil if not found.
	GetByID(ctx context.Context, id string) (*models.Match, error)

	// ListByDeck retrieves all matches for a deck, most recent first.
	ListByDeck(ctx context.Context, deckID string) ([]*models.Match, error)

	// AttachOrphans points every match for the deck that has no version
	// attribution at the given version. Idempotent: already-attributed
	// matches are never re-pointed. Returns the number of rows updated.
	AttachOrphans(ctx context.Context, deckID, versionID string) (int64, error)
}

// matchRepository is the concrete implementation of MatchRepository.
type matchRepository struct {
	q Querier
}

// NewMatchRepository creates a new match repository.
func NewMatchRepository(db *sql.DB) MatchRepository {
	return &matchRepository{q: db}
}

func (r *matchRepository) WithTx(tx *sql.Tx) MatchRepository {
	return &matchRepository{q: tx}
}

// Create inserts a new match into the database.
func (r *matchRepository) Create(ctx context.Context, match *models.Match) error {
	query := `
		INSERT INTO matches (
			id, deck_id, deck_version_id, result, opponent_name, played_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.q.ExecContext(ctx, query,
		match.ID,
		match.DeckID,
		match.DeckVersionID,
		match.Result,
		match.OpponentName,
		match.PlayedAt,
		match.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create match: %w", err)
	}

	return nil
}

// GetByID retrieves a match by its ID.
func (r *matchRepository) GetByID(ctx context.Context, id string) (*models.Match, error) {
	query := `
		SELECT id, deck_id, deck_version_id, result, opponent_name, played_at, created_at
		FROM matches
		WHERE id = ?
	`

	match := &models.Match{}
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&match.ID,
		&match.DeckID,
		&match.DeckVersionID,
		&match.Result,
		&match.OpponentName,
		&match.PlayedAt,
		&match.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match by id: %w", err)
	}

	return match, nil
}

// ListByDeck retrieves all matches for a deck.
func (r *matchRepository) ListByDeck(ctx context.Context, deckID string) ([]*models.Match, error) {
	query := `
		SELECT id, deck_id, deck_version_id, result, opponent_name, played_at, created_at
		FROM matches
		WHERE deck_id = ?
		ORDER BY played_at DESC
	`

	rows, err := r.q.QueryContext(ctx, query, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	var matches []*models.Match
	for rows.Next() {
		match := &models.Match{}
		err := rows.Scan(
			&match.ID,
			&match.DeckID,
			&match.DeckVersionID,
			&match.Result,
			&match.OpponentName,
			&match.PlayedAt,
			&match.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, match)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating matches: %w", err)
	}

	return matches, nil
}

// AttachOrphans points unattributed matches for the deck at the given version.
func (r *matchRepository) AttachOrphans(ctx context.Context, deckID, versionID string) (int64, error) {
	query := `
		UPDATE matches
		SET deck_version_id = ?
		WHERE deck_id = ? AND deck_version_id IS NULL
	`

	result, err := r.q.ExecContext(ctx, query, versionID, deckID)
	if err != nil {
		return 0, fmt.Errorf("failed to attach orphaned matches: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count attached matches: %w", err)
	}

	return rows, nil
}
