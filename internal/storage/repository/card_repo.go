package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mtgvault/deckvault/internal/storage/models"
)

// CardRepository handles database operations for the card catalog.
// The catalog resolves a card identity to its display name and back.
type CardRepository interface {
	// Upsert inserts a card or updates its catalog data.
	Upsert(ctx context.Context, card *models.Card) error

	// GetByID retrieves a card by its ID. Returns nil if not found.
	GetByID(ctx context.Context, id int) (*models.Card, error)

	// GetByName retrieves a card by its exact display name. Returns nil if not found.
	GetByName(ctx context.Context, name string) (*models.Card, error)

	// Search retrieves cards whose name contains the given fragment.
	Search(ctx context.Context, fragment string, limit int) ([]*models.Card, error)
}

// cardRepository is the concrete implementation of CardRepository.
type cardRepository struct {
	q Querier
}

// NewCardRepository creates a new card repository.
func NewCardRepository(db *sql.DB) CardRepository {
	return &cardRepository{q: db}
}

// Upsert inserts a card or updates its catalog data.
func (r *cardRepository) Upsert(ctx context.Context, card *models.Card) error {
	query := `
		INSERT INTO cards (id, name, set_code, mana_cost)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			set_code = excluded.set_code,
			mana_cost = excluded.mana_cost
	`

	_, err := r.q.ExecContext(ctx, query, card.ID, card.Name, card.SetCode, card.ManaCost)
	if err != nil {
		return fmt.Errorf("failed to upsert card: %w", err)
	}

	return nil
}

// GetByID retrieves a card by its ID.
func (r *cardRepository) GetByID(ctx context.Context, id int) (*models.Card, error) {
	query := `SELECT id, name, set_code, mana_cost FROM cards WHERE id = ?`

	card := &models.Card{}
	err := r.q.QueryRowContext(ctx, query, id).Scan(&card.ID, &card.Name, &card.SetCode, &card.ManaCost)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card by id: %w", err)
	}

	return card, nil
}

// GetByName retrieves a card by its exact display name.
func (r *cardRepository) GetByName(ctx context.Context, name string) (*models.Card, error) {
	query := `SELECT id, name, set_code, mana_cost FROM cards WHERE name = ? LIMIT 1`

	card := &models.Card{}
	err := r.q.QueryRowContext(ctx, query, name).Scan(&card.ID, &card.Name, &card.SetCode, &card.ManaCost)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card by name: %w", err)
	}

	return card, nil
}

// Search retrieves cards whose name contains the given fragment.
func (r *cardRepository) Search(ctx context.Context, fragment string, limit int) ([]*models.Card, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, name, set_code, mana_cost
		FROM cards
		WHERE name LIKE ?
		ORDER BY name
		LIMIT ?
	`

	rows, err := r.q.QueryContext(ctx, query, "%"+fragment+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search cards: %w", err)
	}
	defer rows.Close()

	var cards []*models.Card
	for rows.Next() {
		card := &models.Card{}
		if err := rows.Scan(&card.ID, &card.Name, &card.SetCode, &card.ManaCost); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, card)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cards: %w", err)
	}

	return cards, nil
}
