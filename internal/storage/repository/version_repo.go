package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/mtgvault/deckvault/internal/storage/models"
)

// VersionRepository handles database operations for deck versions.
// Version rows are immutable once created; there is no update path.
type VersionRepository interface {
	// WithTx returns a copy of the repository that runs against the given transaction.
	WithTx(tx *sql.Tx) VersionRepository

	// Insert persists a new deck version. The (deck_id, version_number)
	// unique constraint is the concurrency backstop; Insert surfaces a
	// violation as ErrDuplicateVersion so the caller can retry allocation.
	Insert(ctx context.Context, version *models.DeckVersion) error

	// Latest retrieves the most recently created version for a deck.
	// Returns nil if the deck has no versions.
	Latest(ctx context.Context, deckID string) (*models.DeckVersion, error)

	// GetByID retrieves a version by its ID. Returns nil if not found.
	GetByID(ctx context.Context, id string) (*models.DeckVersion, error)

	// ListByDeck retrieves all versions for a deck ordered by version
	// number descending, each annotated with match outcomes attributed to it.
	ListByDeck(ctx context.Context, deckID string) ([]*models.VersionSummary, error)
}

// ErrDuplicateVersion indicates an insert lost a version-number allocation
// race to a concurrent writer.
var ErrDuplicateVersion = errors.New("duplicate version number")

// versionRepository is the concrete implementation of VersionRepository.
type versionRepository struct {
	q Querier
}

// NewVersionRepository creates a new deck version repository.
func NewVersionRepository(db *sql.DB) VersionRepository {
	return &versionRepository{q: db}
}

func (r *versionRepository) WithTx(tx *sql.Tx) VersionRepository {
	return &versionRepository{q: tx}
}

// Insert persists a new deck version.
func (r *versionRepository) Insert(ctx context.Context, version *models.DeckVersion) error {
	snapshot, err := models.EncodeSnapshot(version.Snapshot)
	if err != nil {
		return err
	}
	diff, err := models.EncodeDiff(version.Diff)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO deck_versions (
			id, deck_id, version_number, name, source, change_type,
			snapshot, diff, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.q.ExecContext(ctx, query,
		version.ID,
		version.DeckID,
		version.VersionNumber,
		version.Name,
		version.Source,
		version.ChangeType,
		snapshot,
		diff,
		version.CreatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: deck %s version %d", ErrDuplicateVersion, version.DeckID, version.VersionNumber)
		}
		return fmt.Errorf("failed to insert deck version: %w", err)
	}

	return nil
}

const versionColumns = `id, deck_id, version_number, name, source, change_type, snapshot, diff, created_at`

// scanVersion scans one version row, decoding the stored blobs. A blob that
// fails to decode marks the version Corrupt instead of failing the read, so
// history stays available even if one record is unreliable.
func scanVersion(scan func(dest ...any) error) (*models.DeckVersion, error) {
	version := &models.DeckVersion{}
	var snapshot, diff string

	err := scan(
		&version.ID,
		&version.DeckID,
		&version.VersionNumber,
		&version.Name,
		&version.Source,
		&version.ChangeType,
		&snapshot,
		&diff,
		&version.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	version.Snapshot, err = models.DecodeSnapshot(snapshot)
	if err != nil {
		log.Printf("deck %s version %d: %v", version.DeckID, version.VersionNumber, err)
		version.Snapshot = nil
		version.Corrupt = true
	}

	version.Diff, err = models.DecodeDiff(diff)
	if err != nil {
		log.Printf("deck %s version %d: %v", version.DeckID, version.VersionNumber, err)
		version.Diff = nil
		version.Corrupt = true
	}

	return version, nil
}

// Latest retrieves the most recently created version for a deck.
func (r *versionRepository) Latest(ctx context.Context, deckID string) (*models.DeckVersion, error) {
	query := `
		SELECT ` + versionColumns + `
		FROM deck_versions
		WHERE deck_id = ?
		ORDER BY version_number DESC
		LIMIT 1
	`

	row := r.q.QueryRowContext(ctx, query, deckID)
	version, err := scanVersion(row.Scan)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest version: %w", err)
	}

	return version, nil
}

// GetByID retrieves a version by its ID.
func (r *versionRepository) GetByID(ctx context.Context, id string) (*models.DeckVersion, error) {
	query := `
		SELECT ` + versionColumns + `
		FROM deck_versions
		WHERE id = ?
	`

	row := r.q.QueryRowContext(ctx, query, id)
	version, err := scanVersion(row.Scan)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get version by id: %w", err)
	}

	return version, nil
}

// ListByDeck retrieves all versions for a deck with match outcome annotations.
func (r *versionRepository) ListByDeck(ctx context.Context, deckID string) ([]*models.VersionSummary, error) {
	query := `
		SELECT v.id, v.deck_id, v.version_number, v.name, v.source, v.change_type,
		       v.snapshot, v.diff, v.created_at,
		       COALESCE(SUM(CASE WHEN m.result = 'win' THEN 1 ELSE 0 END), 0) AS wins,
		       COALESCE(SUM(CASE WHEN m.result = 'loss' THEN 1 ELSE 0 END), 0) AS losses
		FROM deck_versions v
		LEFT JOIN matches m ON m.deck_version_id = v.id
		WHERE v.deck_id = ?
		GROUP BY v.id
		ORDER BY v.version_number DESC
	`

	rows, err := r.q.QueryContext(ctx, query, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}
	defer rows.Close()

	var summaries []*models.VersionSummary
	for rows.Next() {
		summary := &models.VersionSummary{}
		var snapshot, diff string

		err := rows.Scan(
			&summary.ID,
			&summary.DeckID,
			&summary.VersionNumber,
			&summary.Name,
			&summary.Source,
			&summary.ChangeType,
			&snapshot,
			&diff,
			&summary.CreatedAt,
			&summary.MatchesWon,
			&summary.MatchesLost,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan version summary: %w", err)
		}

		summary.Snapshot, err = models.DecodeSnapshot(snapshot)
		if err != nil {
			log.Printf("deck %s version %d: %v", summary.DeckID, summary.VersionNumber, err)
			summary.Snapshot = nil
			summary.Corrupt = true
		}

		summary.Diff, err = models.DecodeDiff(diff)
		if err != nil {
			log.Printf("deck %s version %d: %v", summary.DeckID, summary.VersionNumber, err)
			summary.Diff = nil
			summary.Corrupt = true
		}

		summaries = append(summaries, summary)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating versions: %w", err)
	}

	return summaries, nil
}
