// Package versioning implements the deck version control engine: it
// snapshots a deck's entries over time, computes diffs between snapshots,
// debounces noisy edit streams, and supports non-destructive rollback to
// any prior version.
package versioning

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/mtgvault/deckvault/internal/storage"
	"github.com/mtgvault/deckvault/internal/storage/models"
	"github.com/mtgvault/deckvault/internal/storage/repository"
)

// Config holds the engine's policy knobs. It is passed in at construction;
// the engine never reads shared mutable settings at runtime.
type Config struct {
	// DebounceWindow is the minimum time between same-source versions.
	// Zero disables debouncing.
	DebounceWindow time.Duration
}

// DefaultConfig returns the engine configuration defaults.
func DefaultConfig() Config {
	return Config{DebounceWindow: DefaultDebounceWindow}
}

// Engine is the deck version control engine. All operations are synchronous
// and complete within a single bounded transaction; per-deck serialization
// of version numbers is enforced by the (deck_id, version_number) unique
// constraint with one retry on conflict.
type Engine struct {
	db       *storage.DB
	decks    repository.DeckRepository
	versions repository.VersionRepository
	matches  repository.MatchRepository
	policy   *Policy
	now      func() time.Time
}

// NewEngine creates a version control engine over the given database.
func NewEngine(db *storage.DB, cfg Config) *Engine {
	return &Engine{
		db:       db,
		decks:    repository.NewDeckRepository(db.Conn()),
		versions: repository.NewVersionRepository(db.Conn()),
		matches:  repository.NewMatchRepository(db.Conn()),
		policy:   NewPolicy(cfg.DebounceWindow),
		now:      time.Now,
	}
}

// CreateOptions carries the optional metadata for a new version.
type CreateOptions struct {
	// Name overrides the generated "v{n}" name.
	Name string

	// ChangeType is a free-form description of what kind of change
	// produced this version (e.g. "applied suggestion").
	ChangeType string
}

// ShouldVersion reports whether an edit from the given source would
// materialize a new version right now.
func (e *Engine) ShouldVersion(ctx context.Context, deckID string, source models.VersionSource) (bool, error) {
	latest, err := e.versions.Latest(ctx, deckID)
	if err != nil {
		return false, err
	}
	return e.policy.Approve(latest, source), nil
}

// CreateVersion snapshots the deck's current state and persists it as the
// next version, with the diff from the previous version and provenance
// metadata. Returns ErrDebounced when the policy folds the edit into the
// latest version, ErrNotFound when the deck does not exist, and ErrConflict
// when a concurrent allocation race persists through the internal retry.
func (e *Engine) CreateVersion(ctx context.Context, deckID string, source models.VersionSource, opts CreateOptions) (*models.DeckVersion, error) {
	if !models.ValidVersionSource(source) {
		return nil, fmt.Errorf("invalid version source %q", source)
	}

	var version *models.DeckVersion
	err := e.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		var err error
		version, err = e.createVersionTx(ctx, tx, deckID, source, opts)
		return err
	})
	if err != nil {
		return nil, err
	}
	return version, nil
}

// createVersionTx runs the version-creation steps inside an existing
// transaction. Restore reuses it so the rollback version and the live-state
// replacement commit or fail together.
func (e *Engine) createVersionTx(ctx context.Context, tx *sql.Tx, deckID string, source models.VersionSource, opts CreateOptions) (*models.DeckVersion, error) {
	decks := e.decks.WithTx(tx)
	versions := e.versions.WithTx(tx)
	matches := e.matches.WithTx(tx)

	deck, err := decks.GetByID(ctx, deckID)
	if err != nil {
		return nil, err
	}
	if deck == nil {
		return nil, fmt.Errorf("%w: deck %s", ErrNotFound, deckID)
	}

	latest, err := versions.Latest(ctx, deckID)
	if err != nil {
		return nil, err
	}

	if !e.policy.Approve(latest, source) {
		return nil, ErrDebounced
	}

	snapshot, err := decks.SnapshotEntries(ctx, deckID)
	if err != nil {
		return nil, err
	}

	// A corrupt stored snapshot degrades to empty: every current card
	// shows as added. Explicit, not a silent failure.
	var previous []models.SnapshotCard
	if latest != nil {
		if latest.Corrupt {
			log.Printf("deck %s: stored snapshot for version %d is unreadable, diffing against empty", deckID, latest.VersionNumber)
		} else {
			previous = latest.Snapshot
		}
	}

	number := 1
	if latest != nil {
		number = latest.VersionNumber + 1
	}

	version := &models.DeckVersion{
		ID:            uuid.NewString(),
		DeckID:        deckID,
		VersionNumber: number,
		Name:          versionName(opts.Name, number, source),
		Source:        source,
		ChangeType:    optional(opts.ChangeType),
		Snapshot:      snapshot,
		Diff:          Diff(previous, snapshot),
		CreatedAt:     e.now(),
	}

	err = versions.Insert(ctx, version)
	if errors.Is(err, repository.ErrDuplicateVersion) {
		// Lost an allocation race; re-read the winner and retry once.
		latest, lerr := versions.Latest(ctx, deckID)
		if lerr != nil {
			return nil, lerr
		}
		if latest != nil {
			version.VersionNumber = latest.VersionNumber + 1
			if opts.Name == "" {
				version.Name = versionName("", version.VersionNumber, source)
			}
		}
		err = versions.Insert(ctx, version)
		if errors.Is(err, repository.ErrDuplicateVersion) {
			return nil, fmt.Errorf("%w: deck %s", ErrConflict, deckID)
		}
	}
	if err != nil {
		return nil, err
	}

	// One-time backfill: attribute matches recorded before any version
	// existed to the version just created.
	if _, err := matches.AttachOrphans(ctx, deckID, version.ID); err != nil {
		return nil, err
	}

	return version, nil
}

// ListVersions returns the deck's versions, newest first, annotated with
// win/loss counts from matches attributed to each version.
func (e *Engine) ListVersions(ctx context.Context, deckID string) ([]*models.VersionSummary, error) {
	deck, err := e.decks.GetByID(ctx, deckID)
	if err != nil {
		return nil, err
	}
	if deck == nil {
		return nil, fmt.Errorf("%w: deck %s", ErrNotFound, deckID)
	}
	return e.versions.ListByDeck(ctx, deckID)
}

// GetVersion returns a single version belonging to the deck.
func (e *Engine) GetVersion(ctx context.Context, deckID, versionID string) (*models.DeckVersion, error) {
	version, err := e.versions.GetByID(ctx, versionID)
	if err != nil {
		return nil, err
	}
	if version == nil || version.DeckID != deckID {
		return nil, fmt.Errorf("%w: version %s", ErrNotFound, versionID)
	}
	return version, nil
}

// versionName returns the caller-supplied name, or the default "v{n}" with
// a suffix annotation for the high-value sources.
func versionName(name string, number int, source models.VersionSource) string {
	if name != "" {
		return name
	}
	base := fmt.Sprintf("v%d", number)
	switch source {
	case models.SourceAISuggest:
		return base + " (AI)"
	case models.SourceImport:
		return base + " (import)"
	case models.SourceRollback:
		return base + " (rollback)"
	}
	return base
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
