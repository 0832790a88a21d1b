// Package models defines the persistent data types shared by the storage
// repositories and the versioning engine.
package models

import "time"

// Board identifies the zone a card occupies within a deck.
type Board string

// Boards a deck entry can live in. Commander and companion are singleton
// slots set independently of build iteration; restore never touches them.
const (
	BoardMain      Board = "main"
	BoardSideboard Board = "sideboard"
	BoardCommander Board = "commander"
	BoardCompanion Board = "companion"
)

// ValidBoard reports whether b is one of the four defined board placements.
func ValidBoard(b Board) bool {
	switch b {
	case BoardMain, BoardSideboard, BoardCommander, BoardCompanion:
		return true
	}
	return false
}

// VersionSource records what kind of edit produced a deck version.
type VersionSource string

// Version sources. High-value sources (ai_suggest, import, rollback) bypass
// the debounce policy; manual_edit and snapshot are subject to it.
const (
	SourceManualEdit VersionSource = "manual_edit"
	SourceAISuggest  VersionSource = "ai_suggest"
	SourceImport     VersionSource = "import"
	SourceRollback   VersionSource = "rollback"
	SourceSnapshot   VersionSource = "snapshot"
)

// ValidVersionSource reports whether s is a known version source.
func ValidVersionSource(s VersionSource) bool {
	switch s {
	case SourceManualEdit, SourceAISuggest, SourceImport, SourceRollback, SourceSnapshot:
		return true
	}
	return false
}

// Deck represents a deck list.
type Deck struct {
	ID          string
	Name        string
	Format      string
	Description *string // Nullable
	CreatedAt   time.Time
	ModifiedAt  time.Time
}

// Card represents an entry in the card catalog used to resolve a card
// identity to its display name.
type Card struct {
	ID       int
	Name     string
	SetCode  string
	ManaCost *string // Nullable
}

// DeckEntry represents a card in a deck. Live, mutable state owned by the
// deck editor; the versioning engine only reads it, except during restore.
type DeckEntry struct {
	ID       int
	DeckID   string
	CardID   int
	Quantity int
	Board    Board
}

// SnapshotCard is one card in an immutable deck snapshot. Snapshots are
// canonically sorted by (board, name) so structurally equal states
// serialize identically.
type SnapshotCard struct {
	CardID   int    `json:"card_id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Board    Board  `json:"board"`
}

// ChangeAction is the direction of a single diff entry.
type ChangeAction string

// Diff actions.
const (
	ActionAdded   ChangeAction = "added"
	ActionRemoved ChangeAction = "removed"
)

// DeckChange is one semantic difference between two snapshots: a card whose
// quantity on a board shifted by Quantity in the Action direction. Quantity
// is a net delta and is always positive.
type DeckChange struct {
	Action   ChangeAction `json:"action"`
	CardName string       `json:"card_name"`
	Board    Board        `json:"board"`
	Quantity int          `json:"quantity"`
}

// DeckVersion is an immutable record pairing a snapshot with the diff that
// produced it and provenance metadata. Version numbers are 1-based and
// strictly increasing per deck.
type DeckVersion struct {
	ID            string
	DeckID        string
	VersionNumber int
	Name          string
	Source        VersionSource
	ChangeType    *string // Nullable, descriptive
	Snapshot      []SnapshotCard
	Diff          []DeckChange
	CreatedAt     time.Time

	// Corrupt is not persisted. It is set when a stored snapshot or diff
	// blob failed to decode; Snapshot/Diff are nil in that case.
	Corrupt bool
}

// VersionSummary is a DeckVersion annotated with match outcomes attributed
// to it, for history listings.
type VersionSummary struct {
	DeckVersion
	MatchesWon  int
	MatchesLost int
}

// Match represents a recorded match result. DeckVersionID is nil until the
// match is attributed to a deck version by the backfill step of version
// creation.
type Match struct {
	ID            string
	DeckID        string
	DeckVersionID *string // Nullable, foreign key to deck_versions
	Result        string  // "win" or "loss"
	OpponentName  *string // Nullable
	PlayedAt      time.Time
	CreatedAt     time.Time
}
