package versioning

import (
	"time"

	"github.com/mtgvault/deckvault/internal/storage/models"
)

// DefaultDebounceWindow is the minimum time between same-source versions
// below which a new edit is folded into the existing latest version.
const DefaultDebounceWindow = 30 * time.Second

// Policy decides whether an edit event should materialize a new version.
//
// Manual edits arrive as a rapid stream of single +1/-1 clicks; without
// coalescing, every click would create a version and drown the history in
// noise. The policy is purely time and source based, never content based: a
// sequence of distinct edits inside the window is merged into one version's
// diff, computed against the pre-window baseline.
type Policy struct {
	window time.Duration
	now    func() time.Time
}

// NewPolicy creates a debounce policy with the given window.
// A zero or negative window disables debouncing entirely.
func NewPolicy(window time.Duration) *Policy {
	return &Policy{window: window, now: time.Now}
}

// Approve reports whether a new version should be created given the deck's
// latest version (nil if the deck has none) and the source of the edit.
//
// Sources ai_suggest, import, and rollback always approve: explicit
// user or AI actions must never be silently dropped. Everything else is
// debounced against the latest version's source and age.
func (p *Policy) Approve(latest *models.DeckVersion, source models.VersionSource) bool {
	switch source {
	case models.SourceAISuggest, models.SourceImport, models.SourceRollback:
		return true
	}

	if p.window <= 0 {
		return true
	}

	if latest == nil {
		return true
	}

	// A context switch always gets its own checkpoint.
	if latest.Source != source {
		return true
	}

	return p.now().Sub(latest.CreatedAt) > p.window
}
