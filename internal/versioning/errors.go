package versioning

import (
	"errors"

	"github.com/mtgvault/deckvault/internal/storage/models"
)

var (
	// ErrNotFound indicates the deck or version does not exist. Surfaced
	// to callers as a client error, never retried automatically.
	ErrNotFound = errors.New("not found")

	// ErrDebounced is not a failure: it means the edit was folded into the
	// still-fresh latest version and no new version was needed. Callers
	// must treat it as a normal control-flow outcome.
	ErrDebounced = errors.New("version debounced")

	// ErrConflict indicates a concurrent version-number allocation race
	// that persisted through the internal retry.
	ErrConflict = errors.New("version number conflict")

	// ErrCorrupt indicates a stored snapshot could not be deserialized.
	// Diff computation degrades to an empty previous snapshot instead;
	// restore refuses, since it cannot replay a state it cannot read.
	ErrCorrupt = models.ErrCorruptBlob
)
