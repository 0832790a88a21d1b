package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mtgvault/deckvault/internal/api/response"
	"github.com/mtgvault/deckvault/internal/storage/models"
	"github.com/mtgvault/deckvault/internal/versioning"
)

// VersionHandler handles deck version history and restore requests.
type VersionHandler struct {
	engine *versioning.Engine
}

// NewVersionHandler creates a new VersionHandler.
func NewVersionHandler(engine *versioning.Engine) *VersionHandler {
	return &VersionHandler{engine: engine}
}

// ListVersions returns the deck's version history, newest first, annotated
// with win/loss counts.
func (h *VersionHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	deckID := chi.URLParam(r, "deckID")

	versions, err := h.engine.ListVersions(r.Context(), deckID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	response.Success(w, versions)
}

// GetVersion returns a single version with its full snapshot and diff.
func (h *VersionHandler) GetVersion(w http.ResponseWriter, r *http.Request) {
	deckID := chi.URLParam(r, "deckID")
	versionID := chi.URLParam(r, "versionID")

	version, err := h.engine.GetVersion(r.Context(), deckID, versionID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	response.Success(w, version)
}

// CreateVersionRequest represents an explicit snapshot request.
type CreateVersionRequest struct {
	Source     models.VersionSource `json:"source"`
	Name       string               `json:"name,omitempty"`
	ChangeType string               `json:"change_type,omitempty"`
}

// CreateVersionResult is the response body for version creation. Status is
// "created" or "debounced"; Version is nil when debounced.
type CreateVersionResult struct {
	Status  string              `json:"status"`
	Version *models.DeckVersion `json:"version,omitempty"`
}

// CreateVersion snapshots the deck's current state. A debounced outcome is
// reported as a normal result, not an error.
func (h *VersionHandler) CreateVersion(w http.ResponseWriter, r *http.Request) {
	deckID := chi.URLParam(r, "deckID")

	req := CreateVersionRequest{Source: models.SourceSnapshot}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, errors.New("invalid request body"))
			return
		}
	}

	if !models.ValidVersionSource(req.Source) {
		response.BadRequest(w, errors.New("invalid version source"))
		return
	}

	version, err := h.engine.CreateVersion(r.Context(), deckID, req.Source, versioning.CreateOptions{
		Name:       req.Name,
		ChangeType: req.ChangeType,
	})
	if errors.Is(err, versioning.ErrDebounced) {
		response.Success(w, CreateVersionResult{Status: "debounced"})
		return
	}
	if err != nil {
		writeEngineError(w, err)
		return
	}

	response.Created(w, CreateVersionResult{Status: "created", Version: version})
}

// Restore rolls the deck back to the target version and returns the
// rollback version that makes the restore itself reversible.
func (h *VersionHandler) Restore(w http.ResponseWriter, r *http.Request) {
	deckID := chi.URLParam(r, "deckID")
	versionID := chi.URLParam(r, "versionID")

	rollback, err := h.engine.Restore(r.Context(), deckID, versionID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	response.Success(w, rollback)
}

// GetSnapshot captures the deck's current live state without persisting it.
func (h *VersionHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	deckID := chi.URLParam(r, "deckID")

	snapshot, err := h.engine.Capture(r.Context(), deckID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	response.Success(w, snapshot)
}

// writeEngineError maps the engine's error taxonomy onto HTTP statuses.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, versioning.ErrNotFound):
		response.NotFound(w, err)
	case errors.Is(err, versioning.ErrConflict):
		response.Conflict(w, err)
	case errors.Is(err, versioning.ErrCorrupt):
		response.Conflict(w, err)
	default:
		response.InternalError(w, err)
	}
}
