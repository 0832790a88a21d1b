package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mtgvault/deckvault/internal/api/response"
	"github.com/mtgvault/deckvault/internal/storage/models"
	"github.com/mtgvault/deckvault/internal/storage/repository"
)

// MatchHandler handles match result recording. Matches recorded before any
// version exists stay unattributed until the next version creation
// back-fills them.
type MatchHandler struct {
	matches  repository.MatchRepository
	decks    repository.DeckRepository
	versions repository.VersionRepository
}

// NewMatchHandler creates a new MatchHandler.
func NewMatchHandler(matches repository.MatchRepository, decks repository.DeckRepository, versions repository.VersionRepository) *MatchHandler {
	return &MatchHandler{matches: matches, decks: decks, versions: versions}
}

// RecordMatchRequest represents a request to record a match result.
type RecordMatchRequest struct {
	Result       string  `json:"result"`
	OpponentName *string `json:"opponent_name,omitempty"`
	PlayedAt     *string `json:"played_at,omitempty"` // RFC 3339; defaults to now
}

// RecordMatch records a match result for a deck, attributing it to the
// deck's latest version if one exists.
func (h *MatchHandler) RecordMatch(w http.ResponseWriter, r *http.Request) {
	deckID := chi.URLParam(r, "deckID")

	var req RecordMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	if req.Result != "win" && req.Result != "loss" {
		response.BadRequest(w, errors.New("result must be win or loss"))
		return
	}

	deck, err := h.decks.GetByID(r.Context(), deckID)
	if err != nil {
		response.InternalError(w, err)
		return
	}
	if deck == nil {
		response.NotFound(w, errors.New("deck not found"))
		return
	}

	playedAt := time.Now()
	if req.PlayedAt != nil {
		playedAt, err = time.Parse(time.RFC3339, *req.PlayedAt)
		if err != nil {
			response.BadRequest(w, errors.New("played_at must be RFC 3339"))
			return
		}
	}

	match := &models.Match{
		ID:           uuid.NewString(),
		DeckID:       deckID,
		Result:       req.Result,
		OpponentName: req.OpponentName,
		PlayedAt:     playedAt,
		CreatedAt:    time.Now(),
	}

	// Attribute to the current version if the deck has one; otherwise the
	// match stays orphaned until the next version creation back-fills it.
	latest, err := h.versions.Latest(r.Context(), deckID)
	if err != nil {
		response.InternalError(w, err)
		return
	}
	if latest != nil {
		match.DeckVersionID = &latest.ID
	}

	if err := h.matches.Create(r.Context(), match); err != nil {
		response.InternalError(w, err)
		return
	}

	response.Created(w, match)
}

// GetMatches returns all recorded matches for a deck.
func (h *MatchHandler) GetMatches(w http.ResponseWriter, r *http.Request) {
	deckID := chi.URLParam(r, "deckID")

	deck, err := h.decks.GetByID(r.Context(), deckID)
	if err != nil {
		response.InternalError(w, err)
		return
	}
	if deck == nil {
		response.NotFound(w, errors.New("deck not found"))
		return
	}

	matches, err := h.matches.ListByDeck(r.Context(), deckID)
	if err != nil {
		response.InternalError(w, err)
		return
	}

	response.Success(w, matches)
}
