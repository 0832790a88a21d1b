// Package handlers contains the HTTP handlers for the deck API.
package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mtgvault/deckvault/internal/api/response"
	"github.com/mtgvault/deckvault/internal/storage/models"
	"github.com/mtgvault/deckvault/internal/storage/repository"
	"github.com/mtgvault/deckvault/internal/versioning"
)

// DeckHandler handles deck CRUD and live entry editing. Every entry
// mutation reports the edit to the version engine; the debounce policy
// decides whether a new version materializes.
type DeckHandler struct {
	decks  repository.DeckRepository
	cards  repository.CardRepository
	engine *versioning.Engine
}

// NewDeckHandler creates a new DeckHandler.
func NewDeckHandler(decks repository.DeckRepository, cards repository.CardRepository, engine *versioning.Engine) *DeckHandler {
	return &DeckHandler{decks: decks, cards: cards, engine: engine}
}

// GetDecks returns all decks.
func (h *DeckHandler) GetDecks(w http.ResponseWriter, r *http.Request) {
	decks, err := h.decks.List(r.Context())
	if err != nil {
		response.InternalError(w, err)
		return
	}

	response.Success(w, decks)
}

// CreateDeckRequest represents a request to create a deck.
type CreateDeckRequest struct {
	Name        string  `json:"name"`
	Format      string  `json:"format"`
	Description *string `json:"description,omitempty"`
}

// CreateDeck creates a new deck.
func (h *DeckHandler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	var req CreateDeckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	if req.Name == "" {
		response.BadRequest(w, errors.New("deck name is required"))
		return
	}

	now := time.Now()
	deck := &models.Deck{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Format:      req.Format,
		Description: req.Description,
		CreatedAt:   now,
		ModifiedAt:  now,
	}

	if err := h.decks.Create(r.Context(), deck); err != nil {
		response.InternalError(w, err)
		return
	}

	response.Created(w, deck)
}

// DeckWithEntries represents a deck with its live entries.
type DeckWithEntries struct {
	Deck    *models.Deck        `json:"deck"`
	Entries []*models.DeckEntry `json:"entries"`
}

// GetDeck returns a single deck with its entries.
func (h *DeckHandler) GetDeck(w http.ResponseWriter, r *http.Request) {
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

	entries, err := h.decks.GetEntries(r.Context(), deckID)
	if err != nil {
		response.InternalError(w, err)
		return
	}

	response.Success(w, DeckWithEntries{Deck: deck, Entries: entries})
}

// UpdateDeckRequest represents a request to update deck metadata.
type UpdateDeckRequest struct {
	Name        *string `json:"name,omitempty"`
	Format      *string `json:"format,omitempty"`
	Description *string `json:"description,omitempty"`
}

// UpdateDeck updates deck metadata.
func (h *DeckHandler) UpdateDeck(w http.ResponseWriter, r *http.Request) {
	deckID := chi.URLParam(r, "deckID")

	var req UpdateDeckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
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

	if req.Name != nil {
		deck.Name = *req.Name
	}
	if req.Format != nil {
		deck.Format = *req.Format
	}
	if req.Description != nil {
		deck.Description = req.Description
	}
	deck.ModifiedAt = time.Now()

	if err := h.decks.Update(r.Context(), deck); err != nil {
		response.InternalError(w, err)
		return
	}

	response.Success(w, deck)
}

// DeleteDeck deletes a deck and all of its history.
func (h *DeckHandler) DeleteDeck(w http.ResponseWriter, r *http.Request) {
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

	if err := h.decks.Delete(r.Context(), deckID); err != nil {
		response.InternalError(w, err)
		return
	}

	response.NoContent(w)
}

// UpsertEntryRequest represents a request to add or change a deck entry.
type UpsertEntryRequest struct {
	CardID   int          `json:"card_id"`
	Quantity int          `json:"quantity"`
	Board    models.Board `json:"board"`
}

// UpsertEntry adds a card to the deck or replaces its quantity, then
// reports the manual edit to the version engine.
func (h *DeckHandler) UpsertEntry(w http.ResponseWriter, r *http.Request) {
	deckID := chi.URLParam(r, "deckID")

	var req UpsertEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	if req.Quantity <= 0 {
		response.BadRequest(w, errors.New("quantity must be positive"))
		return
	}
	if !models.ValidBoard(req.Board) {
		response.BadRequest(w, errors.New("invalid board"))
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

	card, err := h.cards.GetByID(r.Context(), req.CardID)
	if err != nil {
		response.InternalError(w, err)
		return
	}
	if card == nil {
		response.BadRequest(w, errors.New("unknown card"))
		return
	}

	entry := &models.DeckEntry{
		DeckID:   deckID,
		CardID:   req.CardID,
		Quantity: req.Quantity,
		Board:    req.Board,
	}
	if err := h.decks.UpsertEntry(r.Context(), entry); err != nil {
		response.InternalError(w, err)
		return
	}

	if err := h.decks.Touch(r.Context(), deckID, time.Now()); err != nil {
		response.InternalError(w, err)
		return
	}

	h.recordEdit(r, deckID)

	response.Success(w, entry)
}

// RemoveEntry removes a card from a deck board and reports the edit.
func (h *DeckHandler) RemoveEntry(w http.ResponseWriter, r *http.Request) {
	deckID := chi.URLParam(r, "deckID")

	var req UpsertEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}
	if !models.ValidBoard(req.Board) {
		response.BadRequest(w, errors.New("invalid board"))
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

	if err := h.decks.RemoveEntry(r.Context(), deckID, req.CardID, req.Board); err != nil {
		response.InternalError(w, err)
		return
	}

	if err := h.decks.Touch(r.Context(), deckID, time.Now()); err != nil {
		response.InternalError(w, err)
		return
	}

	h.recordEdit(r, deckID)

	response.NoContent(w)
}

// ImportEntry is one line of an imported deck list.
type ImportEntry struct {
	CardName string       `json:"card_name"`
	Quantity int          `json:"quantity"`
	Board    models.Board `json:"board"`
}

// ImportDeckRequest replaces a deck's entries from a parsed deck list.
type ImportDeckRequest struct {
	Entries []ImportEntry `json:"entries"`
}

// ImportDeck bulk-replaces the deck's entries and creates an import
// version, which bypasses the debounce policy.
func (h *DeckHandler) ImportDeck(w http.ResponseWriter, r *http.Request) {
	deckID := chi.URLParam(r, "deckID")

	var req ImportDeckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
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

	// Resolve names against the catalog before mutating anything.
	entries := make([]*models.DeckEntry, 0, len(req.Entries))
	for _, line := range req.Entries {
		if line.Quantity <= 0 || !models.ValidBoard(line.Board) {
			response.BadRequest(w, errors.New("invalid deck list entry"))
			return
		}
		card, err := h.cards.GetByName(r.Context(), line.CardName)
		if err != nil {
			response.InternalError(w, err)
			return
		}
		if card == nil {
			response.BadRequest(w, errors.New("unknown card: "+line.CardName))
			return
		}
		entries = append(entries, &models.DeckEntry{
			DeckID:   deckID,
			CardID:   card.ID,
			Quantity: line.Quantity,
			Board:    line.Board,
		})
	}

	if err := h.decks.ClearEntries(r.Context(), deckID); err != nil {
		response.InternalError(w, err)
		return
	}
	for _, entry := range entries {
		if err := h.decks.UpsertEntry(r.Context(), entry); err != nil {
			response.InternalError(w, err)
			return
		}
	}
	if err := h.decks.Touch(r.Context(), deckID, time.Now()); err != nil {
		response.InternalError(w, err)
		return
	}

	version, err := h.engine.CreateVersion(r.Context(), deckID, models.SourceImport, versioning.CreateOptions{ChangeType: "deck list import"})
	if err != nil {
		response.InternalError(w, err)
		return
	}

	response.Success(w, version)
}

// recordEdit reports a manual edit to the version engine. A debounced
// outcome is expected and not an error; anything else is logged by the
// engine path and ignored here so the edit itself still succeeds.
func (h *DeckHandler) recordEdit(r *http.Request, deckID string) {
	_, err := h.engine.CreateVersion(r.Context(), deckID, models.SourceManualEdit, versioning.CreateOptions{})
	if err != nil && !errors.Is(err, versioning.ErrDebounced) {
		// The live edit already committed; version bookkeeping failing
		// should not fail the request.
		log.Printf("deck %s: failed to record edit version: %v", deckID, err)
	}
}
