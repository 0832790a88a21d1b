package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mtgvault/deckvault/internal/api/response"
	"github.com/mtgvault/deckvault/internal/storage/repository"
)

// CardHandler handles card catalog lookups.
type CardHandler struct {
	cards repository.CardRepository
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(cards repository.CardRepository) *CardHandler {
	return &CardHandler{cards: cards}
}

// SearchCards returns cards whose name matches the q parameter.
func (h *CardHandler) SearchCards(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		response.BadRequest(w, errors.New("q parameter is required"))
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			response.BadRequest(w, errors.New("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	cards, err := h.cards.Search(r.Context(), q, limit)
	if err != nil {
		response.InternalError(w, err)
		return
	}

	response.Success(w, cards)
}

// GetCard returns a single card by ID.
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "cardID"))
	if err != nil {
		response.BadRequest(w, errors.New("card ID must be an integer"))
		return
	}

	card, err := h.cards.GetByID(r.Context(), id)
	if err != nil {
		response.InternalError(w, err)
		return
	}
	if card == nil {
		response.NotFound(w, errors.New("card not found"))
		return
	}

	response.Success(w, card)
}
