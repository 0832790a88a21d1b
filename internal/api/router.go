package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mtgvault/deckvault/internal/api/handlers"
	"github.com/mtgvault/deckvault/internal/api/response"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check endpoint (no versioning)
	s.router.Get("/health", s.healthCheck)

	// API v1 routes
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(s.rateLimitMiddleware)

		// Deck routes
		deckHandler := handlers.NewDeckHandler(s.decks, s.cards, s.engine)
		r.Route("/decks", func(r chi.Router) {
			r.Get("/", deckHandler.GetDecks)
			r.Post("/", deckHandler.CreateDeck)
			r.Get("/{deckID}", deckHandler.GetDeck)
			r.Put("/{deckID}", deckHandler.UpdateDeck)
			r.Delete("/{deckID}", deckHandler.DeleteDeck)
			r.Put("/{deckID}/entries", deckHandler.UpsertEntry)
			r.Post("/{deckID}/entries/remove", deckHandler.RemoveEntry)
			r.Post("/{deckID}/import", deckHandler.ImportDeck)

			// Version history routes
			versionHandler := handlers.NewVersionHandler(s.engine)
			r.Get("/{deckID}/snapshot", versionHandler.GetSnapshot)
			r.Route("/{deckID}/versions", func(r chi.Router) {
				r.Get("/", versionHandler.ListVersions)
				r.Post("/", versionHandler.CreateVersion)
				r.Get("/{versionID}", versionHandler.GetVersion)
				r.Post("/{versionID}/restore", versionHandler.Restore)
			})

			// Match routes
			matchHandler := handlers.NewMatchHandler(s.matches, s.decks, s.versions)
			r.Get("/{deckID}/matches", matchHandler.GetMatches)
			r.Post("/{deckID}/matches", matchHandler.RecordMatch)
		})

		// Card catalog routes
		cardHandler := handlers.NewCardHandler(s.cards)
		r.Route("/cards", func(r chi.Router) {
			r.Get("/", cardHandler.SearchCards)
			r.Get("/{cardID}", cardHandler.GetCard)
		})
	})
}

// healthCheck reports service and database health.
func (s *Server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	if err := s.db.Ping(); err != nil {
		response.Error(w, http.StatusServiceUnavailable, err)
		return
	}
	response.Success(w, map[string]string{"status": "ok"})
}
