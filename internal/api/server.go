// Package api provides the REST API server for the deck service.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/mtgvault/deckvault/internal/storage"
	"github.com/mtgvault/deckvault/internal/storage/repository"
	"github.com/mtgvault/deckvault/internal/versioning"
)

// Server represents the REST API server.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	port       int

	writeLimiter *rate.Limiter

	db       *storage.DB
	decks    repository.DeckRepository
	cards    repository.CardRepository
	versions repository.VersionRepository
	matches  repository.MatchRepository
	engine   *versioning.Engine
}

// Config holds configuration for the API server.
type Config struct {
	Port int

	// RateLimit caps write requests per second across clients; zero
	// disables limiting. Burst is the token bucket size.
	RateLimit      float64
	RateLimitBurst int

	// Versioning configures the version control engine.
	Versioning versioning.Config
}

// DefaultConfig returns the default API server configuration.
func DefaultConfig() *Config {
	return &Config{
		Port:           8080,
		RateLimit:      10,
		RateLimitBurst: 20,
		Versioning:     versioning.DefaultConfig(),
	}
}

// NewServer creates a new API server over the given database.
func NewServer(cfg *Config, db *storage.DB) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	s := &Server{
		router:   chi.NewRouter(),
		port:     cfg.Port,
		db:       db,
		decks:    repository.NewDeckRepository(db.Conn()),
		cards:    repository.NewCardRepository(db.Conn()),
		versions: repository.NewVersionRepository(db.Conn()),
		matches:  repository.NewMatchRepository(db.Conn()),
		engine:   versioning.NewEngine(db, cfg.Versioning),
	}

	if cfg.RateLimit > 0 {
		s.writeLimiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	s.router.Use(s.jsonContentTypeMiddleware)
}

// jsonContentTypeMiddleware enforces application/json content-type for requests with bodies.
func (s *Server) jsonContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			if r.ContentLength == 0 {
				next.ServeHTTP(w, r)
				return
			}

			contentType := r.Header.Get("Content-Type")
			if contentType == "" || (contentType != "application/json" && !strings.HasPrefix(contentType, "application/json;")) {
				http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// rateLimitMiddleware throttles write requests so a rapid click stream
// cannot flood the engine. Reads are never limited.
func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.writeLimiter != nil && r.Method != http.MethodGet {
			if !s.writeLimiter.Allow() {
				http.Error(w, "Too many requests", http.StatusTooManyRequests)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Start starts the API server. It blocks until the server stops.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Router returns the underlying router, useful for tests.
func (s *Server) Router() http.Handler {
	return s.router
}
