package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dconnell/bookmaster/internal/config"
	"github.com/dconnell/bookmaster/internal/organize"
	"github.com/dconnell/bookmaster/internal/pipeline"
	"github.com/dconnell/bookmaster/internal/store"
)

// Server is the HTTP API server for bookmaster.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	categorizer  *organize.Categorizer
	optimizer    *organize.Optimizer
	store        *store.Store
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, oracle organize.Oracle, st *store.Store, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		categorizer:  organize.NewCategorizer(oracle, log),
		optimizer:    organize.NewOptimizer(oracle, log),
		store:        st,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/import", s.handleImport)
		r.Get("/api/import/{jobID}/status", s.handleImportStatus)
		r.Post("/api/categorize", s.handleCategorize)
		r.Post("/api/organize", s.handleOrganize)
		r.Get("/api/bookmarks", s.handleListBookmarks)
		r.Get("/api/export", s.handleExport)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
