package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/dgallion1/sylcheck/internal/catalog"
	"github.com/dgallion1/sylcheck/internal/checker"
	"github.com/dgallion1/sylcheck/internal/config"
	"github.com/dgallion1/sylcheck/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// SyllabusChecker checks a single uploaded syllabus.
type SyllabusChecker interface {
	CheckReader(ctx context.Context, r io.Reader, filename string) (*checker.Report, error)
}

// CatalogAdmin exposes catalog cache statistics and maintenance.
type CatalogAdmin interface {
	Stats() catalog.Stats
	ClearCache()
}

// Server is the HTTP API server for sylcheck.
type Server struct {
	router       chi.Router
	checker      SyllabusChecker
	orchestrator *pipeline.Orchestrator
	catalog      CatalogAdmin
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. cat may be nil when
// catalog validation is disabled.
func NewServer(chk SyllabusChecker, orch *pipeline.Orchestrator, cat CatalogAdmin, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		checker:      chk,
		orchestrator: orch,
		catalog:      cat,
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

	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Post("/api/check-syllabus", s.handleCheck)
		r.Post("/api/check-syllabus/batch", s.handleBatchCheck)
		r.Get("/api/jobs/{jobID}", s.handleJobStatus)
		r.Get("/api/requirements", s.handleRequirements)

		r.Get("/api/stats/catalog", s.handleCatalogStats)
		r.Delete("/api/catalog/cache", s.handleClearCatalogCache)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
