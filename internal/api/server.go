package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/chunkdown/internal/compare"
	"github.com/dgallion1/chunkdown/internal/config"
)

// Server is the HTTP API server for chunkdown.
type Server struct {
	router chi.Router
	runner *compare.Runner
	stats  *compare.Stats
	log    *slog.Logger
	cfg    config.Config
}

// NewServer creates and configures the HTTP server. runner and stats should
// share the same Stats so that single splits and comparisons are reported
// together.
func NewServer(runner *compare.Runner, stats *compare.Stats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		runner: runner,
		stats:  stats,
		log:    log,
		cfg:    cfg,
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

	// Authenticated endpoints, when a key is configured.
	r.Group(func(r chi.Router) {
		if s.cfg.Server.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.Server.APIKey, s.log))
		}

		r.Post("/api/split", s.handleSplit)
		r.Post("/api/split/upload", s.handleSplitUpload)
		r.Post("/api/compare", s.handleCompare)
		r.Get("/api/stats", s.handleStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
