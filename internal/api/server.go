package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/outline/internal/config"
	"github.com/dgallion1/outline/internal/outline"
	"github.com/dgallion1/outline/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for outline parsing.
type Server struct {
	router  chi.Router
	outline *outline.Parser
	jobs    *pipeline.Orchestrator
	log     *slog.Logger
	cfg     config.Config
}

// NewServer creates and configures the HTTP server. op parses outline
// markup unless a request asks for another marker. The job endpoints answer
// 503 when jobs is nil.
func NewServer(op *outline.Parser, jobs *pipeline.Orchestrator, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		outline: op,
		jobs:    jobs,
		log:     log,
		cfg:     cfg,
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

		r.Post("/api/parse", s.handleParse)
		r.Post("/api/parse/batch", s.handleBatchParse)
		r.Post("/api/chunk", s.handleChunk)
		r.Post("/api/render", s.handleRender)

		r.Post("/api/jobs", s.handleSubmitJob)
		r.Get("/api/jobs/{jobID}", s.handleJobStatus)
		r.Get("/api/jobs/{jobID}/result", s.handleJobResult)
		r.Get("/api/stats", s.handleStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
