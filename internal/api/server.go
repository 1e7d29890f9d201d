package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/AstikVerma/doclens/internal/config"
	"github.com/AstikVerma/doclens/internal/index"
	"github.com/AstikVerma/doclens/internal/insights"
	"github.com/AstikVerma/doclens/internal/pipeline"
	"github.com/AstikVerma/doclens/internal/search"
)

// Server is the HTTP API server for doclens.
type Server struct {
	router   chi.Router
	runner   *pipeline.Runner
	store    *index.Store
	engine   *search.Engine
	insights *insights.Generator
	log      *slog.Logger
	cfg      config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(runner *pipeline.Runner, store *index.Store, engine *search.Engine, gen *insights.Generator, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		runner:   runner,
		store:    store,
		engine:   engine,
		insights: gen,
		log:      log,
		cfg:      cfg,
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

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/upload", s.handleUpload)
		r.Post("/process", s.handleProcess)
		r.Get("/progress", s.handleProgress)
		r.Get("/status", s.handleStatus)
		r.Get("/files", s.handleListFiles)
		r.Get("/pdf/{filename}", s.handleServePDF)
		r.Post("/similarity", s.handleSimilarity)
		r.Post("/insights", s.handleInsights)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
