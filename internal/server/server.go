// Package server is the development HTTP server: it serves the built site
// and exposes the annotation pipeline over HTTP.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/cryptoresearch/labsite/internal/annotate"
	"github.com/cryptoresearch/labsite/internal/biblio"
	"github.com/cryptoresearch/labsite/internal/config"
	"github.com/cryptoresearch/labsite/internal/site"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Annotator supplies the site's annotation settings and bibliography.
type Annotator interface {
	AnnotateOptions() annotate.Options
	References() (biblio.Database, error)
}

// Server is the HTTP server for labsite.
type Server struct {
	router    chi.Router
	annotator Annotator
	log       *slog.Logger
	cfg       config.Config
	report    atomic.Pointer[site.Report]
}

// NewServer creates and configures the HTTP server.
func NewServer(a Annotator, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		annotator: a,
		log:       log,
		cfg:       cfg,
	}
	s.setupRoutes()
	return s
}

// SetReport records the most recent build report for GET /api/report.
func (s *Server) SetReport(r *site.Report) {
	s.report.Store(r)
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
	r.Get("/api/report", s.handleReport)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		r.Post("/api/annotate", s.handleAnnotate)
	})

	r.Handle("/*", http.FileServer(http.Dir(s.cfg.OutputDir)))

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	report := s.report.Load()
	if report == nil {
		jsonError(w, "no build yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
