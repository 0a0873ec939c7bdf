// Package api serves an assembled requirements tree over HTTP.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jcb91/doorstop/internal/config"
	"github.com/jcb91/doorstop/internal/tree"
)

// Server is the HTTP API over a requirements tree.
type Server struct {
	router chi.Router
	tree   *tree.Tree
	log    *slog.Logger
	cfg    config.Config
}

// NewServer creates and configures the HTTP server. An empty API key
// leaves the API unauthenticated, which suits local serving.
func NewServer(t *tree.Tree, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		tree: t,
		log:  log,
		cfg:  cfg,
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
			r.Use(AuthMiddleware(s.cfg.APIKey))
		}

		r.Get("/api/tree", s.handleTree)
		r.Get("/api/documents", s.handleListDocuments)
		r.Post("/api/documents", s.handleCreateDocument)
		r.Get("/api/documents/{prefix}", s.handleGetDocument)
		r.Get("/api/documents/{prefix}/items", s.handleListItems)
		r.Get("/api/documents/{prefix}/published", s.handlePublished)
		r.Get("/api/items/{itemID}", s.handleGetItem)
		r.Put("/api/items/{childID}/links/{parentID}", s.handlePutLink)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}
