// Package web provides the HTTP API for uploading, filtering and exporting
// asset inventories. It is plumbing only: all normalization logic lives in
// the parser package and all persistence in the store package.
package web

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/asetfilter/asetfilter/internal/config"
	"github.com/asetfilter/asetfilter/internal/parser"
	"github.com/asetfilter/asetfilter/internal/store"
	"github.com/asetfilter/asetfilter/internal/web/middleware"
)

// Datastore is the persistence surface the handlers need.
// Satisfied by *store.Store.
type Datastore interface {
	ReplaceDataset(ctx context.Context, datasetID uuid.UUID, records []parser.Record) (int64, error)
	RecordUpload(ctx context.Context, u store.Upload) error
	ListUploads(ctx context.Context, limit int) ([]store.Upload, error)
	ListAssets(ctx context.Context, f store.Filter, page, pageSize int) ([]store.Asset, int64, error)
	ExportAssets(ctx context.Context, f store.Filter) ([]store.Asset, error)
	FilterOptions(ctx context.Context) (store.Options, error)
	Reset(ctx context.Context) error
}

// Server is the HTTP server for the asset inventory application.
type Server struct {
	db     Datastore
	cfg    *config.Config
	router *chi.Mux
	server *http.Server
}

// NewServer creates a new Server instance.
func NewServer(db Datastore, cfg *config.Config) *Server {
	s := &Server{
		db:     db,
		cfg:    cfg,
		router: chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Server.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5))
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		// Mutating routes go through API key auth; reads stay open.
		r.Group(func(r chi.Router) {
			r.Use(middleware.APIKeyAuth(&s.cfg.Security))
			r.Post("/upload", s.handleUpload)
			r.Delete("/assets", s.handleReset)
		})

		r.Get("/assets", s.handleListAssets)
		r.Get("/assets/filters", s.handleFilterOptions)

		r.Get("/export", s.handleExport)

		r.Get("/history", s.handleHistory)
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
