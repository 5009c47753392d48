// Package web provides the HTTP server and handlers for the table
// service. Presentation stays at this boundary: handlers translate
// requests into core operations and render JSON or CSV.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gridstore/gridstore/internal/config"
	"github.com/gridstore/gridstore/internal/table"
)

// Server is the HTTP server for the table service.
type Server struct {
	rows    *table.RowStore
	columns *table.ColumnRegistry
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a new Server instance.
func NewServer(rows *table.RowStore, columns *table.ColumnRegistry, cfg *config.Config) *Server {
	s := &Server{
		rows:    rows,
		columns: columns,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		// Derived view
		r.Get("/view", s.handleView)

		// Row operations
		r.Post("/rows", s.handleAddRow)
		r.Put("/rows/{id}", s.handleUpdateRow)
		r.Delete("/rows/{id}", s.handleDeleteRow)

		// Column operations
		r.Get("/columns", s.handleListColumns)
		r.Post("/columns", s.handleAddColumn)
		r.Post("/columns/{key}/toggle", s.handleToggleColumn)
		r.Put("/columns/order", s.handleReorderColumns)

		// CSV interchange
		r.Post("/import", s.handleImport)
		r.Get("/export", s.handleExport)
	})
}

// Start begins listening. Blocks until the server stops.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("http server listening", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
