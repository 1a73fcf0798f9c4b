// Package server exposes a small status HTTP API over the deals store.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fulmenhq/gofulmen/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/goinupdeals/snackdeals/internal/config"
	"github.com/goinupdeals/snackdeals/internal/core/store"
)

// Server represents the status HTTP server.
type Server struct {
	router *chi.Mux
	server *http.Server
	store  *store.Store
	logger *logging.Logger
	cfg    config.ServerConfig
}

// New creates a status server backed by the deals store.
func New(cfg config.ServerConfig, st *store.Store, logger *logging.Logger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(RequestID)
	r.Use(middleware.Recoverer)

	s := &Server{
		router: r,
		store:  st,
		logger: logger,
		cfg:    cfg,
	}

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, req, http.StatusNotFound, "not_found", "the requested resource was not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, req, http.StatusMethodNotAllowed, "method_not_allowed", "the requested method is not allowed")
	})

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/version", s.handleVersion)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/deals", s.handleListDeals)
		r.Get("/deals/best", s.handleBestDeal)
		r.Get("/deals/posted", s.handlePostedDeals)
	})
}

// Start runs the HTTP server until it fails or is shut down.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	if s.logger != nil {
		s.logger.Info("Starting status server", zap.String("addr", addr))
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	if s.logger != nil {
		s.logger.Info("Shutting down status server")
	}
	return s.server.Shutdown(ctx)
}

// Handler exposes the router for testing.
func (s *Server) Handler() http.Handler {
	return s.router
}
