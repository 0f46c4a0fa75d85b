// Package server provides the HTTP API for RAGVision.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ragvision/ragvision/internal/config"
	"github.com/ragvision/ragvision/internal/ingest"
	"github.com/ragvision/ragvision/internal/router"
	"github.com/ragvision/ragvision/internal/session"
)

// Server is the HTTP server for the RAGVision API.
type Server struct {
	router   *router.Router
	pipeline *ingest.Pipeline
	registry *session.Registry
	config   *config.Config
	logger   *zap.Logger
	server   *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	rt *router.Router,
	pipeline *ingest.Pipeline,
	registry *session.Registry,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		router:   rt,
		pipeline: pipeline,
		registry: registry,
		config:   cfg,
		logger:   logger,
	}
}

// Routes builds the chi router with all API routes mounted.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Post("/api/v1/chat", s.handleChat)
	r.Get("/api/v1/status", s.handleStatus)
	r.Delete("/api/v1/sessions/{id}", s.handleEvictSession)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
