// Package server exposes the secrets service over HTTP. Every /api/v1 route
// sits behind bearer-token authentication; nothing cryptographic happens
// here.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/vaultn8n/vaultn8n/internal/config"
	"github.com/vaultn8n/vaultn8n/internal/events"
	"github.com/vaultn8n/vaultn8n/internal/services/secrets"
)

// Server is the HTTP front end of the secrets service.
type Server struct {
	mux       *http.ServeMux
	service   *secrets.Service
	logger    *events.Logger
	authToken string

	httpServer *http.Server
}

// New creates a server wired to the given service.
func New(cfg *config.Config, service *secrets.Service, logger *events.Logger) *Server {
	s := &Server{
		mux:       http.NewServeMux(),
		service:   service,
		logger:    logger.WithField("component", "server"),
		authToken: cfg.Vault.AuthToken,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/", s.handleRoot)

	s.mux.Handle("/api/v1/secrets/single", s.requireAuth(http.HandlerFunc(s.handleUpsertSingle)))
	s.mux.Handle("/api/v1/secrets/bulk", s.requireAuth(http.HandlerFunc(s.handleUpsertBulk)))
	s.mux.Handle("/api/v1/secrets", s.requireAuth(http.HandlerFunc(s.handleSecrets)))
}

// Handler returns the root handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start listens on addr and serves until Shutdown is called or the listener
// fails.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.WithField("addr", addr).Info("Server listening")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
