// Package httpserver wraps the standard HTTP server with portal defaults.
package httpserver

import (
	"context"
	"fmt"
	"net/http"

	"github.com/SevaSetu/scheme_portal/internal/config"
	"github.com/SevaSetu/scheme_portal/pkg/logger"
)

// Server owns the http.Server lifecycle.
type Server struct {
	srv *http.Server
	log *logger.Logger
}

// New constructs a server for the given handler.
func New(cfg config.ServerConfig, log *logger.Logger, handler http.Handler) *Server {
	if log == nil {
		log = logger.NewDefault("httpserver")
	}
	return &Server{
		srv: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		log: log,
	}
}

// Start blocks serving requests until Shutdown or failure.
func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

// Shutdown drains connections and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.srv.Addr }
