package server

import (
	"context"
	"net/http"
	"time"

	"github.com/hongminglow/accounts-be/internal/config"
	"github.com/hongminglow/accounts-be/internal/http/handlers"
	"github.com/hongminglow/accounts-be/internal/identity"
	"github.com/hongminglow/accounts-be/internal/logging"
	"github.com/hongminglow/accounts-be/internal/middleware"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, svc *identity.Service, log logging.Logger) *Server {
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           Handler(cfg, svc, log),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}
}

// Handler builds the routed handler chain: request logging, then CORS, then
// the mux.
func Handler(cfg config.Config, svc *identity.Service, log logging.Logger) http.Handler {
	mux := http.NewServeMux()
	handlers.NewHealthHandler(time.Now()).Register(mux)
	handlers.NewAPIHandler().Register(mux)
	handlers.NewAuthHandler(svc, log).Register(mux)
	handlers.NewAdminHandler(svc, log).Register(mux)

	return middleware.Logging(log, middleware.CORS(cfg.CORSOrigins, mux))
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
