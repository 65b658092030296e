// Package server is the HTTP front door of hypixel-cache.
//
// Routes:
//
//	GET /health                  liveness, always "OK"
//	GET /ready                   store ping
//	GET /metrics                 Prometheus scrape
//	GET /{type}/{identifier}     player lookup, requires the x-secret header
//
// Every other route answers 404 with the error envelope.
package server

//go:generate mockgen -source=server.go -destination=mocks/lookuper_mock.go -package=mocks Lookuper

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Sternrassler/hypixel-cache/pkg/logging"
	"github.com/Sternrassler/hypixel-cache/pkg/lookup"
	"github.com/Sternrassler/hypixel-cache/pkg/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// SecretHeader carries the shared secret.
const SecretHeader = "x-secret"

// DefaultReadyTimeout bounds each readiness check.
const DefaultReadyTimeout = 2 * time.Second

// Lookuper runs player lookups. *lookup.Service implements it.
type Lookuper interface {
	Lookup(ctx context.Context, req lookup.Request) (*lookup.Result, error)
}

// Pinger checks a dependency for readiness. cache.Store implements it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds the server configuration.
type Config struct {
	// Secret is the shared secret clients send in SecretHeader (REQUIRED).
	Secret string

	// Lookuper serves the lookup route (REQUIRED).
	Lookuper Lookuper

	// Checks are pinged by /ready, keyed by name.
	Checks map[string]Pinger

	// ReadyTimeout bounds each check. Defaults to DefaultReadyTimeout.
	ReadyTimeout time.Duration

	// Logger defaults to the "server" component logger.
	Logger *zerolog.Logger
}

// Server routes HTTP requests to the lookup pipeline.
type Server struct {
	secret       string
	lookuper     Lookuper
	checks       map[string]Pinger
	readyTimeout time.Duration
	logger       zerolog.Logger
	router       chi.Router
}

// New creates a server.
func New(cfg Config) (*Server, error) {
	if cfg.Secret == "" {
		return nil, errors.New("secret is required")
	}
	if cfg.Lookuper == nil {
		return nil, errors.New("lookuper is required")
	}

	s := &Server{
		secret:       cfg.Secret,
		lookuper:     cfg.Lookuper,
		checks:       cfg.Checks,
		readyTimeout: cfg.ReadyTimeout,
	}
	if s.readyTimeout <= 0 {
		s.readyTimeout = DefaultReadyTimeout
	}
	if cfg.Logger != nil {
		s.logger = *cfg.Logger
	} else {
		s.logger = logging.NewLogger(logging.ComponentServer)
	}

	s.router = s.routes()
	return s, nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.GetHead)
	r.Use(ResponseTime)
	r.Use(CORS)
	r.Use(AccessLog(s.logger))
	r.Use(Recover(s.logger))

	r.NotFound(handleNotFound)
	r.MethodNotAllowed(handleNotFound)

	r.Get("/health", handleHealth)
	r.Get("/ready", s.handleReady)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(RequireSecret(s.secret))
		r.Get("/{type}/{identifier}", s.handleLookup)
	})

	return r
}
