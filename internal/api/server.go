// SPDX-License-Identifier: MIT

// Package api assembles occam's HTTP surface: title search, subscription
// optimization and the health probes, wrapped in the canonical middleware
// stack. Handlers stay thin; domain rules live in the provider and optimizer
// packages and errors flow back through the shared taxonomy.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/occamtv/occam/internal/api/middleware"
	"github.com/occamtv/occam/internal/health"
	"github.com/occamtv/occam/internal/model"
)

// Searcher is the slice of the upstream provider the API needs.
type Searcher interface {
	SearchTitles(ctx context.Context, query string) ([]model.Title, error)
}

// Optimizer computes subscription configurations for a set of titles.
type Optimizer interface {
	Optimize(ctx context.Context, req model.OptimizationRequest) (model.OptimizationResponse, error)
}

// Config carries the router-level knobs.
type Config struct {
	// RateLimitRPS limits requests per second per client IP. Zero disables
	// the limiter.
	RateLimitRPS int
}

// Server routes HTTP requests to the domain services.
type Server struct {
	searcher  Searcher
	optimizer Optimizer
	health    *health.Manager
	router    *chi.Mux
}

// New builds the router with the full middleware stack and all routes
// registered. The returned server is ready to serve.
func New(searcher Searcher, optimizer Optimizer, hm *health.Manager, cfg Config) *Server {
	s := &Server{
		searcher:  searcher,
		optimizer: optimizer,
		health:    hm,
	}

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics)
	r.Use(middleware.Tracing("occam.api"))
	if cfg.RateLimitRPS > 0 {
		r.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestLimit: cfg.RateLimitRPS,
			WindowSize:   time.Second,
		}))
	}

	r.Get("/health", hm.ServeHealth)
	r.Get("/ready", hm.ServeReady)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/titles/search", s.handleSearch)
		r.Post("/optimize", s.handleOptimize)
		r.Post("/recommendations", s.handleRecommendations)
	})

	// Unknown paths and wrong methods share one contract: 404 with the
	// standard envelope, regardless of HTTP method.
	r.NotFound(s.handleNotFound)
	r.MethodNotAllowed(s.handleNotFound)

	s.router = r
	return s
}

// Handler exposes the assembled router.
func (s *Server) Handler() http.Handler {
	return s.router
}
