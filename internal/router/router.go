// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// medaudio category service. It organizes routes into public, admin and
// operational groups with appropriate middleware stacks.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"medaudio/internal/handlers"
	"medaudio/internal/middleware"
)

// Handlers groups the endpoint handlers mounted by New.
type Handlers struct {
	Public  *handlers.Public
	Admin   *handlers.Admin
	Compat  *handlers.Compat
	Health  http.HandlerFunc
	Metrics http.Handler
}

// Options configures the middleware chains.
type Options struct {
	// AdminKeyHash is the bcrypt hash of the admin API key. Empty disables
	// the check.
	AdminKeyHash string
	CORSOrigins  []string
	// RateLimit is the number of admin requests allowed per RateWindow and
	// client IP. Zero disables limiting.
	RateLimit  int
	RateWindow time.Duration
	Observer   middleware.RequestObserver
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(h Handlers, opts Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger(opts.Observer))
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.CORS(opts.CORSOrigins))

	r.Get("/health", h.Health)
	if h.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.Metrics)
	}

	// Public read API. Fixed segments are registered before /{id}.
	r.Route("/api/categories", func(r chi.Router) {
		r.Get("/", h.Public.List)
		r.Get("/tree", h.Public.Tree)
		r.Get("/stats", h.Public.Stats)
		r.Get("/options", h.Public.Options)
		r.Get("/path", h.Public.Path)
		r.Get("/{id}", h.Public.Get)
	})

	// Admin API, rate limited and guarded by the admin key.
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.RateLimit(opts.RateLimit, opts.RateWindow))
		r.Use(middleware.RequireAdminKey(opts.AdminKeyHash))

		r.Route("/categories", func(r chi.Router) {
			r.Post("/", h.Admin.Create)
			r.Post("/reorder", h.Admin.Reorder)
			r.Get("/consistency", h.Admin.Consistency)
			r.Put("/{id}", h.Admin.Update)
			r.Delete("/{id}", h.Admin.Delete)
		})

		r.Route("/cache", func(r chi.Router) {
			r.Get("/health", h.Admin.CacheHealth)
			r.Get("/stats", h.Admin.CacheStats)
			r.Post("/warmup", h.Admin.CacheWarmup)
		})

		r.Route("/audios", func(r chi.Router) {
			r.Get("/compatibility", h.Compat.Report)
			r.Post("/fix", h.Compat.Fix)
			r.Get("/{id}/consistency", h.Compat.Check)
		})
	})

	return r
}
