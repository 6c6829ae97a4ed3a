// Argus - Home Security Event Processing Backend
// Copyright 2026 Argus Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/argushq/argus

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/argushq/argus/internal/correlation"
	"github.com/argushq/argus/internal/database"
)

// Router assembles the HTTP surface.
type Router struct {
	handler    *Handler
	middleware *Middleware
}

// NewRouter creates a router with the given dependencies.
func NewRouter(db *database.DB, corr *correlation.Service, mwConfig *MiddlewareConfig) *Router {
	return &Router{
		handler:    NewHandler(db, corr),
		middleware: NewMiddleware(mwConfig),
	}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order.
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(RequestLogging)
	r.Use(router.middleware.CORS()) // Global so OPTIONS preflight works

	// Health endpoints get a permissive limiter so monitoring can poll.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.middleware.RateLimitHealth())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// Data endpoints.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.middleware.RateLimit())
		r.Use(PrometheusMetrics)

		r.Get("/events", router.handler.ListEvents)
		r.Get("/events/{id}", router.handler.GetEvent)
		r.Get("/events/group/{groupID}", router.handler.EventsByGroup)
		r.Get("/cameras", router.handler.ListCameras)
		r.Get("/correlation/stats", router.handler.CorrelationStats)
		r.Delete("/correlation/buffer", router.handler.ClearCorrelationBuffer)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
