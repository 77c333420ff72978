// Reclens - User-Based Collaborative Filtering Recommendation Service
// Copyright 2026 Reclens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens/reclens

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router assembles the HTTP routes of the service.
type Router struct {
	handler    *Handler
	middleware *Middleware
}

// NewRouter creates a router serving the given handler with the given
// middleware stack.
func NewRouter(handler *Handler, mw *Middleware) *Router {
	if mw == nil {
		mw = NewMiddleware(nil)
	}
	return &Router{handler: handler, middleware: mw}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order.
	r.Use(RequestID())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.middleware.CORS())

	// Health check, no rate limit so monitoring stays cheap.
	r.Get("/health", router.handler.Health)

	// Legacy recommendation surface with bare payloads.
	r.Route("/reco", func(r chi.Router) {
		r.Use(router.middleware.RateLimit())
		r.Use(PrometheusMetrics())

		r.Get("/{model}/{user}", router.handler.Reco)
	})

	// Versioned API with enveloped responses.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.middleware.RateLimit())
		r.Use(PrometheusMetrics())

		r.Post("/reco/batch", router.handler.BatchReco)
		r.Get("/status", router.handler.Status)
	})

	// Observability.
	r.Handle("/metrics", promhttp.Handler())

	return r
}
