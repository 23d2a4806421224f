// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/productrec/internal/auth"
	"github.com/tomtom215/productrec/internal/middleware"
)

// Router sets up HTTP routes using the Chi router.
type Router struct {
	handler       *Handler
	auth          *auth.Middleware
	chiMiddleware *ChiMiddleware
	perf          *middleware.PerformanceMonitor
}

// NewRouter creates a router. authMiddleware guards the training and
// admin endpoints; perf may be nil.
func NewRouter(handler *Handler, authMiddleware *auth.Middleware, chiMW *ChiMiddleware, perf *middleware.PerformanceMonitor) *Router {
	if chiMW == nil {
		chiMW = NewChiMiddleware(nil)
	}
	if authMiddleware == nil {
		authMiddleware = auth.NewMiddleware(nil, nil, nil)
	}
	return &Router{
		handler:       handler,
		auth:          authMiddleware,
		chiMiddleware: chiMW,
		perf:          perf,
	}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())
	r.Use(middleware.PrometheusMetrics)
	if router.perf != nil {
		r.Use(router.perf.Middleware)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Resource not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed", nil)
	})

	// Health endpoints
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitCustom(RateLimitHealth))
		r.Use(APISecurityHeaders())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// Compact recommendation endpoint
	r.Group(func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(middleware.Compression)
		r.Get("/recommend/{userID}", router.handler.Recommend)
	})

	// Recommendation API
	r.Route("/api/v1/recommendations", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(middleware.Compression)

		r.Get("/user/{userID}", router.handler.GetRecommendations)
		r.Get("/user/{userID}/neighbors", router.handler.GetNeighbors)
		r.Get("/status", router.handler.GetRecommendationStatus)
		r.Get("/config", router.handler.GetRecommendationConfig)

		r.With(
			router.chiMiddleware.RateLimitCustom(RateLimitTrain),
			router.auth.RequireAdmin,
		).Post("/train", router.handler.TriggerTraining)
	})

	// Admin endpoints
	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitCustom(RateLimitAdmin))
		r.Use(APISecurityHeaders())
		r.Use(router.auth.RequireAdmin)
		r.Get("/performance", router.handler.GetPerformance)
	})

	// Prometheus scrape endpoint
	r.Handle("/metrics", promhttp.Handler())

	return r
}
