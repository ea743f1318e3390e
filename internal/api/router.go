// EditorsChoice - Curated Carousel Companion for Jellyfin
// Copyright 2026 EditorsChoice Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/editorschoice/editorschoice

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/editorschoice/editorschoice/internal/middleware"
)

// NewRouter builds the complete route surface.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// Plugin endpoints. The transform endpoint is called by the host
	// for every served entry document and the favourites endpoint
	// once per home-screen load; 300/min per IP absorbs both with
	// room while stopping scrapes.
	r.Route("/editorschoice", func(r chi.Router) {
		r.Use(httprate.LimitByIP(300, time.Minute))
		r.Use(middleware.Prometheus)
		r.Get("/script", handler.Script)
		r.Get("/favourites", handler.Favourites)
		r.Post("/transform", handler.Transform)
	})

	// Operational endpoints. Permissive rate limit for monitors.
	r.Route("/health", func(r chi.Router) {
		r.Use(httprate.LimitByIP(1000, time.Minute))
		r.Get("/live", handler.HealthLive)
		r.Get("/ready", handler.HealthReady)
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}
