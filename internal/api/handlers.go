// EditorsChoice - Curated Carousel Companion for Jellyfin
// Copyright 2026 EditorsChoice Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/editorschoice/editorschoice

package api

import (
	"context"
	_ "embed"
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/editorschoice/editorschoice/internal/config"
	"github.com/editorschoice/editorschoice/internal/inject"
	"github.com/editorschoice/editorschoice/internal/jellyfin"
	"github.com/editorschoice/editorschoice/internal/logging"
	"github.com/editorschoice/editorschoice/internal/metrics"
	"github.com/editorschoice/editorschoice/internal/selection"
)

//go:embed assets/carousel.js
var carouselScript []byte

// Handler holds the dependencies of all HTTP handlers.
type Handler struct {
	cfg    *config.Config
	lib    jellyfin.Library
	engine *selection.Engine

	// readyCheck reports whether the host is reachable; nil means
	// readiness equals liveness.
	readyCheck func(ctx context.Context) error
}

// NewHandler wires the handler set.
func NewHandler(cfg *config.Config, lib jellyfin.Library, engine *selection.Engine, readyCheck func(ctx context.Context) error) *Handler {
	return &Handler{
		cfg:        cfg,
		lib:        lib,
		engine:     engine,
		readyCheck: readyCheck,
	}
}

// Script serves the embedded carousel client script.
func (h *Handler) Script(w http.ResponseWriter, _ *http.Request) {
	if len(carouselScript) == 0 {
		http.Error(w, "script asset missing", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(carouselScript)
}

// Favourites runs the selection engine for the requesting user and
// returns the carousel payload. The user comes from the userId query
// parameter the client script supplies; an unresolvable user maps to
// 404 and any internal failure to 503, with no detail leaked.
func (h *Handler) Favourites(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeError(w, http.StatusNotFound, "user not resolved")
		return
	}

	user, err := h.lib.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, jellyfin.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not resolved")
			return
		}
		logging.Ctx(ctx).Error().Err(err).Msg("User lookup failed")
		writeError(w, http.StatusServiceUnavailable, "selection unavailable")
		return
	}

	start := time.Now()
	result, err := h.engine.Select(ctx, user)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Selection failed")
		writeError(w, http.StatusServiceUnavailable, "selection unavailable")
		return
	}

	metrics.SelectionRequests.WithLabelValues(result.Mode, boolLabel(result.Fallback)).Inc()
	metrics.SelectionDuration.WithLabelValues(result.Mode).Observe(time.Since(start).Seconds())
	metrics.SelectionItemsReturned.Observe(float64(len(result.Items)))
	logging.Ctx(ctx).Info().
		Str("mode", result.Mode).
		Bool("fallback", result.Fallback).
		Int("items", len(result.Items)).
		Msg("Carousel selection complete")

	writeJSON(w, http.StatusOK, newCarouselResponse(&h.cfg.Carousel, result))
}

// transformRequest is the body the host's transformation pipeline
// POSTs for each served entry document.
type transformRequest struct {
	Contents string `json:"contents"`
}

// Transform rewrites a document body sent by the host so it loads the
// carousel script.
func (h *Handler) Transform(w http.ResponseWriter, r *http.Request) {
	var req transformRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed transform request")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(inject.Apply(req.Contents)))
}

// HealthLive reports process liveness.
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HealthReady reports whether the host is reachable.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if h.readyCheck != nil {
		if err := h.readyCheck(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "host unreachable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
