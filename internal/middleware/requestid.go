// EditorsChoice - Curated Carousel Companion for Jellyfin
// Copyright 2026 EditorsChoice Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/editorschoice/editorschoice

// Package middleware provides the HTTP middleware shared by all
// routes: request-ID propagation and Prometheus instrumentation.
package middleware

import (
	"net/http"

	"github.com/editorschoice/editorschoice/internal/logging"
)

// RequestID assigns every request a unique ID, propagates it through
// the request context for logging, and echoes it in the X-Request-ID
// response header. An ID supplied by the caller is reused so traces
// can span the host and this service.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = logging.GenerateRequestID()
		}

		ctx := logging.ContextWithRequestID(r.Context(), id)
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
