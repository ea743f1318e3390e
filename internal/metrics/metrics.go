// EditorsChoice - Curated Carousel Companion for Jellyfin
// Copyright 2026 EditorsChoice Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/editorschoice/editorschoice

// Package metrics defines the Prometheus instrumentation for the
// service: HTTP endpoint latency, startup probe/registration
// progress, selection outcomes and upstream circuit breaker state.
// All collectors register through promauto at package load.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "editorschoice_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "editorschoice_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "editorschoice_api_active_requests",
			Help: "Number of API requests currently being served",
		},
	)

	// Startup coordinator metrics
	ProbeRounds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "editorschoice_probe_rounds_total",
			Help: "Readiness probe rounds against the host, by outcome",
		},
		[]string{"outcome"}, // "ready", "unreachable"
	)

	RegistrationAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "editorschoice_registration_attempts_total",
			Help: "Transformation registration attempts, by outcome",
		},
		[]string{"outcome"}, // "success", "retryable", "terminal"
	)

	RegistrationCompleted = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "editorschoice_registration_completed",
			Help: "1 once the transformation registration succeeded",
		},
	)

	// Selection metrics
	SelectionRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "editorschoice_selection_requests_total",
			Help: "Carousel selection requests, by effective mode and fallback",
		},
		[]string{"mode", "fallback"},
	)

	SelectionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "editorschoice_selection_duration_seconds",
			Help:    "Duration of carousel selection in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"mode"},
	)

	SelectionItemsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "editorschoice_selection_items_returned",
			Help:    "Number of items returned per carousel selection",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
	)

	// Upstream circuit breaker metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "editorschoice_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "editorschoice_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "editorschoice_upstream_request_duration_seconds",
			Help:    "Duration of host API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	UpstreamRequestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "editorschoice_upstream_request_errors_total",
			Help: "Host API request errors",
		},
		[]string{"operation"},
	)
)

// ObserveAPIRequest records one served API request.
func ObserveAPIRequest(method, endpoint string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// ObserveUpstream records one host API call.
func ObserveUpstream(operation string, duration time.Duration, err error) {
	UpstreamRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		UpstreamRequestErrors.WithLabelValues(operation).Inc()
	}
}
