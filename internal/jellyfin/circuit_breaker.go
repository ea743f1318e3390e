// EditorsChoice - Curated Carousel Companion for Jellyfin
// Copyright 2026 EditorsChoice Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/editorschoice/editorschoice

package jellyfin

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/editorschoice/editorschoice/internal/logging"
	"github.com/editorschoice/editorschoice/internal/metrics"
	"github.com/editorschoice/editorschoice/internal/models"
)

// CircuitBreakerClient wraps Client with circuit breaker protection
// for request-time catalogue calls. The startup coordinator bypasses
// this wrapper: its probe and registration loops own their retry
// semantics and must observe every upstream failure directly.
//
// DETERMINISM NOTE: the breaker uses real time (via sony/gobreaker)
// for its interval and timeout calculations. Tests should exercise
// the wrapped Client directly.
type CircuitBreakerClient struct {
	client *Client
	cb     *gobreaker.CircuitBreaker[any]
	name   string
}

var _ Library = (*CircuitBreakerClient)(nil)

// NewCircuitBreakerClient wraps a Client with a circuit breaker.
// The circuit opens after a 60% failure rate over at least 10
// requests, waits 30 seconds before half-opening and admits 3
// concurrent probes in the half-open state. The window is tighter
// than typical batch-sync breakers because every carousel request
// blocks a page load in the host's web client.
func NewCircuitBreakerClient(client *Client) *CircuitBreakerClient {
	cbName := "jellyfin-api"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0)

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6
			if shouldTrip {
				logging.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", failureRatio*100).Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},

		// A 404 is an answer from a healthy host, not a failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)
			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &CircuitBreakerClient{
		client: client,
		cb:     cb,
		name:   cbName,
	}
}

func (cbc *CircuitBreakerClient) execute(operation string, fn func() (any, error)) (any, error) {
	start := time.Now()
	result, err := cbc.cb.Execute(fn)
	metrics.ObserveUpstream(operation, time.Since(start), err)
	return result, err
}

// castResult safely type-casts the circuit breaker result.
func castResult[T any](result any, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	typed, ok := result.(*T)
	if !ok {
		return nil, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Items queries the item catalogue with circuit breaker protection.
func (cbc *CircuitBreakerClient) Items(ctx context.Context, q models.ItemQuery) (*models.ItemsPage, error) {
	return castResult[models.ItemsPage](cbc.execute("items", func() (any, error) {
		return cbc.client.Items(ctx, q)
	}))
}

// UserItem fetches one item as seen by a user, with circuit breaker
// protection.
func (cbc *CircuitBreakerClient) UserItem(ctx context.Context, userID, itemID string) (*models.Item, error) {
	return castResult[models.Item](cbc.execute("user_item", func() (any, error) {
		return cbc.client.UserItem(ctx, userID, itemID)
	}))
}

// UserByID fetches a user record with circuit breaker protection.
func (cbc *CircuitBreakerClient) UserByID(ctx context.Context, userID string) (*models.User, error) {
	return castResult[models.User](cbc.execute("user", func() (any, error) {
		return cbc.client.UserByID(ctx, userID)
	}))
}

// Ancestors fetches an item's container chain with circuit breaker
// protection.
func (cbc *CircuitBreakerClient) Ancestors(ctx context.Context, userID, itemID string) ([]models.Item, error) {
	result, err := cbc.execute("ancestors", func() (any, error) {
		return cbc.client.Ancestors(ctx, userID, itemID)
	})
	if err != nil {
		return nil, err
	}
	typed, ok := result.([]models.Item)
	if !ok {
		return nil, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}
