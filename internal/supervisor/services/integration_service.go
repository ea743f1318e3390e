// EditorsChoice - Curated Carousel Companion for Jellyfin
// Copyright 2026 EditorsChoice Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/editorschoice/editorschoice

package services

import (
	"context"

	"github.com/thejerf/suture/v4"

	"github.com/editorschoice/editorschoice/internal/logging"
)

// IntegrationService runs the startup coordinator exactly once under
// supervision. The coordinator carries its own probe and retry
// budgets, so a failed run is terminal by design: the service reports
// ErrDoNotRestart and the process continues in degraded mode without
// the carousel hook.
type IntegrationService struct {
	run func(ctx context.Context) error
}

// NewIntegrationService wraps the coordinator's Run function.
func NewIntegrationService(run func(ctx context.Context) error) *IntegrationService {
	return &IntegrationService{run: run}
}

// Serve implements suture.Service.
func (s *IntegrationService) Serve(ctx context.Context) error {
	if err := s.run(ctx); err != nil && ctx.Err() == nil {
		logging.Error().Err(err).Msg("Startup integration failed, continuing without carousel hook")
	}
	return suture.ErrDoNotRestart
}

// String identifies the service in supervisor logs.
func (s *IntegrationService) String() string {
	return "startup-integration"
}
