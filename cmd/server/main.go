// EditorsChoice - Curated Carousel Companion for Jellyfin
// Copyright 2026 EditorsChoice Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/editorschoice/editorschoice

// Command server runs the EditorsChoice companion service: it hooks
// the carousel into the Jellyfin web client at startup and serves the
// carousel endpoints thereafter.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"

	"github.com/editorschoice/editorschoice/internal/api"
	"github.com/editorschoice/editorschoice/internal/config"
	"github.com/editorschoice/editorschoice/internal/jellyfin"
	"github.com/editorschoice/editorschoice/internal/logging"
	"github.com/editorschoice/editorschoice/internal/selection"
	"github.com/editorschoice/editorschoice/internal/startup"
	"github.com/editorschoice/editorschoice/internal/supervisor"
	"github.com/editorschoice/editorschoice/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Configuration invalid")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("host", cfg.Jellyfin.URL).
		Str("mode", cfg.Carousel.NormalizedMode()).
		Str("strategy", cfg.Integration.Strategy).
		Msg("Starting EditorsChoice")

	// Request-time host access goes through the circuit breaker; the
	// startup coordinator builds its own plain client.
	client := jellyfin.NewClient(cfg.Jellyfin.URL, cfg.Jellyfin.APIKey, cfg.Server.Timeout)
	lib := jellyfin.NewCircuitBreakerClient(client)
	engine := selection.New(lib, cfg.Carousel)

	readyCheck := func(ctx context.Context) error {
		_, err := client.PublicInfoStatus(ctx)
		return err
	}

	handler := api.NewHandler(cfg, lib, engine, readyCheck)
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           api.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	coordinator := startup.New(cfg, afero.NewOsFs())

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	tree.AddIntegrationService(services.NewIntegrationService(coordinator.Run))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("addr", server.Addr).Msg("Serving")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Fatal().Err(err).Msg("Supervisor exited with error")
	}
	logging.Info().Msg("Shutdown complete")
}
