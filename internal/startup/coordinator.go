// EditorsChoice - Curated Carousel Companion for Jellyfin
// Copyright 2026 EditorsChoice Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/editorschoice/editorschoice

// Package startup makes the carousel appear in the host's web client
// without a restart race.
//
// Two mutually exclusive integration strategies exist. The inject
// strategy edits the web client's index.html on disk once. The
// transform strategy waits for the host's HTTP pipeline to come up,
// then registers a server-side content transformation with
// retry/backoff, tolerating the 404/503 responses a booting host
// returns before its plugin routes are mounted.
//
// Every failure here is non-fatal: the host must never be prevented
// from serving because the carousel could not hook in.
package startup

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/editorschoice/editorschoice/internal/config"
	"github.com/editorschoice/editorschoice/internal/inject"
	"github.com/editorschoice/editorschoice/internal/jellyfin"
	"github.com/editorschoice/editorschoice/internal/logging"
	"github.com/editorschoice/editorschoice/internal/metrics"
	"github.com/editorschoice/editorschoice/internal/models"
)

// Coordinator performs the one-time startup integration.
type Coordinator struct {
	cfg    *config.Config
	fs     afero.Fs
	client *jellyfin.Client
	reg    models.Registration
}

// New builds a coordinator from the loaded configuration. The
// registration payload is constructed once here; retries resend the
// same value.
func New(cfg *config.Config, fs afero.Fs) *Coordinator {
	base := TargetBaseURL(cfg.Jellyfin)
	endpoint := ResolveBasePath(cfg.Jellyfin.BasePath) + "/editorschoice/transform"

	return &Coordinator{
		cfg:    cfg,
		fs:     fs,
		client: jellyfin.NewClient(base, cfg.Jellyfin.APIKey, 10*time.Second),
		reg: models.Registration{
			// Deterministic so the host deduplicates re-registrations
			// across restarts.
			ID:                     uuid.NewSHA1(uuid.NameSpaceURL, []byte("editorschoice"+endpoint)).String(),
			FileNamePattern:        "index.html",
			TransformationEndpoint: endpoint,
		},
	}
}

// Registration returns the payload this coordinator registers.
func (c *Coordinator) Registration() models.Registration {
	return c.reg
}

// TargetBaseURL picks the URL the probe and registration calls go to:
// loopback on the host's own bound port when it can be derived from
// the configured host URL, otherwise the explicit public URL.
func TargetBaseURL(jf config.JellyfinConfig) string {
	if u, err := url.Parse(jf.URL); err == nil && u.Port() != "" {
		return "http://127.0.0.1:" + u.Port()
	}
	if jf.PublicURL != "" {
		return strings.TrimSuffix(jf.PublicURL, "/")
	}
	return strings.TrimSuffix(jf.URL, "/")
}

// ResolveBasePath normalizes a configured reverse-proxy base path to
// a single leading slash with no trailing slash. Anything
// unusable resolves to empty (root).
func ResolveBasePath(raw string) string {
	trimmed := strings.Trim(strings.TrimSpace(raw), "/")
	if trimmed == "" {
		return ""
	}
	return "/" + trimmed
}

// Run executes the configured integration strategy. The caller is
// expected to run it detached from the serving path; cancellation of
// ctx aborts promptly at any wait or probe boundary.
func (c *Coordinator) Run(ctx context.Context) error {
	if c.cfg.Integration.Strategy == config.StrategyInject {
		return c.injectScript()
	}
	return c.registerTransformation(ctx)
}

// injectScript edits the web client's entry document in place.
// Failures are logged and swallowed; a broken web client directory
// must not block startup.
func (c *Coordinator) injectScript() error {
	path := filepath.Join(c.cfg.Jellyfin.WebClientPath, "index.html")
	if err := inject.InjectFile(c.fs, path); err != nil {
		logging.Error().Err(err).Str("path", path).Msg("Script injection failed, continuing without carousel hook")
		return nil
	}
	logging.Info().Str("path", path).Msg("Script tag injected")
	return nil
}

func (c *Coordinator) registerTransformation(ctx context.Context) error {
	integration := c.cfg.Integration

	if !sleepCtx(ctx, integration.InitialDelay) {
		return ctx.Err()
	}

	if !c.awaitReady(ctx) {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logging.Error().Int("rounds", integration.ProbeAttempts).Msg("Host never became ready, abandoning registration")
		return fmt.Errorf("host not ready after %d probe rounds", integration.ProbeAttempts)
	}

	return c.register(ctx)
}

// awaitReady probes the host until its HTTP pipeline answers. Any
// status below 500 counts as ready; a 404 from a host that has not
// mounted all routes yet still proves the pipeline is up. Transport
// errors (connection refused) do not.
func (c *Coordinator) awaitReady(ctx context.Context) bool {
	integration := c.cfg.Integration
	backoff := integration.ProbeBackoffInitial

	for round := 1; round <= integration.ProbeAttempts; round++ {
		if ctx.Err() != nil {
			return false
		}

		probes := []func(context.Context) (int, error){
			c.client.PublicInfoStatus,
			c.client.RootStatus,
		}
		for _, probe := range probes {
			status, err := probe(ctx)
			if err == nil && status < http.StatusInternalServerError {
				metrics.ProbeRounds.WithLabelValues("ready").Inc()
				logging.Info().Int("round", round).Int("status", status).Msg("Host HTTP pipeline is ready")
				return true
			}
		}

		metrics.ProbeRounds.WithLabelValues("unreachable").Inc()
		logging.Debug().Int("round", round).Dur("backoff", backoff).Msg("Host not ready yet")

		if round < integration.ProbeAttempts {
			if !sleepCtx(ctx, backoff) {
				return false
			}
			backoff = min(backoff*2, integration.ProbeBackoffMax)
		}
	}
	return false
}

// register sends the registration until it sticks. 503 and 404 mean
// the host's transformation endpoint is not mounted yet and are
// retried, as are network errors. Any other non-2xx status is a
// terminal rejection.
func (c *Coordinator) register(ctx context.Context) error {
	integration := c.cfg.Integration
	backoff := integration.RegisterBackoffInitial

	for attempt := 1; attempt <= integration.RegisterAttempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		status, err := c.client.RegisterTransformation(ctx, c.reg)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			metrics.RegistrationAttempts.WithLabelValues("retryable").Inc()
			logging.Warn().Err(err).Int("attempt", attempt).Msg("Registration call failed")

		case status >= 200 && status < 300:
			metrics.RegistrationAttempts.WithLabelValues("success").Inc()
			metrics.RegistrationCompleted.Set(1)
			logging.Info().Int("attempt", attempt).Str("endpoint", c.reg.TransformationEndpoint).Msg("Transformation registered")
			return nil

		case status == http.StatusServiceUnavailable || status == http.StatusNotFound:
			metrics.RegistrationAttempts.WithLabelValues("retryable").Inc()
			logging.Warn().Int("attempt", attempt).Int("status", status).Msg("Host not accepting registrations yet")

		default:
			metrics.RegistrationAttempts.WithLabelValues("terminal").Inc()
			logging.Error().Int("status", status).Msg("Registration rejected, giving up")
			return fmt.Errorf("registration rejected with status %d", status)
		}

		if attempt < integration.RegisterAttempts {
			if !sleepCtx(ctx, backoff) {
				return ctx.Err()
			}
			backoff = min(backoff*2, integration.RegisterBackoffMax)
		}
	}

	logging.Error().Int("attempts", integration.RegisterAttempts).Msg("Registration attempts exhausted, continuing without transformation hook")
	return fmt.Errorf("registration not accepted after %d attempts", integration.RegisterAttempts)
}

// sleepCtx waits for d or until ctx is canceled. Returns false on
// cancellation.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
