// EditorsChoice - Curated Carousel Companion for Jellyfin
// Copyright 2026 EditorsChoice Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/editorschoice/editorschoice

package startup

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/editorschoice/editorschoice/internal/config"
)

// testConfig returns a config pointing at the fake host with timing
// shrunk so retry paths run in milliseconds.
func testConfig(hostURL string) *config.Config {
	cfg := config.Default()
	cfg.Jellyfin.URL = hostURL
	cfg.Jellyfin.APIKey = "test-key"
	cfg.Integration.InitialDelay = time.Millisecond
	cfg.Integration.ProbeAttempts = 10
	cfg.Integration.ProbeBackoffInitial = time.Millisecond
	cfg.Integration.ProbeBackoffMax = 5 * time.Millisecond
	cfg.Integration.RegisterAttempts = 4
	cfg.Integration.RegisterBackoffInitial = time.Millisecond
	cfg.Integration.RegisterBackoffMax = 5 * time.Millisecond
	return cfg
}

func TestResolveBasePath(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"", ""},
		{"/", ""},
		{"jellyfin", "/jellyfin"},
		{"/jellyfin", "/jellyfin"},
		{"/jellyfin/", "/jellyfin"},
		{"//jellyfin//", "/jellyfin"},
		{"  /media/jellyfin/  ", "/media/jellyfin"},
	}
	for _, tt := range tests {
		if got := ResolveBasePath(tt.raw); got != tt.want {
			t.Errorf("ResolveBasePath(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestTargetBaseURLPrefersLoopback(t *testing.T) {
	jf := config.JellyfinConfig{URL: "http://media.example.com:8096", PublicURL: "https://media.example.com"}
	if got := TargetBaseURL(jf); got != "http://127.0.0.1:8096" {
		t.Errorf("TargetBaseURL = %q, want loopback on the bound port", got)
	}

	jf = config.JellyfinConfig{URL: "https://media.example.com", PublicURL: "https://public.example.com/"}
	if got := TargetBaseURL(jf); got != "https://public.example.com" {
		t.Errorf("TargetBaseURL = %q, want the public URL when no port is bound", got)
	}
}

func TestRegistrationIDStable(t *testing.T) {
	cfg := testConfig("http://localhost:8096")
	a := New(cfg, afero.NewMemMapFs()).Registration()
	b := New(cfg, afero.NewMemMapFs()).Registration()

	if a.ID == "" || a.ID != b.ID {
		t.Errorf("registration IDs %q / %q should be identical across restarts", a.ID, b.ID)
	}
	if a.FileNamePattern != "index.html" {
		t.Errorf("FileNamePattern = %q, want index.html", a.FileNamePattern)
	}
	if !strings.HasSuffix(a.TransformationEndpoint, "/editorschoice/transform") {
		t.Errorf("TransformationEndpoint = %q", a.TransformationEndpoint)
	}
}

func TestRegistrationEndpointCarriesBasePath(t *testing.T) {
	cfg := testConfig("http://localhost:8096")
	cfg.Jellyfin.BasePath = "/media/"

	reg := New(cfg, afero.NewMemMapFs()).Registration()
	if reg.TransformationEndpoint != "/media/editorschoice/transform" {
		t.Errorf("TransformationEndpoint = %q, want base path prefixed", reg.TransformationEndpoint)
	}
}

// fakeHost simulates the host booting: probe endpoints answer after
// probeAfter calls, registration answers per the configured script.
type fakeHost struct {
	registrations atomic.Int32
	script        func(n int32) int // registration attempt -> status
}

func (h *fakeHost) handler(probeReady *atomic.Bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/FileTransformation/RegisterTransformation" {
			n := h.registrations.Add(1)
			w.WriteHeader(h.script(n))
			return
		}
		if !probeReady.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusNotFound) // 404 still signals readiness
	})
}

func TestRunRegistersAfterHostWarmsUp(t *testing.T) {
	var ready atomic.Bool
	host := &fakeHost{script: func(n int32) int {
		if n < 3 {
			return http.StatusServiceUnavailable // plugin routes not mounted yet
		}
		return http.StatusOK
	}}
	server := httptest.NewServer(host.handler(&ready))
	defer server.Close()

	// The host "finishes binding" shortly after startup begins.
	go func() {
		time.Sleep(3 * time.Millisecond)
		ready.Store(true)
	}()

	c := New(testConfig(server.URL), afero.NewMemMapFs())
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if got := host.registrations.Load(); got != 3 {
		t.Errorf("registration attempts = %d, want 3 (two 503s then success)", got)
	}
}

func TestRunProbeNotFooledByRefusedConnections(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close() // connection refused from here on

	c := New(testConfig(server.URL), afero.NewMemMapFs())
	err := c.Run(context.Background())
	if err == nil {
		t.Fatal("Run() should fail when the host never answers")
	}
	if !strings.Contains(err.Error(), "not ready") {
		t.Errorf("error = %v, want readiness failure", err)
	}
}

func TestRunTerminalStatusStopsRetrying(t *testing.T) {
	var ready atomic.Bool
	ready.Store(true)
	host := &fakeHost{script: func(int32) int { return http.StatusBadRequest }}
	server := httptest.NewServer(host.handler(&ready))
	defer server.Close()

	c := New(testConfig(server.URL), afero.NewMemMapFs())
	err := c.Run(context.Background())
	if err == nil {
		t.Fatal("Run() should report the terminal rejection")
	}
	if got := host.registrations.Load(); got != 1 {
		t.Errorf("registration attempts = %d, want exactly 1 after a 400", got)
	}
}

func TestRunExhaustsRetryBudget(t *testing.T) {
	var ready atomic.Bool
	ready.Store(true)
	host := &fakeHost{script: func(int32) int { return http.StatusServiceUnavailable }}
	server := httptest.NewServer(host.handler(&ready))
	defer server.Close()

	cfg := testConfig(server.URL)
	c := New(cfg, afero.NewMemMapFs())
	if err := c.Run(context.Background()); err == nil {
		t.Fatal("Run() should fail once the retry budget is exhausted")
	}
	if got := host.registrations.Load(); got != int32(cfg.Integration.RegisterAttempts) {
		t.Errorf("registration attempts = %d, want %d", got, cfg.Integration.RegisterAttempts)
	}
}

func TestRunCancellationAbortsPromptly(t *testing.T) {
	var ready atomic.Bool // never ready: Run sits in the probe backoff
	server := httptest.NewServer((&fakeHost{script: func(int32) int { return 200 }}).handler(&ready))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Integration.ProbeAttempts = 1000
	cfg.Integration.ProbeBackoffInitial = 50 * time.Millisecond
	cfg.Integration.ProbeBackoffMax = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New(cfg, afero.NewMemMapFs()).Run(ctx) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Error("canceled Run() should return the context error")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not exit promptly after cancellation")
	}
}

func TestRunInjectStrategy(t *testing.T) {
	fs := afero.NewMemMapFs()
	doc := `<html><body><div id="app"></div></body></html>`
	if err := afero.WriteFile(fs, "/web/index.html", []byte(doc), 0o644); err != nil {
		t.Fatalf("seeding: %v", err)
	}

	cfg := testConfig("http://localhost:8096")
	cfg.Integration.Strategy = config.StrategyInject
	cfg.Jellyfin.WebClientPath = "/web"

	if err := New(cfg, fs).Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	raw, _ := afero.ReadFile(fs, "/web/index.html")
	if !strings.Contains(string(raw), "editorschoice/script") {
		t.Error("index.html should carry the script tag after inject strategy runs")
	}
}

func TestRunInjectStrategyMissingFileDoesNotFail(t *testing.T) {
	cfg := testConfig("http://localhost:8096")
	cfg.Integration.Strategy = config.StrategyInject
	cfg.Jellyfin.WebClientPath = "/nonexistent"

	if err := New(cfg, afero.NewMemMapFs()).Run(context.Background()); err != nil {
		t.Errorf("inject strategy must never fail startup, got %v", err)
	}
}
