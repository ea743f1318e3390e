// EditorsChoice - Curated Carousel Companion for Jellyfin
// Copyright 2026 EditorsChoice Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/editorschoice/editorschoice

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestDefault verifies the built-in defaults.
func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Port != 3039 {
		t.Errorf("Server.Port = %d, want 3039", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0", cfg.Server.Host)
	}
	if cfg.Jellyfin.URL != "http://localhost:8096" {
		t.Errorf("Jellyfin.URL = %q, want http://localhost:8096", cfg.Jellyfin.URL)
	}

	// Carousel defaults
	if cfg.Carousel.SampleCount != 5 {
		t.Errorf("Carousel.SampleCount = %d, want 5", cfg.Carousel.SampleCount)
	}
	if cfg.Carousel.MaxParentalRating != -1 {
		t.Errorf("Carousel.MaxParentalRating = %d, want -1 (inherit)", cfg.Carousel.MaxParentalRating)
	}
	if !cfg.Carousel.InheritParentalRating() {
		t.Error("InheritParentalRating should be true by default")
	}
	if cfg.Carousel.AutoplayIntervalSeconds != 10 {
		t.Errorf("Carousel.AutoplayIntervalSeconds = %d, want 10", cfg.Carousel.AutoplayIntervalSeconds)
	}

	// Integration timing defaults
	if cfg.Integration.InitialDelay != 800*time.Millisecond {
		t.Errorf("Integration.InitialDelay = %v, want 800ms", cfg.Integration.InitialDelay)
	}
	if cfg.Integration.ProbeAttempts != 10 {
		t.Errorf("Integration.ProbeAttempts = %d, want 10", cfg.Integration.ProbeAttempts)
	}
	if cfg.Integration.ProbeBackoffInitial != 500*time.Millisecond {
		t.Errorf("Integration.ProbeBackoffInitial = %v, want 500ms", cfg.Integration.ProbeBackoffInitial)
	}
	if cfg.Integration.ProbeBackoffMax != 3*time.Second {
		t.Errorf("Integration.ProbeBackoffMax = %v, want 3s", cfg.Integration.ProbeBackoffMax)
	}
	if cfg.Integration.RegisterAttempts != 8 {
		t.Errorf("Integration.RegisterAttempts = %d, want 8", cfg.Integration.RegisterAttempts)
	}
	if cfg.Integration.RegisterBackoffInitial != time.Second {
		t.Errorf("Integration.RegisterBackoffInitial = %v, want 1s", cfg.Integration.RegisterBackoffInitial)
	}
	if cfg.Integration.RegisterBackoffMax != 15*time.Second {
		t.Errorf("Integration.RegisterBackoffMax = %v, want 15s", cfg.Integration.RegisterBackoffMax)
	}
}

// TestNormalizedMode covers the legacy flag folding.
func TestNormalizedMode(t *testing.T) {
	tests := []struct {
		name string
		cfg  CarouselConfig
		want string
	}{
		{"explicit mode wins", CarouselConfig{Mode: ModeNew, UseFavourites: true}, ModeNew},
		{"legacy favourites", CarouselConfig{UseFavourites: true}, ModeFavourites},
		{"legacy collections", CarouselConfig{UseCollections: true}, ModeCollections},
		{"favourites beats collections", CarouselConfig{UseFavourites: true, UseCollections: true}, ModeFavourites},
		{"nothing set", CarouselConfig{}, ModeRandom},
		{"unknown mode string", CarouselConfig{Mode: "surprise"}, ModeRandom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.NormalizedMode(); got != tt.want {
				t.Errorf("NormalizedMode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWindowDefault(t *testing.T) {
	c := CarouselConfig{}
	if got := c.Window(); got != Window1Month {
		t.Errorf("Window() = %q, want %q", got, Window1Month)
	}
	c.RecencyWindow = Window5Year
	if got := c.Window(); got != Window5Year {
		t.Errorf("Window() = %q, want %q", got, Window5Year)
	}
}

// TestLoadLayering verifies ENV > file > defaults precedence.
func TestLoadLayering(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
jellyfin:
  url: http://file-host:8096
  api_key: file-key
carousel:
  sample_count: 7
  heading: From The File
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("JELLYFIN_URL", "http://env-host:8096")
	t.Setenv("CAROUSEL_LIBRARY_SCOPE_IDS", "lib1, lib2 ,lib3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Jellyfin.URL != "http://env-host:8096" {
		t.Errorf("Jellyfin.URL = %q, env should override file", cfg.Jellyfin.URL)
	}
	if cfg.Jellyfin.APIKey != "file-key" {
		t.Errorf("Jellyfin.APIKey = %q, want file-key", cfg.Jellyfin.APIKey)
	}
	if cfg.Carousel.SampleCount != 7 {
		t.Errorf("Carousel.SampleCount = %d, file should override default", cfg.Carousel.SampleCount)
	}
	if cfg.Carousel.Heading != "From The File" {
		t.Errorf("Carousel.Heading = %q, want From The File", cfg.Carousel.Heading)
	}
	if cfg.Server.Port != 3039 {
		t.Errorf("Server.Port = %d, default should survive", cfg.Server.Port)
	}

	want := []string{"lib1", "lib2", "lib3"}
	if len(cfg.Carousel.LibraryScopeIDs) != len(want) {
		t.Fatalf("LibraryScopeIDs = %v, want %v", cfg.Carousel.LibraryScopeIDs, want)
	}
	for i, id := range want {
		if cfg.Carousel.LibraryScopeIDs[i] != id {
			t.Errorf("LibraryScopeIDs[%d] = %q, want %q", i, cfg.Carousel.LibraryScopeIDs[i], id)
		}
	}
}

func TestLoadMissingAPIKey(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("JELLYFIN_API_KEY", "")

	if _, err := Load(); err == nil {
		t.Error("Load() should fail without JELLYFIN_API_KEY")
	}
}

func TestValidateStrategyInputs(t *testing.T) {
	cfg := Default()
	cfg.Jellyfin.APIKey = "k"
	cfg.Integration.Strategy = StrategyInject
	cfg.Jellyfin.WebClientPath = ""

	if err := Validate(cfg); err == nil {
		t.Error("Validate() should require web_client_path for inject strategy")
	}

	cfg.Jellyfin.WebClientPath = "/usr/share/jellyfin/web"
	if err := Validate(cfg); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}
}

func TestValidateContradictoryLegacyFlags(t *testing.T) {
	cfg := Default()
	cfg.Jellyfin.APIKey = "k"
	cfg.Carousel.UseFavourites = true
	cfg.Carousel.UseCollections = true

	if err := Validate(cfg); err == nil {
		t.Error("Validate() should reject both legacy flags without an explicit mode")
	}

	cfg.Carousel.Mode = ModeCollections
	if err := Validate(cfg); err != nil {
		t.Errorf("Validate() unexpected error with explicit mode: %v", err)
	}
}

func TestValidateBackoffBounds(t *testing.T) {
	cfg := Default()
	cfg.Jellyfin.APIKey = "k"
	cfg.Integration.ProbeBackoffMax = 100 * time.Millisecond

	if err := Validate(cfg); err == nil {
		t.Error("Validate() should reject probe max below initial")
	}
}
