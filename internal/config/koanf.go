// EditorsChoice - Curated Carousel Companion for Jellyfin
// Copyright 2026 EditorsChoice Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/editorschoice/editorschoice

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config/config.yaml",
	"/etc/editorschoice/config.yaml",
}

// envMappings maps flat environment variable names onto koanf paths.
// Only variables listed here are read; unrelated environment noise
// never leaks into the configuration tree.
var envMappings = map[string]string{
	"HTTP_HOST":    "server.host",
	"HTTP_PORT":    "server.port",
	"HTTP_TIMEOUT": "server.timeout",

	"JELLYFIN_URL":             "jellyfin.url",
	"JELLYFIN_API_KEY":         "jellyfin.api_key",
	"JELLYFIN_PUBLIC_URL":      "jellyfin.public_url",
	"JELLYFIN_BASE_PATH":       "jellyfin.base_path",
	"JELLYFIN_WEB_CLIENT_PATH": "jellyfin.web_client_path",

	"CAROUSEL_MODE":                 "carousel.mode",
	"CAROUSEL_USE_FAVOURITES":       "carousel.use_favourites",
	"CAROUSEL_USE_COLLECTIONS":      "carousel.use_collections",
	"CAROUSEL_MIN_COMMUNITY_RATING": "carousel.min_community_rating",
	"CAROUSEL_MIN_CRITIC_RATING":    "carousel.min_critic_rating",
	"CAROUSEL_MAX_PARENTAL_RATING":  "carousel.max_parental_rating",
	"CAROUSEL_SAMPLE_COUNT":         "carousel.sample_count",
	"CAROUSEL_LIBRARY_SCOPE_IDS":    "carousel.library_scope_ids",
	"CAROUSEL_INCLUDE_WATCHED":      "carousel.include_watched",
	"CAROUSEL_EDITOR_USER_ID":       "carousel.editor_user_id",
	"CAROUSEL_COLLECTION_IDS":       "carousel.collection_ids",
	"CAROUSEL_RECENCY_WINDOW":       "carousel.recency_window",
	"CAROUSEL_SHOW_DESCRIPTION":     "carousel.show_description",
	"CAROUSEL_SHOW_RATING":          "carousel.show_rating",
	"CAROUSEL_AUTOPLAY":             "carousel.autoplay",
	"CAROUSEL_AUTOPLAY_INTERVAL":    "carousel.autoplay_interval_seconds",
	"CAROUSEL_REDUCE_IMAGE_SIZE":    "carousel.reduce_image_size",
	"CAROUSEL_BANNER_HEIGHT":        "carousel.banner_height",
	"CAROUSEL_HEADING":              "carousel.heading",

	"INTEGRATION_STRATEGY":       "integration.strategy",
	"INTEGRATION_INITIAL_DELAY":  "integration.initial_delay",
	"INTEGRATION_PROBE_ATTEMPTS": "integration.probe_attempts",

	"LOG_LEVEL":  "logging.level",
	"LOG_FORMAT": "logging.format",
	"LOG_CALLER": "logging.caller",
}

// sliceConfigPaths are koanf paths whose env values arrive as comma
// lists and must be re-typed before unmarshaling.
var sliceConfigPaths = []string{
	"carousel.library_scope_ids",
	"carousel.collection_ids",
}

// Default returns the built-in configuration defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    3039,
			Timeout: 30 * time.Second,
		},
		Jellyfin: JellyfinConfig{
			URL: "http://localhost:8096",
		},
		Carousel: CarouselConfig{
			MaxParentalRating:       -1,
			SampleCount:             5,
			ShowDescription:         true,
			ShowRating:              true,
			Autoplay:                true,
			AutoplayIntervalSeconds: 10,
			BannerHeight:            70,
		},
		Integration: IntegrationConfig{
			Strategy:               StrategyTransform,
			InitialDelay:           800 * time.Millisecond,
			ProbeAttempts:          10,
			ProbeBackoffInitial:    500 * time.Millisecond,
			ProbeBackoffMax:        3 * time.Second,
			RegisterAttempts:       8,
			RegisterBackoffInitial: 1 * time.Second,
			RegisterBackoffMax:     15 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file
// and environment variables, then validates the result.
//
// The config file is taken from CONFIG_PATH when set, otherwise the
// first existing entry of DefaultConfigPaths is used. A missing file
// is not an error; a file named via CONFIG_PATH that fails to parse
// is.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path := resolveConfigPath(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", mapEnvVar), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("processing slice fields: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func resolveConfigPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// mapEnvVar translates a flat environment variable name to its koanf
// path. Unknown variables map to "" and are dropped by the provider.
func mapEnvVar(name string) string {
	return envMappings[strings.ToUpper(name)]
}

// processSliceFields converts comma-separated string values into
// slices for the paths in sliceConfigPaths. Values that already
// arrived as slices (from the YAML file) pass through untouched.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}
