// EditorsChoice - Curated Carousel Companion for Jellyfin
// Copyright 2026 EditorsChoice Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/editorschoice/editorschoice

package config

import "time"

// Config holds all service configuration.
//
// Thread safety: Config is immutable after Load() and safe for
// concurrent read access from multiple goroutines.
type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Jellyfin    JellyfinConfig    `koanf:"jellyfin"`
	Carousel    CarouselConfig    `koanf:"carousel"`
	Integration IntegrationConfig `koanf:"integration"`
	Logging     LoggingConfig     `koanf:"logging"`
}

// ServerConfig holds the plugin's own HTTP listener settings.
type ServerConfig struct {
	Port    int           `koanf:"port" validate:"min=1,max=65535"`
	Host    string        `koanf:"host"`
	Timeout time.Duration `koanf:"timeout"`
}

// JellyfinConfig holds connection settings for the media-server host.
//
// Environment Variables:
//   - JELLYFIN_URL: host URL (e.g. http://localhost:8096)
//   - JELLYFIN_API_KEY: API key from Admin Dashboard > API Keys
//   - JELLYFIN_PUBLIC_URL: externally reachable host URL, used as the
//     probe/registration target when the loopback port cannot be
//     derived from JELLYFIN_URL
//   - JELLYFIN_BASE_PATH: reverse-proxy base path the host is served
//     under (raw value; normalized by the startup coordinator)
//   - JELLYFIN_WEB_CLIENT_PATH: directory holding the web client's
//     index.html (script-injection strategy only)
type JellyfinConfig struct {
	URL           string `koanf:"url" validate:"required,url"`
	APIKey        string `koanf:"api_key" validate:"required"`
	PublicURL     string `koanf:"public_url" validate:"omitempty,url"`
	BasePath      string `koanf:"base_path"`
	WebClientPath string `koanf:"web_client_path"`
}

// Selection modes. Legacy deployments configured the mode through the
// use_favourites/use_collections boolean flags; NormalizedMode folds
// both forms into one of these four values.
const (
	ModeFavourites  = "favourites"
	ModeCollections = "collections"
	ModeNew         = "new"
	ModeRandom      = "random"
)

// Recency windows accepted for NEW mode.
const (
	Window1Month = "1month"
	Window2Month = "2month"
	Window6Month = "6month"
	Window1Year  = "1year"
	Window2Year  = "2year"
	Window5Year  = "5year"
)

// CarouselConfig holds the selection and display rules for the
// editor's choice carousel.
type CarouselConfig struct {
	// Mode selects the item source. Empty falls back to the legacy
	// boolean flags, then to random.
	Mode string `koanf:"mode" validate:"omitempty,oneof=favourites collections new random"`

	// UseFavourites and UseCollections are legacy mode flags kept for
	// configurations written by earlier releases.
	UseFavourites  bool `koanf:"use_favourites"`
	UseCollections bool `koanf:"use_collections"`

	// Rating thresholds. Zero disables the community/critic bounds.
	// MaxParentalRating is a parental age ceiling; -1 inherits the
	// requesting user's own limit.
	MinCommunityRating float64 `koanf:"min_community_rating" validate:"min=0,max=10"`
	MinCriticRating    float64 `koanf:"min_critic_rating" validate:"min=0,max=100"`
	MaxParentalRating  int     `koanf:"max_parental_rating" validate:"min=-1"`

	// SampleCount bounds the carousel size.
	SampleCount int `koanf:"sample_count" validate:"min=1"`

	// LibraryScopeIDs restricts eligible items to descendants of the
	// given library folders. Empty means no restriction.
	LibraryScopeIDs []string `koanf:"library_scope_ids"`

	// IncludeWatched admits items the requesting user already played.
	IncludeWatched bool `koanf:"include_watched"`

	// EditorUserID identifies whose favourites feed FAVOURITES mode.
	EditorUserID string `koanf:"editor_user_id"`

	// CollectionIDs lists the collections COLLECTIONS mode draws from.
	CollectionIDs []string `koanf:"collection_ids"`

	// RecencyWindow bounds NEW mode. Empty defaults to one month.
	RecencyWindow string `koanf:"recency_window" validate:"omitempty,oneof=1month 2month 6month 1year 2year 5year"`

	// Display toggles forwarded to the web client.
	ShowDescription         bool   `koanf:"show_description"`
	ShowRating              bool   `koanf:"show_rating"`
	Autoplay                bool   `koanf:"autoplay"`
	AutoplayIntervalSeconds int    `koanf:"autoplay_interval_seconds" validate:"min=1"`
	ReduceImageSize         bool   `koanf:"reduce_image_size"`
	BannerHeight            int    `koanf:"banner_height" validate:"min=1"`
	Heading                 string `koanf:"heading"`
}

// NormalizedMode returns the effective selection mode, folding the
// legacy boolean flags into the four-value enum. The result is always
// one of ModeFavourites, ModeCollections, ModeNew, ModeRandom.
func (c *CarouselConfig) NormalizedMode() string {
	switch c.Mode {
	case ModeFavourites, ModeCollections, ModeNew, ModeRandom:
		return c.Mode
	}
	if c.UseFavourites {
		return ModeFavourites
	}
	if c.UseCollections {
		return ModeCollections
	}
	return ModeRandom
}

// InheritParentalRating reports whether the parental ceiling comes
// from the requesting user instead of the fixed configured value.
func (c *CarouselConfig) InheritParentalRating() bool {
	return c.MaxParentalRating < 0
}

// Window returns the recency window for NEW mode, defaulted.
func (c *CarouselConfig) Window() string {
	if c.RecencyWindow == "" {
		return Window1Month
	}
	return c.RecencyWindow
}

// Integration strategies.
const (
	StrategyInject    = "inject"
	StrategyTransform = "transform"
)

// IntegrationConfig holds the startup coordinator's strategy and
// probe/registration tuning. The defaults match the behaviour the
// host's startup races were measured against; override only for
// tests.
type IntegrationConfig struct {
	Strategy string `koanf:"strategy" validate:"oneof=inject transform"`

	// InitialDelay is waited before the first readiness probe to let
	// the host's HTTP pipeline begin binding.
	InitialDelay time.Duration `koanf:"initial_delay"`

	// ProbeAttempts bounds the readiness probe rounds; backoff grows
	// from ProbeBackoffInitial to ProbeBackoffMax between rounds.
	ProbeAttempts       int           `koanf:"probe_attempts" validate:"min=1"`
	ProbeBackoffInitial time.Duration `koanf:"probe_backoff_initial"`
	ProbeBackoffMax     time.Duration `koanf:"probe_backoff_max"`

	// RegisterAttempts bounds the registration retries; backoff grows
	// from RegisterBackoffInitial to RegisterBackoffMax, doubling
	// each attempt.
	RegisterAttempts       int           `koanf:"register_attempts" validate:"min=1"`
	RegisterBackoffInitial time.Duration `koanf:"register_backoff_initial"`
	RegisterBackoffMax     time.Duration `koanf:"register_backoff_max"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"omitempty,oneof=trace debug info warn error fatal"`
	Format string `koanf:"format" validate:"omitempty,oneof=json console"`
	Caller bool   `koanf:"caller"`
}
