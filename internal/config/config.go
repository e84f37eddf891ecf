// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New(...Option) initializer to build a Config with defaults.
// - All future functions must accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFile adds a size-rotated JSON log sink when set.
	LogFile string `koanf:"log_file"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DBPath locates the SQLite history database.
	DBPath string `koanf:"db_path"`

	// DefaultSeason selects the historical season used when a request
	// names none.
	DefaultSeason string `koanf:"default_season"`

	// DefaultSeasons sets how many seasons a run simulates when the
	// request names no count.
	DefaultSeasons int `koanf:"default_seasons"`

	// MaxSeasons caps the per-request season count.
	MaxSeasons int `koanf:"max_seasons"`

	// EventBuffer bounds each run's season event channel.
	EventBuffer int `koanf:"event_buffer"`

	// MaxWalkSteps bounds the states visited in one possession walk.
	MaxWalkSteps int `koanf:"max_walk_steps"`

	// PossessionsOverride fixes the per-side possession count of a
	// game; zero uses each team's historical pace.
	PossessionsOverride int `koanf:"possessions_override"`
}

// New creates a Config using provided options. Context is accepted first to
// satisfy the project-wide convention; it is reserved for future use (e.g.,
// loading from env/files) and is currently unused.
func New(_ context.Context) *Config {
	c := &Config{
		LogLevel:            "info",
		LogFile:             "",
		Addr:                ":9080",
		DBPath:              "fastbreak.db",
		DefaultSeason:       "2024-25",
		DefaultSeasons:      10,
		MaxSeasons:          50,
		EventBuffer:         4,
		MaxWalkSteps:        50,
		PossessionsOverride: 0,
	}
	return c
}
