package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New(ctx))
//  2. file (YAML) if FASTBREAK_CONFIG is set
//  3. env (prefix FASTBREAK_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New(ctx)

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("FASTBREAK_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: FASTBREAK_ADDR, FASTBREAK_DB_PATH, ...
	// Map env keys like FASTBREAK_DB_PATH -> db_path (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("FASTBREAK_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "fastbreak_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate rejects configurations the service cannot start on.
func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DBPath == "":
		return fmt.Errorf("%w: db_path must not be empty", ErrInvalidConfig)
	case c.DefaultSeason == "":
		return fmt.Errorf("%w: default_season must not be empty", ErrInvalidConfig)
	case c.DefaultSeasons < 1:
		return fmt.Errorf("%w: default_seasons must be at least 1", ErrInvalidConfig)
	case c.MaxSeasons < c.DefaultSeasons:
		return fmt.Errorf("%w: max_seasons must not be below default_seasons", ErrInvalidConfig)
	case c.EventBuffer < 1:
		return fmt.Errorf("%w: event_buffer must be at least 1", ErrInvalidConfig)
	case c.MaxWalkSteps < 1:
		return fmt.Errorf("%w: max_walk_steps must be at least 1", ErrInvalidConfig)
	case c.PossessionsOverride < 0:
		return fmt.Errorf("%w: possessions_override must not be negative", ErrInvalidConfig)
	}
	return nil
}
