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
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if PARLEY_CONFIG is set
//  3. env (prefix PARLEY_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("PARLEY_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: PARLEY_ADDR, PARLEY_DATA_DIR, ...
	// Map env keys like PARLEY_DATA_DIR -> data_dir (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("PARLEY_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "parley_")
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

// validate rejects configurations the service cannot start with. Credentials
// for optional collaborators are not checked here; the entrypoint decides
// which collaborators it requires.
func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DataDir == "" && c.SaveSessions:
		return fmt.Errorf("%w: data_dir must not be empty when save_sessions is on", ErrInvalidConfig)
	case c.TargetScore <= 0 || c.TargetScore > 100:
		return fmt.Errorf("%w: target_score must be in (0,100]", ErrInvalidConfig)
	case c.MaxUserTurns < 1:
		return fmt.Errorf("%w: max_user_turns must be positive", ErrInvalidConfig)
	case c.SessionTimeLimitMin < 1:
		return fmt.Errorf("%w: session_time_limit_min must be positive", ErrInvalidConfig)
	}
	return nil
}
