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
//  2. file (YAML) if CHESSGUARD_CONFIG is set
//  3. env (prefix CHESSGUARD_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("CHESSGUARD_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: CHESSGUARD_ADDR, CHESSGUARD_ENGINE_DEPTH, ...
	// Keys map to the flat koanf tags on the struct; underscores preserved.
	envProvider := env.Provider("CHESSGUARD_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "chessguard_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.EngineDepth <= 0:
		return fmt.Errorf("%w: engine_depth must be positive", ErrInvalidConfig)
	case c.EngineTimeoutMS <= 0:
		return fmt.Errorf("%w: engine_timeout_ms must be positive", ErrInvalidConfig)
	case c.RiskCritical <= c.RiskHigh || c.RiskHigh <= c.RiskModerate:
		return fmt.Errorf("%w: risk thresholds must be strictly decreasing", ErrInvalidConfig)
	case c.RiskModerate <= 0 || c.RiskCritical > 1:
		return fmt.Errorf("%w: risk thresholds must lie in (0,1]", ErrInvalidConfig)
	}
	return nil
}
