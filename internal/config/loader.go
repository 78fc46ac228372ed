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
//  1. defaults (New())
//  2. file (YAML) if DUGOUT_CONFIG is set
//  3. env (prefix DUGOUT_)
func Load(_ context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("DUGOUT_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: DUGOUT_ADDR, DUGOUT_DISPATCHER_COUNT, ...
	// Map env keys like DUGOUT_DISPATCHER_COUNT -> dispatcher_count (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("DUGOUT_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "dugout_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// Basic validation
	if cfg.Addr == "" {
		return nil, fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if cfg.BroadcastQueueSize < 1 {
		return nil, fmt.Errorf("%w: broadcast_queue_size must be positive", ErrInvalidConfig)
	}
	if cfg.DispatcherCount < 1 {
		return nil, fmt.Errorf("%w: dispatcher_count must be positive", ErrInvalidConfig)
	}
	return &cfg, nil
}
