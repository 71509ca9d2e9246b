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

const (
	envPrefix     = "GLASSBOX_"
	envConfigPath = "GLASSBOX_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if GLASSBOX_CONFIG is set
//  3. env (prefix GLASSBOX_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(envConfigPath); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// GLASSBOX_DATABASE_DSN -> database_dsn (flat keys, underscores kept).
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, strings.ToLower(envPrefix))
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}
	// The path to the file is not a config key.
	k.Delete("config")

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values Load cannot fix up on its own.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch c.DatabaseDriver {
	case DriverSQLite, DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("%w: unknown database driver %q", ErrInvalidConfig, c.DatabaseDriver)
	}
	if c.DatabaseDriver != DriverMemory && c.DatabaseDSN == "" {
		return fmt.Errorf("%w: database_dsn must not be empty for %s", ErrInvalidConfig, c.DatabaseDriver)
	}
	if c.MaxAuditListLimit <= 0 {
		return fmt.Errorf("%w: max_audit_list_limit must be positive", ErrInvalidConfig)
	}
	if c.ScoringConcurrency <= 0 {
		return fmt.Errorf("%w: scoring_concurrency must be positive", ErrInvalidConfig)
	}
	switch c.TraceExporter {
	case "", "none", "stdout":
	default:
		return fmt.Errorf("%w: unknown trace exporter %q", ErrInvalidConfig, c.TraceExporter)
	}
	return nil
}
