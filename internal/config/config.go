// Package config defines service configuration structures and loading hooks.
package config

import (
	"runtime"
)

// Database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DatabaseDriver selects the store: sqlite, postgres or memory.
	DatabaseDriver string `koanf:"database_driver"`

	// DatabaseDSN is the file path (sqlite) or connection string (postgres).
	DatabaseDSN string `koanf:"database_dsn"`

	// ScoringConcurrency bounds parallel per-employee scoring within one operation.
	ScoringConcurrency int `koanf:"scoring_concurrency"`

	// MaxAuditListLimit caps GET /audits?limit.
	MaxAuditListLimit int `koanf:"max_audit_list_limit"`

	// IdempotencyCacheSize bounds how many audit idempotency keys are remembered.
	IdempotencyCacheSize int `koanf:"idempotency_cache_size"`

	// TraceExporter is none or stdout.
	TraceExporter string `koanf:"trace_exporter"`

	// DatasetPath optionally points at a YAML dataset loaded into the memory driver at start.
	DatasetPath string `koanf:"dataset_path"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":9080",
		DatabaseDriver:       DriverSQLite,
		DatabaseDSN:          "glassbox.db",
		ScoringConcurrency:   runtime.NumCPU(),
		MaxAuditListLimit:    100,
		IdempotencyCacheSize: 10_000,
		TraceExporter:        "none",
	}
}
