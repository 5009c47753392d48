// Package config provides centralized configuration management for the
// application. It loads configuration from environment variables with
// sensible defaults and validates all settings on startup to fail fast
// on misconfiguration.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server  ServerConfig
	Persist PersistConfig
	Seed    SeedConfig
	View    ViewConfig
	Logging LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 30s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`

	// MaxImportSize is the maximum accepted CSV import body in bytes (default: 10MB)
	MaxImportSize int64 `env:"SERVER_MAX_IMPORT_SIZE" default:"10485760"`
}

// PersistConfig holds snapshot persistence settings.
type PersistConfig struct {
	// Backend selects the snapshot store: "bolt", "postgres" or "memory"
	// (default: bolt)
	Backend string `env:"PERSIST_BACKEND" default:"bolt"`

	// BoltPath is the bbolt database file (default: gridstore.db)
	BoltPath string `env:"PERSIST_BOLT_PATH" default:"gridstore.db"`

	// DatabaseURL is the Postgres connection string, required when
	// Backend is "postgres"
	DatabaseURL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of pooled Postgres connections (default: 4)
	MaxConns int `env:"DB_MAX_CONNS" default:"4"`
}

// SeedConfig holds the one-shot startup seed fetch settings.
type SeedConfig struct {
	// Enabled controls whether the fetch runs at all (default: true).
	// The fetch is additionally skipped when a persisted row snapshot
	// already exists.
	Enabled bool `env:"SEED_ENABLED" default:"true"`

	// URL is the seed data source (default: the public user fixture set)
	URL string `env:"SEED_URL" default:"https://jsonplaceholder.typicode.com/users"`

	// Timeout bounds the single fetch attempt (default: 10s)
	Timeout time.Duration `env:"SEED_TIMEOUT" default:"10s"`
}

// ViewConfig holds view pipeline defaults.
type ViewConfig struct {
	// PageSize is the page size used when the client sends none (default: 10)
	PageSize int `env:"VIEW_PAGE_SIZE" default:"10"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
	if c.Server.MaxImportSize <= 0 {
		errs = append(errs, "SERVER_MAX_IMPORT_SIZE must be positive")
	}

	switch strings.ToLower(c.Persist.Backend) {
	case "bolt":
		if c.Persist.BoltPath == "" {
			errs = append(errs, "PERSIST_BOLT_PATH is required for the bolt backend")
		}
	case "postgres":
		if c.Persist.DatabaseURL == "" {
			errs = append(errs, "DATABASE_URL is required for the postgres backend")
		}
		if c.Persist.MaxConns <= 0 {
			errs = append(errs, "DB_MAX_CONNS must be positive")
		}
	case "memory":
	default:
		errs = append(errs, fmt.Sprintf("PERSIST_BACKEND (%q) must be one of: bolt, postgres, memory", c.Persist.Backend))
	}

	if c.Seed.Enabled {
		if c.Seed.URL == "" {
			errs = append(errs, "SEED_URL is required when seeding is enabled")
		}
		if c.Seed.Timeout <= 0 {
			errs = append(errs, "SEED_TIMEOUT must be positive")
		}
	}

	if c.View.PageSize <= 0 {
		errs = append(errs, "VIEW_PAGE_SIZE must be positive")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a safe string representation of the config for logging.
// The database URL is masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port))
	b.WriteString(fmt.Sprintf("Persist: {Backend: %q, BoltPath: %q, DatabaseURL: [MASKED]}, ",
		c.Persist.Backend, c.Persist.BoltPath))
	b.WriteString(fmt.Sprintf("Seed: {Enabled: %v, URL: %q}, ", c.Seed.Enabled, c.Seed.URL))
	b.WriteString(fmt.Sprintf("View: {PageSize: %d}, ", c.View.PageSize))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}", c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}
