// If you are AI: This file validates configuration values and returns descriptive errors.

package config

import (
	"fmt"
)

// Validate checks that all configuration values are within acceptable ranges.
// Returns an error describing the first validation failure found.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := c.Storage.Validate(); err != nil {
		return fmt.Errorf("storage config: %w", err)
	}
	if err := c.Ingest.Validate(); err != nil {
		return fmt.Errorf("ingest config: %w", err)
	}
	if c.Bootstrap.Timeout < 0 {
		return fmt.Errorf("bootstrap config: timeout must not be negative, got %s", c.Bootstrap.Timeout)
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log config: %w", err)
	}
	return nil
}

// Validate checks server configuration values.
func (s *ServerConfig) Validate() error {
	if s.HealthPort <= 0 || s.HealthPort > 65535 {
		return fmt.Errorf("health_port must be between 1 and 65535, got %d", s.HealthPort)
	}
	if s.HTTPPort <= 0 || s.HTTPPort > 65535 {
		return fmt.Errorf("http_port must be between 1 and 65535, got %d", s.HTTPPort)
	}
	if s.HealthPort == s.HTTPPort {
		return fmt.Errorf("health_port and http_port must be different, both are %d", s.HealthPort)
	}
	return nil
}

// Validate checks storage configuration values.
func (s *StorageConfig) Validate() error {
	switch s.Backend {
	case BackendFS:
		if s.Dir == "" {
			return fmt.Errorf("dir is required for the fs backend")
		}
	case BackendSQL:
		switch s.Driver {
		case "postgres", "pgx", "sqlite3":
		default:
			return fmt.Errorf("driver must be postgres, pgx or sqlite3, got %q", s.Driver)
		}
		if s.DSN == "" {
			return fmt.Errorf("dsn is required for the sql backend")
		}
		if s.MaxOpenConns <= 0 {
			return fmt.Errorf("max_open_conns must be positive, got %d", s.MaxOpenConns)
		}
		if s.MaxIdleConns < 0 || s.MaxIdleConns > s.MaxOpenConns {
			return fmt.Errorf("max_idle_conns must be between 0 and max_open_conns, got %d", s.MaxIdleConns)
		}
	default:
		return fmt.Errorf("backend must be fs or sql, got %q", s.Backend)
	}
	return nil
}

// Validate checks ingest configuration values.
func (i *IngestConfig) Validate() error {
	if i.MaxSegmentBytes <= 0 {
		return fmt.Errorf("max_segment_bytes must be positive, got %d", i.MaxSegmentBytes)
	}
	if i.FlushInterval <= 0 {
		return fmt.Errorf("flush_interval must be positive, got %s", i.FlushInterval)
	}
	if i.MaxBodyBytes <= 0 {
		return fmt.Errorf("max_body_bytes must be positive, got %d", i.MaxBodyBytes)
	}
	if i.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative, got %g", i.RateLimit)
	}
	if i.RateLimit > 0 && i.RateBurst <= 0 {
		return fmt.Errorf("rate_burst must be positive when rate_limit is set, got %d", i.RateBurst)
	}
	return nil
}

// Validate checks logging configuration values.
func (l *LogConfig) Validate() error {
	switch l.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("level must be debug, info, warn or error, got %q", l.Level)
	}
	switch l.Format {
	case "text", "json":
	default:
		return fmt.Errorf("format must be text or json, got %q", l.Format)
	}
	return nil
}
