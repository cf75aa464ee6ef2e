// If you are AI: This file defines the configuration structure for logbook.
// It uses strict YAML decoding and explicit defaults.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	BackendFS  = "fs"
	BackendSQL = "sql"
)

// Config holds the complete server configuration.
// All fields must have explicit defaults or be required.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Bootstrap BootstrapConfig `yaml:"bootstrap"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig defines listener settings.
type ServerConfig struct {
	HealthPort int `yaml:"health_port"` // /healthz and /metrics
	HTTPPort   int `yaml:"http_port"`   // Stream API, ingest and tail
}

// StorageConfig selects and configures the durable backend.
type StorageConfig struct {
	Backend      string `yaml:"backend"`                  // "fs" or "sql"
	Dir          string `yaml:"dir,omitempty"`            // Root dir for fs
	Driver       string `yaml:"driver,omitempty"`         // postgres, pgx or sqlite3
	DSN          string `yaml:"dsn,omitempty"`            // Connection string for sql
	MaxOpenConns int    `yaml:"max_open_conns,omitempty"` // sql pool size
	MaxIdleConns int    `yaml:"max_idle_conns,omitempty"` // sql idle connections
}

// IngestConfig defines segment and ingest limits.
type IngestConfig struct {
	MaxSegmentBytes int64         `yaml:"max_segment_bytes"`    // Raw bytes before a segment is sealed
	FlushInterval   time.Duration `yaml:"flush_interval"`       // Seal non-empty segments this often
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`       // Largest accepted request body
	RateLimit       float64       `yaml:"rate_limit,omitempty"` // Requests per second, 0 disables
	RateBurst       int           `yaml:"rate_burst,omitempty"` // Burst for rate_limit
	TailBuffer      uint32        `yaml:"tail_buffer"`          // Events buffered per tail client
}

// BootstrapConfig controls the startup load from storage.
type BootstrapConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Load reads configuration from a YAML file.
// Returns an error if the file cannot be read or decoded.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes configuration from YAML bytes and applies defaults.
// Unknown fields are rejected.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	// An empty document means "all defaults"
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.setDefaults()
	return &cfg, nil
}

// setDefaults applies explicit default values to unset fields.
func (c *Config) setDefaults() {
	if c.Server.HealthPort == 0 {
		c.Server.HealthPort = 8080
	}
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 8000
	}

	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendFS
	}
	if c.Storage.Backend == BackendFS && c.Storage.Dir == "" {
		c.Storage.Dir = "./data"
	}
	if c.Storage.MaxOpenConns == 0 {
		c.Storage.MaxOpenConns = 10
	}
	if c.Storage.MaxIdleConns == 0 {
		c.Storage.MaxIdleConns = 2
	}

	if c.Ingest.MaxSegmentBytes == 0 {
		c.Ingest.MaxSegmentBytes = 64 << 20
	}
	if c.Ingest.FlushInterval == 0 {
		c.Ingest.FlushInterval = time.Minute
	}
	if c.Ingest.MaxBodyBytes == 0 {
		c.Ingest.MaxBodyBytes = 10 << 20
	}
	if c.Ingest.RateLimit > 0 && c.Ingest.RateBurst == 0 {
		c.Ingest.RateBurst = int(c.Ingest.RateLimit)
		if c.Ingest.RateBurst < 1 {
			c.Ingest.RateBurst = 1
		}
	}
	if c.Ingest.TailBuffer == 0 {
		c.Ingest.TailBuffer = 1024
	}

	if c.Bootstrap.Timeout == 0 {
		c.Bootstrap.Timeout = 30 * time.Second
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}
