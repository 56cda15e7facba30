// Package config defines service configuration structures and loading hooks.
package config

import (
	"fmt"
	"runtime"
	"strings"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory assessment queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of assessment workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the submission deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxReports bounds the finished assessments kept for polling.
	MaxReports int `koanf:"max_reports"`

	// MaxBoardLimit caps GET /v1/board?limit.
	MaxBoardLimit int `koanf:"max_board_limit"`

	// DefaultProfile is used when a request names no profile.
	DefaultProfile string `koanf:"default_profile"`

	// Profiles adds or overrides report profiles: name -> dimension names.
	Profiles map[string][]string `koanf:"profiles"`

	// ReferencePath points to an optional YAML table of peer companies.
	ReferencePath string `koanf:"reference_path"`

	// NATSURL enables assessment events when set.
	NATSURL string `koanf:"nats_url"`

	// NATSSubjectPrefix prefixes every published subject.
	NATSSubjectPrefix string `koanf:"nats_subject_prefix"`

	// Influx* enable the time-series observation source when InfluxURL is set.
	InfluxURL         string `koanf:"influx_url"`
	InfluxToken       string `koanf:"influx_token"`
	InfluxOrg         string `koanf:"influx_org"`
	InfluxBucket      string `koanf:"influx_bucket"`
	InfluxMeasurement string `koanf:"influx_measurement"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		QueueSize:         10_000,
		WorkerCount:       runtime.NumCPU() * 2,
		DedupeSize:        50_000,
		MaxReports:        100_000,
		MaxBoardLimit:     100,
		DefaultProfile:    "risk",
		NATSSubjectPrefix: "climarisk",
		InfluxMeasurement: "climate",
	}
}

// Validate checks the fields the service cannot start without.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive, got %d", ErrInvalidConfig, c.QueueSize)
	case c.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive, got %d", ErrInvalidConfig, c.WorkerCount)
	case c.DedupeSize <= 0:
		return fmt.Errorf("%w: dedupe_size must be positive, got %d", ErrInvalidConfig, c.DedupeSize)
	case c.MaxReports <= 0:
		return fmt.Errorf("%w: max_reports must be positive, got %d", ErrInvalidConfig, c.MaxReports)
	case c.MaxBoardLimit <= 0:
		return fmt.Errorf("%w: max_board_limit must be positive, got %d", ErrInvalidConfig, c.MaxBoardLimit)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	for name, dims := range c.Profiles {
		if len(dims) == 0 {
			return fmt.Errorf("%w: profile %q has no dimensions", ErrInvalidConfig, name)
		}
	}
	if c.InfluxURL != "" && (c.InfluxOrg == "" || c.InfluxBucket == "") {
		return fmt.Errorf("%w: influx_org and influx_bucket are required with influx_url", ErrInvalidConfig)
	}
	return nil
}

// InfluxEnabled reports whether the observation source is configured.
func (c *Config) InfluxEnabled() bool { return c.InfluxURL != "" }

// NATSEnabled reports whether assessment events are published.
func (c *Config) NATSEnabled() bool { return c.NATSURL != "" }
