// Package config loads server configuration: which binaries to invoke, how
// long to wait for them, and how verbose to be. Everything has a default so
// the servers run with no config file at all.
package config

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Service configures one wrapped CLI.
type Service struct {
	// Binary is the executable name or path. Resolved via PATH when bare.
	Binary string `yaml:"binary"`
	// TimeoutSec is the hard wall-clock bound per invocation, in seconds.
	TimeoutSec int `yaml:"timeout"`
}

// Timeout returns the per-invocation bound as a duration.
func (s Service) Timeout() time.Duration {
	return time.Duration(s.TimeoutSec) * time.Second
}

// Config is the root configuration shared by the server binaries.
type Config struct {
	LogLevel string  `yaml:"log_level"`
	Lacework Service `yaml:"lacework"`
	AWS      Service `yaml:"aws"`
}

// Default returns the documented defaults: lacework queries get 60s (scan
// result sets are slow to assemble), AWS metadata queries get 30s.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Lacework: Service{Binary: "lacework", TimeoutSec: 60},
		AWS:      Service{Binary: "aws", TimeoutSec: 30},
	}
}

// Load reads the YAML file at path, filling unset fields from Default.
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to read config %s", path)
	}
	if err := yaml.Unmarshal(bs, cfg); err != nil {
		return nil, errors.WithMessagef(err, "failed to parse config %s", path)
	}

	def := Default()
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
	if cfg.Lacework.Binary == "" {
		cfg.Lacework.Binary = def.Lacework.Binary
	}
	if cfg.Lacework.TimeoutSec <= 0 {
		cfg.Lacework.TimeoutSec = def.Lacework.TimeoutSec
	}
	if cfg.AWS.Binary == "" {
		cfg.AWS.Binary = def.AWS.Binary
	}
	if cfg.AWS.TimeoutSec <= 0 {
		cfg.AWS.TimeoutSec = def.AWS.TimeoutSec
	}
	return cfg, nil
}
