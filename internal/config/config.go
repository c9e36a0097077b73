package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	ScanSeconds           int    `yaml:"scan_seconds"`
	ConnectTimeoutSeconds int    `yaml:"connect_timeout_seconds"`
	LogCap                int    `yaml:"log_cap"`
	RefreshHz             int    `yaml:"refresh_hz"`
	ErrorLogPath          string `yaml:"error_log_path"`
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "gattscope.yaml"
	}
	return filepath.Join(home, ".config", "gattscope", "config.yaml")
}

// Default returns a Config with the stock values: 10s scan window, 15s
// connect timeout, 200-entry log cap, 4 Hz UI refresh.
func Default() *Config {
	return &Config{
		ScanSeconds:           10,
		ConnectTimeoutSeconds: 15,
		LogCap:                200,
		RefreshHz:             4,
		ErrorLogPath:          "gattscope-error.log",
	}
}

// Load reads and parses a YAML config file. Missing fields keep their
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config file")
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "parsing config file")
	}
	return cfg.sanitized(), nil
}

// LoadOrDefault behaves like Load but falls back to defaults when the file
// does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		if os.IsNotExist(errors.Cause(err)) {
			return Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}

func (c *Config) sanitized() *Config {
	d := Default()
	if c.ScanSeconds <= 0 {
		c.ScanSeconds = d.ScanSeconds
	}
	if c.ConnectTimeoutSeconds <= 0 {
		c.ConnectTimeoutSeconds = d.ConnectTimeoutSeconds
	}
	if c.LogCap <= 0 {
		c.LogCap = d.LogCap
	}
	if c.RefreshHz <= 0 {
		c.RefreshHz = d.RefreshHz
	}
	if c.ErrorLogPath == "" {
		c.ErrorLogPath = d.ErrorLogPath
	}
	return c
}

// ScanWindow returns the scan duration.
func (c *Config) ScanWindow() time.Duration {
	return time.Duration(c.ScanSeconds) * time.Second
}

// ConnectTimeout returns the connection attempt deadline.
func (c *Config) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutSeconds) * time.Second
}

// RefreshInterval converts the refresh rate to a tick interval.
func (c *Config) RefreshInterval() time.Duration {
	return time.Second / time.Duration(c.RefreshHz)
}
