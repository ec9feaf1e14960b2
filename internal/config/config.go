// Package config loads d2o's YAML configuration file. Every field has a
// default, so a missing file is not an error.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPath overrides the configuration file location.
const EnvPath = "D2O_CONFIG"

type Config struct {
	Depth          int           `yaml:"depth"`
	Concurrency    int           `yaml:"concurrency"`
	Timeout        time.Duration `yaml:"timeout"`
	CommandTimeout time.Duration `yaml:"command_timeout"`
	SkipMan        bool          `yaml:"skip_man"`
	Reserved       []string      `yaml:"reserved,omitempty"`

	Cache Cache `yaml:"cache"`
	Log   Log   `yaml:"log"`
}

type Cache struct {
	Enabled bool          `yaml:"enabled"`
	Backend string        `yaml:"backend"`
	Path    string        `yaml:"path"`
	TTL     time.Duration `yaml:"ttl"`
}

type Log struct {
	Level   string `yaml:"level"`
	File    string `yaml:"file,omitempty"`
	JSON    bool   `yaml:"json"`
	NoColor bool   `yaml:"no_color"`
}

const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Depth:          4,
		Concurrency:    8,
		Timeout:        60 * time.Second,
		CommandTimeout: 5 * time.Second,
		Reserved:       []string{"help", "version", "completion"},
		Cache: Cache{
			Enabled: true,
			Backend: BackendSQLite,
			Path:    defaultCachePath(),
			TTL:     24 * time.Hour,
		},
		Log: Log{
			Level: "info",
		},
	}
}

func defaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "d2o", "cache.db")
}

// Path returns the configuration file location: $D2O_CONFIG if set,
// otherwise d2o/config.yaml under the user configuration directory.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "d2o", "config.yaml")
}

// Load reads the configuration at path on top of the defaults. An empty
// path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read config %q: %w", path, err)
	}
	if err := Parse(data, cfg); err != nil {
		return nil, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML into cfg, keeping the values of absent fields, and
// validates the result.
func Parse(data []byte, cfg *Config) error {
	if len(bytes.TrimSpace(data)) > 0 {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return err
		}
	}
	return cfg.Validate()
}

func (c *Config) Validate() error {
	if c.Depth < 1 {
		return fmt.Errorf("depth must be at least 1, got %d", c.Depth)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if c.Timeout < 0 || c.CommandTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	switch c.Cache.Backend {
	case BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("unknown cache backend %q (supported: %s, %s)", c.Cache.Backend, BackendSQLite, BackendMemory)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache ttl must be positive, got %s", c.Cache.TTL)
	}
	return nil
}
