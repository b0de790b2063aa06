// Package config loads the migration tool's configuration from a YAML file
// with environment variable overrides for deployment-specific values.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration decodes YAML strings like "30m" or "1h" via time.ParseDuration.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(parsed)

	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

type Config struct {
	API     APIConfig     `yaml:"api"`
	Mapping MappingConfig `yaml:"mapping"`
	Cache   CacheConfig   `yaml:"cache"`
	Dirs    DirsConfig    `yaml:"dirs"`
}

type APIConfig struct {
	BaseURL   string   `yaml:"baseUrl"`
	Username  string   `yaml:"username"`
	Password  string   `yaml:"password"`
	Timeout   Duration `yaml:"timeout"`
	BatchSize int      `yaml:"batchSize"`
}

type MappingConfig struct {
	// Threshold below which match candidates are not offered as defaults.
	Threshold float64 `yaml:"threshold"`
	// Workers bounds concurrent table matching. Zero means sequential.
	Workers int `yaml:"workers"`
}

type CacheConfig struct {
	Path string   `yaml:"path"`
	TTL  Duration `yaml:"ttl"`
}

type DirsConfig struct {
	Backup string `yaml:"backup"`
	Output string `yaml:"output"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:   "http://localhost:8080",
			Timeout:   Duration(60 * time.Second),
			BatchSize: 100,
		},
		Mapping: MappingConfig{
			Threshold: 0.70,
			Workers:   4,
		},
		Cache: CacheConfig{
			Path: ".cache/schemas.db",
			TTL:  Duration(time.Hour),
		},
		Dirs: DirsConfig{
			Backup: "./backup",
			Output: "./output",
		},
	}
}

// Load reads the config file, fills unset values with defaults, applies
// environment overrides, and validates the result. An empty path yields
// defaults plus environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnv overrides file values with environment variables, so
// credentials never have to live in the config file.
func (c *Config) applyEnv() {
	if v := os.Getenv("ERP_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("ERP_API_USER"); v != "" {
		c.API.Username = v
	}
	if v := os.Getenv("ERP_API_PASSWORD"); v != "" {
		c.API.Password = v
	}
	if v := os.Getenv("ERP_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.API.BatchSize = n
		}
	}
	if v := os.Getenv("ERP_CACHE_PATH"); v != "" {
		c.Cache.Path = v
	}
	if v := os.Getenv("MIGRATION_BACKUP_DIR"); v != "" {
		c.Dirs.Backup = v
	}
	if v := os.Getenv("MIGRATION_OUTPUT_DIR"); v != "" {
		c.Dirs.Output = v
	}
}

func (c *Config) validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.baseUrl is required")
	}
	if c.API.BatchSize <= 0 {
		return errors.New("api.batchSize must be positive")
	}
	if c.Mapping.Threshold < 0 || c.Mapping.Threshold > 1 {
		return fmt.Errorf("mapping.threshold must be in [0,1], got %v", c.Mapping.Threshold)
	}
	if c.Mapping.Workers < 0 {
		return errors.New("mapping.workers must not be negative")
	}
	if c.Cache.Path == "" {
		return errors.New("cache.path is required")
	}

	return nil
}
