// Package config loads looper settings from an optional YAML file and
// LOOPER_* environment variables. Environment values win over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// ErrMissingSecret is returned by RequireSecret when no HMAC secret is set.
var ErrMissingSecret = errors.New("config: LOOPER_HMAC_SECRET is not set")

// Config holds looper settings.
type Config struct {
	HMACSecret    string        `yaml:"hmac_secret"`
	Store         string        `yaml:"store"`
	Database      string        `yaml:"database"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	APIURL        string        `yaml:"api_url"`
	Addr          string        `yaml:"addr"`
	LogLevel      string        `yaml:"log_level"`
	SubmitTimeout time.Duration `yaml:"submit_timeout"`
	SyncDebounce  time.Duration `yaml:"sync_debounce"`
}

// Default returns the built-in settings. The secret is deliberately empty.
func Default() Config {
	return Config{
		Store:         StoreSQLite,
		Database:      "looper.db",
		RedisAddr:     "localhost:6379",
		APIURL:        "http://localhost:3001/api",
		Addr:          ":3001",
		LogLevel:      "info",
		SubmitTimeout: 10 * time.Second,
		SyncDebounce:  2 * time.Second,
	}
}

// Load reads path over the defaults, then applies environment overrides.
// An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("load config %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %q: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	cfg.Store = strings.ToLower(cfg.Store)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	str := func(name string, dst *string) {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	str("LOOPER_HMAC_SECRET", &c.HMACSecret)
	str("LOOPER_STORE", &c.Store)
	str("LOOPER_DB", &c.Database)
	str("LOOPER_REDIS_ADDR", &c.RedisAddr)
	str("LOOPER_REDIS_PASSWORD", &c.RedisPassword)
	str("LOOPER_API_URL", &c.APIURL)
	str("LOOPER_ADDR", &c.Addr)
	str("LOOPER_LOG_LEVEL", &c.LogLevel)

	for name, dst := range map[string]*time.Duration{
		"LOOPER_SUBMIT_TIMEOUT": &c.SubmitTimeout,
		"LOOPER_SYNC_DEBOUNCE":  &c.SyncDebounce,
	} {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", name, err)
		}
		*dst = d
	}
	return nil
}

// Validate checks settings that have a fixed set of values.
func (c Config) Validate() error {
	switch c.Store {
	case StoreSQLite, StoreRedis, StoreMemory:
	default:
		return fmt.Errorf("config: unknown store %q: must be one of sqlite, redis, memory", c.Store)
	}
	if c.SubmitTimeout <= 0 {
		return fmt.Errorf("config: submit_timeout must be positive, got %s", c.SubmitTimeout)
	}
	return nil
}

// RequireSecret returns the HMAC secret, or ErrMissingSecret when empty.
func (c Config) RequireSecret() (string, error) {
	if c.HMACSecret == "" {
		return "", ErrMissingSecret
	}
	return c.HMACSecret, nil
}
