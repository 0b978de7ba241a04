// Package config loads client configuration from YAML with environment
// fallbacks.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// maxConfigSize guards against accidentally pointing at a huge file.
const maxConfigSize = 1 << 20 // 1MB

// Credential backend kinds.
const (
	CredentialsFile   = "file"
	CredentialsRedis  = "redis"
	CredentialsMemory = "memory"
)

// Config represents the client configuration.
type Config struct {
	// APIBaseURL is the backend base URL.
	APIBaseURL string `yaml:"api_base_url"`

	// TimeoutSeconds is the transport timeout (default 60, sized for the
	// AI-generation call).
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// Credentials selects where the bearer token is persisted.
	Credentials CredentialsConfig `yaml:"credentials"`

	// Tracing configures the OpenTelemetry exporter.
	Tracing TracingConfig `yaml:"tracing"`

	// LogLevel is "debug", "info", "warn", or "error".
	LogLevel string `yaml:"log_level"`
}

// CredentialsConfig selects and configures the token store.
type CredentialsConfig struct {
	// Backend is "file", "redis", or "memory" (default: "file").
	Backend string `yaml:"backend"`

	// Dir is the base directory for the file backend (default: ~/.travelsia).
	Dir string `yaml:"dir"`

	// Redis configures the redis backend.
	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig holds redis connection settings for the credential store.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
	// TokenTTLSeconds expires the stored token (0 = never).
	TokenTTLSeconds int `yaml:"token_ttl_seconds"`
}

// TracingConfig configures the trace exporter.
type TracingConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"` // "otlp" or "stdout"
	Endpoint string `yaml:"endpoint"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from a YAML file, then applies environment
// fallbacks and defaults.
func Load(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxConfigSize {
		return nil, fmt.Errorf("config file too large: %d bytes", info.Size())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.APIBaseURL == "" {
		c.APIBaseURL = os.Getenv("TRAVELSIA_API_URL")
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = "http://localhost:4000"
	}
	if c.TimeoutSeconds == 0 {
		if v := os.Getenv("TRAVELSIA_TIMEOUT_SECONDS"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.TimeoutSeconds = n
			}
		}
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = 60
	}
	if c.Credentials.Backend == "" {
		c.Credentials.Backend = CredentialsFile
	}
	if c.Credentials.Redis.Addr == "" {
		c.Credentials.Redis.Addr = os.Getenv("TRAVELSIA_REDIS_ADDR")
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Timeout returns the transport timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("api_base_url is required")
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds cannot be negative")
	}

	switch c.Credentials.Backend {
	case CredentialsFile, CredentialsMemory:
	case CredentialsRedis:
		if c.Credentials.Redis.Addr == "" {
			return fmt.Errorf("credentials.redis.addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown credentials backend: %s", c.Credentials.Backend)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level: %s", c.LogLevel)
	}

	return nil
}

// Save writes configuration to a YAML file.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
