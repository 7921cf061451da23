// Package config loads service configuration from an optional YAML file
// with environment overrides. The reasoning-engine credential is taken from
// the environment only and is never written to disk.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables honored as overrides.
const (
	EnvAPIKey = "GEMINI_API_KEY"
	EnvPort   = "TIMBERLENS_PORT"
	EnvModel  = "TIMBERLENS_MODEL"
)

// Config is the full service configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Data   DataConfig   `yaml:"data"`
	LLM    LLMConfig    `yaml:"llm"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Port    int  `yaml:"port"`
	DevMode bool `yaml:"dev_mode"`
}

// DataConfig configures the source fetch and table cache.
type DataConfig struct {
	// Endpoint overrides the Comext endpoint. Empty = default.
	Endpoint string `yaml:"endpoint"`
	// TTLSeconds is the canonical table cache time-to-live.
	TTLSeconds int `yaml:"ttl_seconds"`
	// TimeoutSeconds bounds a single source fetch.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// LLMConfig configures the reasoning engine.
type LLMConfig struct {
	Model string `yaml:"model"`
	// APIKey comes from the environment, never the file.
	APIKey string `yaml:"-"`
}

// Default returns the reference configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 8780},
		Data:   DataConfig{TTLSeconds: 3600, TimeoutSeconds: 30},
		LLM:    LLMConfig{Model: "gemini-2.5-pro"},
	}
}

// Load reads configuration from path (optional — a missing file yields
// defaults) and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("config: read %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if cfg.Data.TTLSeconds <= 0 {
		cfg.Data.TTLSeconds = 3600
	}
	if cfg.Data.TimeoutSeconds <= 0 {
		cfg.Data.TimeoutSeconds = 30
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvAPIKey); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv(EnvModel); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			cfg.Server.Port = port
		}
	}
}

// TTL returns the cache time-to-live as a duration.
func (c *Config) TTL() time.Duration {
	return time.Duration(c.Data.TTLSeconds) * time.Second
}

// FetchTimeout returns the source fetch timeout as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Data.TimeoutSeconds) * time.Second
}
