// Package config provides configuration loading for railsathi.
package config

import (
	"fmt"
	"time"
)

// Config is the full runtime configuration.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	LLM     LLMConfig     `koanf:"llm"`
	Session SessionConfig `koanf:"session"`
	Fares   FaresConfig   `koanf:"fares"`
	Log     LogConfig     `koanf:"log"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Host            string   `koanf:"host"`
	Port            int      `koanf:"port"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string `koanf:"cors_origins"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LLMConfig configures the extraction fallback. Without an API key the
// assistant runs rules-only.
type LLMConfig struct {
	APIKey             Secret   `koanf:"api_key"`
	Model              string   `koanf:"model"`
	BaseURL            string   `koanf:"base_url"`
	Timeout            Duration `koanf:"timeout"`
	MaxCallsPerSession int      `koanf:"max_calls_per_session"`
	RequestsPerMinute  int      `koanf:"requests_per_minute"`
	Burst              int      `koanf:"burst"`
}

// SessionConfig configures the session store.
type SessionConfig struct {
	Capacity int `koanf:"capacity"`
}

// FaresConfig configures the fare provider. Seed 0 means a random seed
// per process.
type FaresConfig struct {
	Seed int64 `koanf:"seed"`
}

// LogConfig configures logging output.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Server.ShutdownTimeout.Duration() <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive")
	}
	if c.Session.Capacity < 0 {
		return fmt.Errorf("session.capacity cannot be negative: %d", c.Session.Capacity)
	}
	if c.LLM.MaxCallsPerSession < 0 {
		return fmt.Errorf("llm.max_calls_per_session cannot be negative: %d", c.LLM.MaxCallsPerSession)
	}
	if c.LLM.RequestsPerMinute < 0 {
		return fmt.Errorf("llm.requests_per_minute cannot be negative: %d", c.LLM.RequestsPerMinute)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn, or error: %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json: %q", c.Log.Format)
	}
	return nil
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = Duration(10 * time.Second)
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = []string{"*"}
	}

	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "meta-llama/llama-3.3-70b-instruct:free"
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = "https://openrouter.ai/api/v1"
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = Duration(18 * time.Second)
	}
	if cfg.LLM.MaxCallsPerSession == 0 {
		cfg.LLM.MaxCallsPerSession = 2
	}
	if cfg.LLM.RequestsPerMinute == 0 {
		cfg.LLM.RequestsPerMinute = 50
	}
	if cfg.LLM.Burst == 0 {
		cfg.LLM.Burst = 5
	}

	if cfg.Session.Capacity == 0 {
		cfg.Session.Capacity = 512
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
}
