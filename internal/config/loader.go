package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	// envPrefix namespaces railsathi environment variables.
	envPrefix = "RAILSATHI_"

	maxConfigFileSize = 1024 * 1024 // 1MB
)

// Load builds the configuration.
//
// Precedence (highest to lowest):
//  1. Environment variables (RAILSATHI_SERVER_PORT, RAILSATHI_LLM_API_KEY, ...)
//  2. YAML config file, when configPath is given and exists
//  3. Hardcoded defaults
//
// Environment variables map section-first: the first underscore after
// the prefix becomes a dot, the rest stay underscores.
//
//	RAILSATHI_SERVER_PORT            -> server.port
//	RAILSATHI_LLM_API_KEY            -> llm.api_key
//	RAILSATHI_SESSION_CAPACITY       -> session.capacity
//	RAILSATHI_LLM_REQUESTS_PER_MINUTE -> llm.requests_per_minute
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath != "" {
		if err := loadFile(k, configPath); err != nil {
			return nil, err
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		trimmed := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		parts := strings.SplitN(trimmed, "_", 2)
		if len(parts) == 1 {
			return trimmed
		}
		return parts[0] + "." + parts[1]
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// loadFile reads a YAML config file into k. A missing file is not an
// error; the caller may run entirely on env vars and defaults.
func loadFile(k *koanf.Koanf, path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxConfigFileSize {
		return fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
		return fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	return nil
}
