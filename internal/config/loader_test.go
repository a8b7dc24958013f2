package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout.Duration())
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "meta-llama/llama-3.3-70b-instruct:free", cfg.LLM.Model)
	assert.Equal(t, "https://openrouter.ai/api/v1", cfg.LLM.BaseURL)
	assert.Equal(t, 18*time.Second, cfg.LLM.Timeout.Duration())
	assert.Equal(t, 2, cfg.LLM.MaxCallsPerSession)
	assert.Equal(t, 50, cfg.LLM.RequestsPerMinute)
	assert.Equal(t, 5, cfg.LLM.Burst)
	assert.Equal(t, 512, cfg.Session.Capacity)
	assert.False(t, cfg.LLM.APIKey.IsSet())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("RAILSATHI_SERVER_PORT", "9191")
	t.Setenv("RAILSATHI_LLM_API_KEY", "sk-test-123")
	t.Setenv("RAILSATHI_LLM_MAX_CALLS_PER_SESSION", "4")
	t.Setenv("RAILSATHI_SESSION_CAPACITY", "32")
	t.Setenv("RAILSATHI_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "sk-test-123", cfg.LLM.APIKey.Value())
	assert.Equal(t, 4, cfg.LLM.MaxCallsPerSession)
	assert.Equal(t, 32, cfg.Session.Capacity)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("server:\n  port: 7070\n  shutdown_timeout: 5s\nllm:\n  model: test-model\nlog:\n  format: json\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout.Duration())
	assert.Equal(t, "test-model", cfg.LLM.Model)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 7070\n"), 0o600))
	t.Setenv("RAILSATHI_SERVER_PORT", "9999")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
}

func TestLoad_MissingFileIsFine(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_ValidationFailures(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad port", "RAILSATHI_SERVER_PORT", "70000"},
		{"bad log level", "RAILSATHI_LOG_LEVEL", "verbose"},
		{"bad log format", "RAILSATHI_LOG_FORMAT", "logfmt"},
		{"negative capacity", "RAILSATHI_SESSION_CAPACITY", "-5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestSecretRedaction(t *testing.T) {
	s := Secret("sk-real-key")
	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "sk-real-key", s.Value())

	out, err := s.MarshalJSON()
	require.NoError(t, err)
	assert.NotContains(t, string(out), "sk-real-key")

	assert.Empty(t, Secret("").String())
}
