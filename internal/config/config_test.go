package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 20, cfg.Planner.MaxSearches)
	assert.Equal(t, 3, cfg.Planner.MaxQueriesPerPhase)
	assert.Equal(t, 30*time.Second, cfg.Planner.PerCallTimeout.Duration())
	assert.Equal(t, "https://api.deepseek.com/v1", cfg.Provider.BaseURL)
	assert.Equal(t, "deepseek-chat", cfg.Provider.Model)
	assert.Equal(t, "duckduckgo", cfg.Search.Engine)
	assert.False(t, cfg.Telemetry.Enabled)

	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "valid defaults",
			mutate:  func(c *Config) {},
			wantErr: "",
		},
		{
			name:    "invalid port",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "invalid server port",
		},
		{
			name:    "negative max searches",
			mutate:  func(c *Config) { c.Planner.MaxSearches = -1 },
			wantErr: "max_searches",
		},
		{
			name:    "zero per-call timeout",
			mutate:  func(c *Config) { c.Planner.PerCallTimeout = 0 },
			wantErr: "per_call_timeout",
		},
		{
			name:    "missing provider model",
			mutate:  func(c *Config) { c.Provider.Model = "" },
			wantErr: "provider.model",
		},
		{
			name:    "unknown search engine",
			mutate:  func(c *Config) { c.Search.Engine = "bing" },
			wantErr: "unknown search engine",
		},
		{
			name:    "unknown log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "unknown log format",
		},
		{
			name: "telemetry enabled without endpoint",
			mutate: func(c *Config) {
				c.Telemetry.Enabled = true
				c.Telemetry.Endpoint = ""
			},
			wantErr: "telemetry.endpoint",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  port: 9001
planner:
  max_searches: 5
  per_call_timeout: 10s
search:
  engine: github
  max_results: 3
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9001, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Planner.MaxSearches)
	assert.Equal(t, 10*time.Second, cfg.Planner.PerCallTimeout.Duration())
	assert.Equal(t, "github", cfg.Search.Engine)
	assert.Equal(t, 3, cfg.Search.MaxResults)

	// Untouched values keep their defaults.
	assert.Equal(t, 3, cfg.Planner.MaxQueriesPerPhase)
	assert.Equal(t, "deepseek-chat", cfg.Provider.Model)
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("planner:\n  max_searches: 5\n"), 0o600))

	t.Setenv("PLAND_PLANNER_MAX_SEARCHES", "7")
	t.Setenv("PLAND_SERVER_PORT", "9100")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Planner.MaxSearches, "env should override file")
	assert.Equal(t, 9100, cfg.Server.Port)
}

func TestLoadAPIKeyFallback(t *testing.T) {
	t.Setenv("DEEPSEEK_API_KEY", "sk-test-key")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "sk-test-key", cfg.Provider.APIKey.Value())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Planner.MaxSearches)
}

func TestSecretRedaction(t *testing.T) {
	s := Secret("super-secret")
	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "super-secret", s.Value())
	assert.True(t, s.IsSet())

	data, err := s.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"[REDACTED]"`, string(data))

	var empty Secret
	assert.Equal(t, "", empty.String())
	assert.False(t, empty.IsSet())
}

func TestDurationUnmarshalText(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("90s")))
	assert.Equal(t, 90*time.Second, d.Duration())

	assert.Error(t, d.UnmarshalText([]byte("not-a-duration")))
	assert.Error(t, d.UnmarshalText([]byte("-5s")))
}
