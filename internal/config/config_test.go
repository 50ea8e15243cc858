package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "advice.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultWebPort, cfg.Web.ListenPort)
	assert.Equal(t, DefaultPageSize, cfg.Web.PageSize)
	assert.Equal(t, "NORMAL", cfg.Database.SyncMode)
	assert.Equal(t, "@every 15m", cfg.Scheduler.SessionCleanup)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
web:
  listen_port: 18080
  page_size: 20
database:
  data_dir: /tmp/advice
log:
  level: debug
  format: json
search:
  min_word_length: 4
  stop_words: [foo, bar]
  popular_cache_ttl: 30s
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 18080, cfg.Web.ListenPort)
	assert.Equal(t, 20, cfg.Web.PageSize)
	assert.Equal(t, "/tmp/advice", cfg.Database.DataDir)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 4, cfg.Search.MinWordLength)
	assert.Equal(t, []string{"foo", "bar"}, cfg.Search.StopWords)
	assert.Equal(t, 30*time.Second, cfg.Search.PopularCacheTTL)
	// untouched sections keep their defaults
	assert.Equal(t, "UTC", cfg.Scheduler.Timezone)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("ADVICE_DATA", "/srv/advice")
	t.Setenv("ADVICE_WEB_PORT", "12345")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "/srv/advice", cfg.Database.DataDir)
	assert.Equal(t, 12345, cfg.Web.ListenPort)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"port too low", "web:\n  listen_port: 80\n"},
		{"bad log level", "log:\n  level: verbose\n"},
		{"ssl without cert", "web:\n  ssl: true\n"},
		{"bad sync mode", "database:\n  sync_mode: SOMETIMES\n"},
		{"bad timezone", "scheduler:\n  timezone: Mars/Olympus\n"},
		{"bad proxy", "web:\n  trusted_proxies: [not-an-ip]\n"},
		{"broken yaml", "web: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv("ADVICE_CONFIG", "")
	assert.Equal(t, DefaultConfigPath, GetConfigPath())

	t.Setenv("ADVICE_CONFIG", "/etc/advice.yaml")
	assert.Equal(t, "/etc/advice.yaml", GetConfigPath())
}
