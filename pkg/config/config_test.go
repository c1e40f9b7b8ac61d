package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"CONFIG_FILE", "ADDR", "BROWSER_WS_URL", "BROWSER_TOKEN", "USER_AGENT",
		"MAX_CONCURRENT_PAGES", "MAX_QUEUE_DEPTH", "NAV_TIMEOUT_MS",
		"SELECTOR_TIMEOUT_MS", "SETTLE_DELAY_MS", "CONNECT_ATTEMPTS",
		"CONNECT_BACKOFF_MS", "ALLOWED_HOSTS",
	} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func TestLoadRequiresToken(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BROWSER_TOKEN")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("BROWSER_TOKEN", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 3, cfg.MaxConcurrentPages)
	assert.Equal(t, 32, cfg.MaxQueueDepth)
	assert.Equal(t, 30000, cfg.NavTimeoutMS)
	assert.Empty(t, cfg.AllowedHosts)
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("BROWSER_TOKEN", "secret")
	t.Setenv("MAX_CONCURRENT_PAGES", "5")
	t.Setenv("NAV_TIMEOUT_MS", "10000")
	t.Setenv("ALLOWED_HOSTS", "*.chess.com, lichess.org")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.MaxConcurrentPages)
	assert.Equal(t, 10000, cfg.NavTimeoutMS)
	assert.Equal(t, []string{"*.chess.com", "lichess.org"}, cfg.AllowedHosts)
}

func TestLoadRejectsBadInt(t *testing.T) {
	clearEnv(t)
	t.Setenv("BROWSER_TOKEN", "secret")
	t.Setenv("MAX_QUEUE_DEPTH", "many")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAX_QUEUE_DEPTH")
}

func TestLoadConfigFileWithEnvPrecedence(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "gamescribe.yaml")
	data := []byte("browser_token: from-file\nmax_concurrent_pages: 7\naddr: \":9090\"\n")
	require.NoError(t, os.WriteFile(path, data, 0600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("MAX_CONCURRENT_PAGES", "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.BrowserToken)
	assert.Equal(t, ":9090", cfg.Addr)
	// Environment wins over the file.
	assert.Equal(t, 2, cfg.MaxConcurrentPages)
}

func TestEndpointAttachesToken(t *testing.T) {
	cfg := Default()
	cfg.BrowserToken = "abc123"

	assert.Equal(t, "wss://chrome.browserless.io?token=abc123", cfg.Endpoint())
}

func TestValidateBounds(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero pages", func(c *Config) { c.MaxConcurrentPages = 0 }},
		{"negative queue", func(c *Config) { c.MaxQueueDepth = -1 }},
		{"zero attempts", func(c *Config) { c.ConnectAttempts = 0 }},
		{"zero nav timeout", func(c *Config) { c.NavTimeoutMS = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.BrowserToken = "secret"
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
