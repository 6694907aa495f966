package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	unsetEnv(t, "PORT", "SITE_URL", "SITE_TIMEOUT", "DB_PATH", "ALLOWED_ORIGINS",
		"WIDGET_MIN_DELAY", "WIDGET_MAX_DELAY", "ARK_API_KEY", "ARK_ACCESS_KEY", "Model")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "https://www.brainovision.in", cfg.Site.URL)
	assert.Equal(t, 10*time.Second, cfg.Site.Timeout)
	assert.Equal(t, "./data/assistant.db", cfg.Store.Path)
	assert.Equal(t, time.Second, cfg.Widget.MinDelay)
	assert.Equal(t, 2*time.Second, cfg.Widget.MaxDelay)
	assert.False(t, cfg.AI.Enabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "127.0.0.1:9000")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("WIDGET_MIN_DELAY", "250ms")
	t.Setenv("WIDGET_MAX_DELAY", "500ms")
	t.Setenv("ARK_API_KEY", "key")
	t.Setenv("Model", "doubao")
	t.Setenv("ARK_TEMPERATURE", "0.3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 250*time.Millisecond, cfg.Widget.MinDelay)
	assert.True(t, cfg.AI.Enabled())
	require.NotNil(t, cfg.AI.Temperature)
	assert.InDelta(t, 0.3, *cfg.AI.Temperature, 1e-9)
}

func TestResolveAddr(t *testing.T) {
	addr, err := resolveAddr("3000")
	require.NoError(t, err)
	assert.Equal(t, ":3000", addr)

	addr, err = resolveAddr(":4000")
	require.NoError(t, err)
	assert.Equal(t, ":4000", addr)

	_, err = resolveAddr("80 80")
	assert.Error(t, err)
}

func TestLoadRejectsInvertedDelays(t *testing.T) {
	t.Setenv("WIDGET_MIN_DELAY", "3s")
	t.Setenv("WIDGET_MAX_DELAY", "1s")

	_, err := Load()
	assert.ErrorContains(t, err, "widget delay")
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{Port: "8080"},
		Site:   SiteConfig{URL: "ftp://nope", Timeout: time.Second},
		Store:  StoreConfig{Path: " "},
		Widget: WidgetConfig{MinDelay: time.Second, MaxDelay: 2 * time.Second},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "SITE_URL")
	assert.ErrorContains(t, err, "DB_PATH")
}

func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		if prev, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { _ = os.Setenv(key, prev) })
		}
		require.NoError(t, os.Unsetenv(key))
	}
}
