package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://data-api.polymarket.com", cfg.DataAPIURL)
	assert.Equal(t, 30*time.Second, cfg.WatchInterval)
	assert.Equal(t, 8080, cfg.DashboardPort)
	assert.Equal(t, ModeServe, cfg.Mode)
	assert.Empty(t, cfg.WatchAddresses)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("WATCH_INTERVAL", "5")
	t.Setenv("WATCH_ADDRESSES", " 0xaaa , 0xbbb,")
	t.Setenv("WATCH_MODE", "watch")
	t.Setenv("DASHBOARD_PORT", "9999")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.WatchInterval)
	assert.Equal(t, []string{"0xaaa", "0xbbb"}, cfg.WatchAddresses)
	assert.Equal(t, ModeWatch, cfg.Mode)
	assert.Equal(t, 9999, cfg.DashboardPort)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults ok", func(c *Config) {}, ""},
		{"unknown mode", func(c *Config) { c.Mode = "daemon" }, "unknown WATCH_MODE"},
		{"interval too small", func(c *Config) { c.WatchInterval = 100 * time.Millisecond }, "too small"},
		{"watch needs addresses", func(c *Config) { c.Mode = ModeWatch }, "WATCH_ADDRESSES required"},
		{"once needs addresses", func(c *Config) { c.Mode = ModeOnce }, "WATCH_ADDRESSES required"},
		{"watch with addresses ok", func(c *Config) {
			c.Mode = ModeWatch
			c.WatchAddresses = []string{"0xaaa"}
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			require.NoError(t, err)
			tt.mutate(cfg)

			err = cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
