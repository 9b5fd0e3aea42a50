package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Mode selects which surface the binary runs.
type Mode string

const (
	ModeServe Mode = "serve" // dashboard server only
	ModeWatch Mode = "watch" // terminal TUI session
	ModeOnce  Mode = "once"  // single fetch, print, exit
)

type Config struct {
	// Upstream Polymarket APIs
	DataAPIURL string
	CLOBAPIURL string

	// Watch targets (optional — can also be submitted via dashboard/TUI)
	WatchAddresses []string
	WatchInterval  time.Duration

	// Fetcher
	HTTPTimeout     time.Duration
	FetchMaxElapsed time.Duration

	// Analytics
	AnalyticsRefresh time.Duration
	AnalyticsWindow  int // snapshots considered per recompute

	// DB
	DBPath string

	// Dashboard
	DashboardPort int

	Mode Mode
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DataAPIURL: envOr("DATA_API_URL", "https://data-api.polymarket.com"),
		CLOBAPIURL: envOr("CLOB_API_URL", "https://clob.polymarket.com"),

		WatchAddresses: splitTrim(os.Getenv("WATCH_ADDRESSES")),
		WatchInterval:  time.Duration(envInt("WATCH_INTERVAL", 30)) * time.Second,

		HTTPTimeout:     time.Duration(envInt("HTTP_TIMEOUT", 15)) * time.Second,
		FetchMaxElapsed: time.Duration(envInt("FETCH_MAX_ELAPSED", 10)) * time.Second,

		AnalyticsRefresh: time.Duration(envInt("ANALYTICS_REFRESH", 300)) * time.Second,
		AnalyticsWindow:  envInt("ANALYTICS_WINDOW", 200),

		DBPath:        envOr("DB_PATH", "poly_watch.db"),
		DashboardPort: envInt("DASHBOARD_PORT", 8080),

		Mode: Mode(envOr("WATCH_MODE", string(ModeServe))),
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Mode {
	case ModeServe, ModeWatch, ModeOnce:
	default:
		return fmt.Errorf("unknown WATCH_MODE %q (want serve, watch, or once)", c.Mode)
	}
	if c.WatchInterval < time.Second {
		return fmt.Errorf("WATCH_INTERVAL too small: %s", c.WatchInterval)
	}
	if (c.Mode == ModeWatch || c.Mode == ModeOnce) && len(c.WatchAddresses) == 0 {
		return fmt.Errorf("WATCH_ADDRESSES required in %s mode", c.Mode)
	}
	return nil
}

// helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
