package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Scraper   ScraperConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Store     StoreConfig
	Webhook   WebhookConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "127.0.0.1"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: true

	// BrowserBin overrides the browser executable path. When empty the
	// persisted browser preference and then the system lookup are used.
	BrowserBin string

	// Proxy is an optional proxy URL for all page traffic.
	Proxy string

	// PrefsFile is where the chosen browser is persisted.
	PrefsFile string // default: $HOME/.tubemeta/browser.yaml
}

// ScraperConfig controls per-page behavior.
type ScraperConfig struct {
	// NavigationTimeout bounds navigation plus the network-quiescence wait.
	NavigationTimeout time.Duration // default: 30s

	// SettleDelay is the fixed pause after navigation so client-side scripts
	// can populate the embedded state objects.
	SettleDelay time.Duration // default: 3s

	// UserAgent is the desktop browser identification sent with every request.
	UserAgent string

	// AcceptLanguage is sent with every request. Parsing rules assume English labels.
	AcceptLanguage string // default: "en-US,en;q=0.9"

	// Stealth injects go-rod/stealth evasions before navigation.
	Stealth bool // default: true

	// BlockedResourceTypes lists resource types to block; empty blocks nothing.
	BlockedResourceTypes []string

	// BlockAds drops requests to ad and tracking hosts.
	BlockAds bool // default: false
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: false

	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64 // default: 2
	Burst             int     // default: 5
}

// StoreConfig selects where accumulated results live.
type StoreConfig struct {
	// SQLitePath enables the persistent store. Empty keeps results in memory.
	SQLitePath string
}

// WebhookConfig controls the batch-finished notification.
type WebhookConfig struct {
	// URL receives a "batch.completed" event. Empty disables delivery.
	URL    string
	Secret string
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "text"
}

// DefaultUserAgent is a realistic desktop Chrome identification string.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("TUBEMETA_HOST", "127.0.0.1"),
			Port: envIntOr("TUBEMETA_PORT", 8080),
			Mode: envOr("TUBEMETA_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:   envBoolOr("TUBEMETA_HEADLESS", true),
			NoSandbox:  envBoolOr("TUBEMETA_NO_SANDBOX", true),
			BrowserBin: os.Getenv("TUBEMETA_BROWSER_BIN"),
			Proxy:      os.Getenv("TUBEMETA_PROXY"),
			PrefsFile:  envOr("TUBEMETA_PREFS_FILE", defaultPrefsFile()),
		},
		Scraper: ScraperConfig{
			NavigationTimeout:    envDurationOr("TUBEMETA_NAV_TIMEOUT", 30*time.Second),
			SettleDelay:          envDurationOr("TUBEMETA_SETTLE_DELAY", 3*time.Second),
			UserAgent:            envOr("TUBEMETA_USER_AGENT", DefaultUserAgent),
			AcceptLanguage:       envOr("TUBEMETA_ACCEPT_LANGUAGE", "en-US,en;q=0.9"),
			Stealth:              envBoolOr("TUBEMETA_STEALTH", true),
			BlockedResourceTypes: envSliceOr("TUBEMETA_BLOCKED_RESOURCES", nil),
			BlockAds:             envBoolOr("TUBEMETA_BLOCK_ADS", false),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("TUBEMETA_AUTH_ENABLED", false),
			APIKeys: envSliceOr("TUBEMETA_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("TUBEMETA_RATE_RPS", 2.0),
			Burst:             envIntOr("TUBEMETA_RATE_BURST", 5),
		},
		Store: StoreConfig{
			SQLitePath: os.Getenv("TUBEMETA_SQLITE_PATH"),
		},
		Webhook: WebhookConfig{
			URL:    os.Getenv("TUBEMETA_WEBHOOK_URL"),
			Secret: os.Getenv("TUBEMETA_WEBHOOK_SECRET"),
		},
		Log: LogConfig{
			Level:  envOr("TUBEMETA_LOG_LEVEL", "info"),
			Format: envOr("TUBEMETA_LOG_FORMAT", "text"),
		},
	}
}

func defaultPrefsFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "browser.yaml"
	}
	return filepath.Join(home, ".tubemeta", "browser.yaml")
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
