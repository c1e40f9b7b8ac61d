// Package config loads the gamescribe service configuration.
//
// Configuration is environment-first: every setting has a sensible default
// and can be overridden by an environment variable. An optional YAML file
// (CONFIG_FILE) may supply values too; environment variables win over the
// file. The only setting without a default is BROWSER_TOKEN, whose absence
// is a fatal startup condition.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the full service configuration. Millisecond fields are kept
// as plain ints so they round-trip cleanly through YAML and env vars;
// duration accessors convert them.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `yaml:"addr"`

	// BrowserWSURL is the remote browser-control endpoint (CDP over
	// WebSocket), without credentials.
	BrowserWSURL string `yaml:"browser_ws_url"`

	// BrowserToken authenticates against the remote endpoint. Required.
	BrowserToken string `yaml:"browser_token"`

	// UserAgent is the client identity string applied to every
	// browsing context.
	UserAgent string `yaml:"user_agent"`

	// MaxConcurrentPages bounds simultaneous extractions sharing the
	// one browser connection.
	MaxConcurrentPages int `yaml:"max_concurrent_pages"`

	// MaxQueueDepth bounds callers waiting for a page slot. Zero means
	// unbounded waiting.
	MaxQueueDepth int `yaml:"max_queue_depth"`

	NavTimeoutMS      int `yaml:"nav_timeout_ms"`
	SelectorTimeoutMS int `yaml:"selector_timeout_ms"`
	SettleDelayMS     int `yaml:"settle_delay_ms"`

	ConnectAttempts  int `yaml:"connect_attempts"`
	ConnectBackoffMS int `yaml:"connect_backoff_ms"`

	// AllowedHosts optionally restricts scrape targets to hosts matching
	// any of these glob patterns. Empty means any host.
	AllowedHosts []string `yaml:"allowed_hosts"`
}

// Default returns the configuration defaults applied before any file or
// environment override.
func Default() Config {
	return Config{
		Addr:               ":8080",
		BrowserWSURL:       "wss://chrome.browserless.io",
		UserAgent:          "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
		MaxConcurrentPages: 3,
		MaxQueueDepth:      32,
		NavTimeoutMS:       30000,
		SelectorTimeoutMS:  5000,
		SettleDelayMS:      1500,
		ConnectAttempts:    3,
		ConnectBackoffMS:   500,
	}
}

// Load builds the effective configuration: defaults, then the optional
// CONFIG_FILE YAML, then environment variables, then validation.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	envStr("ADDR", &cfg.Addr)
	envStr("BROWSER_WS_URL", &cfg.BrowserWSURL)
	envStr("BROWSER_TOKEN", &cfg.BrowserToken)
	envStr("USER_AGENT", &cfg.UserAgent)

	for _, v := range []struct {
		name string
		dst  *int
	}{
		{"MAX_CONCURRENT_PAGES", &cfg.MaxConcurrentPages},
		{"MAX_QUEUE_DEPTH", &cfg.MaxQueueDepth},
		{"NAV_TIMEOUT_MS", &cfg.NavTimeoutMS},
		{"SELECTOR_TIMEOUT_MS", &cfg.SelectorTimeoutMS},
		{"SETTLE_DELAY_MS", &cfg.SettleDelayMS},
		{"CONNECT_ATTEMPTS", &cfg.ConnectAttempts},
		{"CONNECT_BACKOFF_MS", &cfg.ConnectBackoffMS},
	} {
		if err := envInt(v.name, v.dst); err != nil {
			return err
		}
	}

	if raw, ok := os.LookupEnv("ALLOWED_HOSTS"); ok {
		cfg.AllowedHosts = splitHosts(raw)
	}
	return nil
}

func envStr(name string, dst *string) {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		*dst = v
	}
}

func envInt(name string, dst *int) error {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s value %q: %w", name, v, err)
	}
	*dst = n
	return nil
}

func splitHosts(raw string) []string {
	var hosts []string
	for _, h := range strings.Split(raw, ",") {
		if h = strings.TrimSpace(h); h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}

// Validate checks the configuration for fatal startup conditions.
func (c Config) Validate() error {
	if c.BrowserToken == "" {
		return fmt.Errorf("BROWSER_TOKEN is required")
	}
	if _, err := url.Parse(c.BrowserWSURL); err != nil {
		return fmt.Errorf("invalid BROWSER_WS_URL %q: %w", c.BrowserWSURL, err)
	}
	if c.MaxConcurrentPages < 1 {
		return fmt.Errorf("MAX_CONCURRENT_PAGES must be at least 1, got %d", c.MaxConcurrentPages)
	}
	if c.MaxQueueDepth < 0 {
		return fmt.Errorf("MAX_QUEUE_DEPTH must not be negative, got %d", c.MaxQueueDepth)
	}
	if c.ConnectAttempts < 1 {
		return fmt.Errorf("CONNECT_ATTEMPTS must be at least 1, got %d", c.ConnectAttempts)
	}
	if c.NavTimeoutMS < 1 {
		return fmt.Errorf("NAV_TIMEOUT_MS must be positive, got %d", c.NavTimeoutMS)
	}
	return nil
}

// Endpoint returns the browser-control endpoint with the token attached.
func (c Config) Endpoint() string {
	u, err := url.Parse(c.BrowserWSURL)
	if err != nil {
		return c.BrowserWSURL
	}
	q := u.Query()
	q.Set("token", c.BrowserToken)
	u.RawQuery = q.Encode()
	return u.String()
}

// NavTimeout is the hard deadline for a single navigation attempt.
func (c Config) NavTimeout() time.Duration {
	return time.Duration(c.NavTimeoutMS) * time.Millisecond
}

// SelectorTimeout bounds the best-effort wait for move-list markup.
func (c Config) SelectorTimeout() time.Duration {
	return time.Duration(c.SelectorTimeoutMS) * time.Millisecond
}

// SettleDelay is the fixed pause after navigation for client-side rendering.
func (c Config) SettleDelay() time.Duration {
	return time.Duration(c.SettleDelayMS) * time.Millisecond
}

// ConnectBackoff is the base delay between connection attempts.
func (c Config) ConnectBackoff() time.Duration {
	return time.Duration(c.ConnectBackoffMS) * time.Millisecond
}
