// Package config loads the collector's runtime configuration from
// environment variables and validates it before any component starts.
package config

import (
	"fmt"
	"time"

	pkgconfig "feed-collector/pkg/config"
)

// Defaults for the collector configuration.
const (
	DefaultDataDir        = "./data"
	DefaultFetchTimeout   = 30 * time.Second
	DefaultMaxRetries     = 3
	DefaultLockTimeout    = 10 * time.Second
	DefaultMaxConcurrency = 5
	DefaultUserAgent      = "feed-collector/1.0"
	DefaultMetricsPort    = 9090
	DefaultNotifyTimeout  = 10 * time.Second

	// MaxConcurrencyCap bounds the fetch worker pool regardless of
	// configuration.
	MaxConcurrencyCap = 10
)

// CollectorConfig holds every runtime setting of the collector.
type CollectorConfig struct {
	// DataDir is the root directory for the feed registry and item archives.
	DataDir string

	// FetchTimeout bounds one HTTP request to a feed endpoint.
	FetchTimeout time.Duration

	// MaxRetries is the total number of attempts per feed fetch.
	MaxRetries int

	// LockTimeout bounds the wait for a file lock before giving up.
	LockTimeout time.Duration

	// MaxConcurrency is the number of feeds fetched in parallel during a
	// batch cycle. Clamped to [1, MaxConcurrencyCap].
	MaxConcurrency int

	// UserAgent is sent on every outbound feed request.
	UserAgent string

	// Category narrows batch cycles to feeds with this label ("" = all).
	Category string

	// SlackWebhookURL enables Slack digests when non-empty.
	SlackWebhookURL string

	// DiscordWebhookURL enables Discord digests when non-empty.
	DiscordWebhookURL string

	// NotifyTimeout bounds one webhook notification request.
	NotifyTimeout time.Duration

	// MetricsEnabled starts the Prometheus endpoint when true.
	MetricsEnabled bool

	// MetricsPort is the listen port for the metrics endpoint.
	MetricsPort int
}

// Load builds the collector configuration from environment variables,
// applying defaults for anything unset.
func Load() CollectorConfig {
	return CollectorConfig{
		DataDir:           pkgconfig.GetEnvString("COLLECTOR_DATA_DIR", DefaultDataDir),
		FetchTimeout:      pkgconfig.GetEnvDuration("COLLECTOR_FETCH_TIMEOUT", DefaultFetchTimeout),
		MaxRetries:        pkgconfig.GetEnvInt("COLLECTOR_MAX_RETRIES", DefaultMaxRetries),
		LockTimeout:       pkgconfig.GetEnvDuration("COLLECTOR_LOCK_TIMEOUT", DefaultLockTimeout),
		MaxConcurrency:    pkgconfig.GetEnvInt("COLLECTOR_MAX_CONCURRENCY", DefaultMaxConcurrency),
		UserAgent:         pkgconfig.GetEnvString("COLLECTOR_USER_AGENT", DefaultUserAgent),
		Category:          pkgconfig.GetEnvString("COLLECTOR_CATEGORY", ""),
		SlackWebhookURL:   pkgconfig.GetEnvString("COLLECTOR_SLACK_WEBHOOK_URL", ""),
		DiscordWebhookURL: pkgconfig.GetEnvString("COLLECTOR_DISCORD_WEBHOOK_URL", ""),
		NotifyTimeout:     pkgconfig.GetEnvDuration("COLLECTOR_NOTIFY_TIMEOUT", DefaultNotifyTimeout),
		MetricsEnabled:    pkgconfig.GetEnvBool("COLLECTOR_METRICS_ENABLED", false),
		MetricsPort:       pkgconfig.GetEnvInt("COLLECTOR_METRICS_PORT", DefaultMetricsPort),
	}
}

// Validate checks the configuration for values no component could run
// with. Out-of-range concurrency is clamped rather than rejected.
func (c *CollectorConfig) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory must not be empty")
	}
	if err := pkgconfig.ValidatePositiveDuration(c.FetchTimeout); err != nil {
		return fmt.Errorf("invalid fetch timeout: %w", err)
	}
	if err := pkgconfig.ValidatePositiveDuration(c.LockTimeout); err != nil {
		return fmt.Errorf("invalid lock timeout: %w", err)
	}
	if err := pkgconfig.ValidatePositiveDuration(c.NotifyTimeout); err != nil {
		return fmt.Errorf("invalid notify timeout: %w", err)
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("max retries must be at least 1, got %d", c.MaxRetries)
	}
	if c.MetricsEnabled && (c.MetricsPort < 1 || c.MetricsPort > 65535) {
		return fmt.Errorf("metrics port out of range: %d", c.MetricsPort)
	}

	if c.MaxConcurrency < 1 {
		c.MaxConcurrency = DefaultMaxConcurrency
	}
	if c.MaxConcurrency > MaxConcurrencyCap {
		c.MaxConcurrency = MaxConcurrencyCap
	}

	return nil
}
