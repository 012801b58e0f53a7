package fetcher

import (
	"time"

	"feed-collector/internal/resilience/retry"
)

// Config holds the configuration for feed retrieval.
type Config struct {
	// Timeout is the maximum duration for a single HTTP request.
	// Default: 30s
	Timeout time.Duration

	// MaxAttempts is the total number of fetch attempts for retryable
	// failures, including the first one.
	// Default: 3
	MaxAttempts int

	// UserAgent identifies the collector to feed servers.
	// Default: "feed-collector/1.0"
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes. Responses are
	// truncated at this limit to prevent memory exhaustion.
	// Default: 10485760 (10MB)
	MaxBodySize int64

	// Backoff overrides the retry schedule. The zero value selects the
	// standard feed-fetch schedule (1s, 2s, 4s waits, no jitter).
	Backoff retry.Config
}

// DefaultConfig returns the default retrieval configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:     30 * time.Second,
		MaxAttempts: 3,
		UserAgent:   "feed-collector/1.0",
		MaxBodySize: 10 * 1024 * 1024,
	}
}

// withDefaults fills unset fields with their defaults.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	if c.MaxAttempts < 1 {
		c.MaxAttempts = def.MaxAttempts
	}
	if c.UserAgent == "" {
		c.UserAgent = def.UserAgent
	}
	if c.MaxBodySize <= 0 {
		c.MaxBodySize = def.MaxBodySize
	}
	if c.Backoff.MaxAttempts == 0 {
		c.Backoff = retry.FeedFetchConfig(c.MaxAttempts)
	}
	return c
}
