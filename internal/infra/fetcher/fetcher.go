// Package fetcher retrieves raw feed documents over HTTP with timeout, retry,
// and exponential backoff. Transient failures (timeouts, connection errors,
// 5xx responses) are retried on the 1s/2s/4s schedule; client errors (4xx)
// fail immediately. TLS certificate verification uses the default transport
// and is never disabled.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"feed-collector/internal/resilience/circuitbreaker"
	"feed-collector/internal/resilience/retry"
)

// ErrFetchFailed indicates that a feed could not be retrieved after
// exhausting all retry attempts. It wraps the last underlying error.
var ErrFetchFailed = errors.New("feed fetch failed")

// Fetcher retrieves feed documents. It includes circuit breaker and retry
// logic for improved reliability.
type Fetcher struct {
	client  *http.Client
	config  Config
	breaker *circuitbreaker.CircuitBreaker
}

// New creates a Fetcher with the given configuration. A nil client gets a
// default client bound to the configured timeout.
func New(client *http.Client, cfg Config) *Fetcher {
	cfg = cfg.withDefaults()
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Fetcher{
		client:  client,
		config:  cfg,
		breaker: circuitbreaker.New(circuitbreaker.FeedFetchConfig()),
	}
}

// Fetch retrieves the document at the given URL and returns its raw bytes.
// Retryable failures are retried up to MaxAttempts total attempts; the final
// error wraps ErrFetchFailed together with the last underlying cause.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	var body []byte

	retryErr := retry.WithBackoff(ctx, f.config.Backoff, func() error {
		result, err := f.breaker.Execute(func() (interface{}, error) {
			return f.doFetch(ctx, url)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("feed fetch circuit breaker open, request rejected",
					slog.String("url", url),
					slog.String("state", f.breaker.State().String()))
			}
			return err
		}
		body = result.([]byte)
		return nil
	})

	if retryErr != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, errors.Join(ErrFetchFailed, retryErr))
	}
	return body, nil
}

// Probe checks whether a URL answers at all. It is used as an optional
// reachability check at registration time and never retries: a slow or
// temporarily broken feed simply reports unreachable.
func (f *Fetcher) Probe(ctx context.Context, url string) bool {
	ctx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	if ok := f.probeOnce(ctx, http.MethodHead, url); ok {
		return true
	}
	// Some feed servers reject HEAD; fall back to GET before giving up.
	return f.probeOnce(ctx, http.MethodGet, url)
}

func (f *Fetcher) probeOnce(ctx context.Context, method, url string) bool {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", f.config.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return false
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
		_ = resp.Body.Close()
	}()

	return resp.StatusCode < http.StatusBadRequest
}

// doFetch performs one HTTP GET without retry or circuit breaker.
func (f *Fetcher) doFetch(ctx context.Context, url string) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &retry.HTTPError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	slog.Debug("feed document retrieved",
		slog.String("url", url),
		slog.Int("bytes", len(body)),
		slog.Duration("duration", time.Since(start)))

	return body, nil
}
