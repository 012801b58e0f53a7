// The worker binary runs one full fetch cycle over every enabled feed.
// It wires configuration, storage, retrieval, parsing, and notification
// together, optionally serving Prometheus metrics while the cycle runs.
// Per-feed failures are reported in the batch summary; the process exits
// non-zero only when wiring itself fails.
package main

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"feed-collector/internal/config"
	"feed-collector/internal/domain/entity"
	"feed-collector/internal/infra/adapter/persistence/filestore"
	"feed-collector/internal/infra/fetcher"
	"feed-collector/internal/infra/notifier"
	"feed-collector/internal/infra/scraper"
	"feed-collector/internal/observability/logging"
	fetchUC "feed-collector/internal/usecase/fetch"
)

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("collector configuration loaded",
		slog.String("data_dir", cfg.DataDir),
		slog.Duration("fetch_timeout", cfg.FetchTimeout),
		slog.Int("max_retries", cfg.MaxRetries),
		slog.Int("max_concurrency", cfg.MaxConcurrency),
		slog.Bool("metrics_enabled", cfg.MetricsEnabled))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.MetricsEnabled {
		startMetricsServer(ctx, logger, cfg.MetricsPort)
	}

	svc := buildFetchService(logger, cfg)

	outcomes, err := svc.FetchAll(ctx, cfg.Category, cfg.MaxConcurrency)
	if err != nil {
		logger.Error("fetch cycle could not start", slog.Any("error", err))
		os.Exit(1)
	}

	svc.WaitNotifications()

	stats := fetchUC.Summarize(outcomes)
	for _, o := range outcomes {
		if !o.Success {
			logger.Warn("feed failed this cycle",
				slog.String("feed_id", o.FeedID),
				slog.String("feed_title", o.FeedTitle),
				slog.String("error", o.Error))
		}
	}
	logger.Info("fetch cycle finished",
		slog.Int("feeds", stats.Feeds),
		slog.Int("succeeded", stats.Succeeded),
		slog.Int("failed", stats.Failed),
		slog.Int("new_items", stats.NewItems))
}

// buildFetchService wires the storage, retrieval, and parsing layers
// into a fetch orchestrator.
func buildFetchService(logger *slog.Logger, cfg config.CollectorConfig) *fetchUC.Service {
	store := filestore.New(cfg.DataDir, cfg.LockTimeout)
	feedRepo := filestore.NewFeedRepository(store)
	itemRepo := filestore.NewItemRepository(store)

	feedFetcher := fetcher.New(newHTTPClient(cfg.FetchTimeout), fetcher.Config{
		Timeout:     cfg.FetchTimeout,
		MaxAttempts: cfg.MaxRetries,
		UserAgent:   cfg.UserAgent,
	})

	return &fetchUC.Service{
		Feeds:     feedRepo,
		Items:     itemRepo,
		Retriever: feedFetcher,
		Parser:    scraper.NewParser(),
		Notifier:  buildNotifier(logger, cfg),
		Logger:    logger,
	}
}

// buildNotifier assembles the notification fan-out from configuration.
// Invalid webhook URLs disable the affected channel with a warning; with
// no channels configured a no-op notifier is returned.
func buildNotifier(logger *slog.Logger, cfg config.CollectorConfig) fetchUC.Notifier {
	var notifiers []fetchUC.Notifier

	if cfg.SlackWebhookURL != "" {
		if validWebhookURL(logger, "slack", cfg.SlackWebhookURL, "hooks.slack.com", "/services/") {
			notifiers = append(notifiers, notifier.NewSlackNotifier(notifier.SlackConfig{
				Enabled:    true,
				WebhookURL: cfg.SlackWebhookURL,
				Timeout:    cfg.NotifyTimeout,
			}))
			logger.Info("Slack notifications enabled")
		}
	}

	if cfg.DiscordWebhookURL != "" {
		if validWebhookURL(logger, "discord", cfg.DiscordWebhookURL, "discord.com", "/api/webhooks/") {
			notifiers = append(notifiers, notifier.NewDiscordNotifier(notifier.DiscordConfig{
				Enabled:    true,
				WebhookURL: cfg.DiscordWebhookURL,
				Timeout:    cfg.NotifyTimeout,
			}))
			logger.Info("Discord notifications enabled")
		}
	}

	switch len(notifiers) {
	case 0:
		return notifier.NewNoopNotifier()
	case 1:
		return notifiers[0]
	default:
		return fanoutNotifier(notifiers)
	}
}

// fanoutNotifier dispatches each digest to every configured channel.
// Channel failures are joined so one broken webhook never silences the rest.
type fanoutNotifier []fetchUC.Notifier

func (f fanoutNotifier) NotifyNewItems(ctx context.Context, feed *entity.Feed, items []entity.Item) error {
	var errs []error
	for _, n := range f {
		if err := n.NotifyNewItems(ctx, feed, items); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// validWebhookURL checks that a webhook URL is HTTPS on the expected
// host and path prefix. Anything else disables the channel.
func validWebhookURL(logger *slog.Logger, channel, webhookURL, wantHost, wantPathPrefix string) bool {
	u, err := url.Parse(webhookURL)
	if err != nil {
		logger.Warn("invalid webhook URL, disabling channel",
			slog.String("channel", channel), slog.Any("error", err))
		return false
	}
	if u.Scheme != "https" {
		logger.Warn("webhook URL must use HTTPS, disabling channel",
			slog.String("channel", channel))
		return false
	}
	if u.Host != wantHost {
		logger.Warn("unexpected webhook host, disabling channel",
			slog.String("channel", channel), slog.String("host", u.Host))
		return false
	}
	if !strings.HasPrefix(u.Path, wantPathPrefix) {
		logger.Warn("unexpected webhook path, disabling channel",
			slog.String("channel", channel), slog.String("path", u.Path))
		return false
	}
	return true
}

// newHTTPClient creates the outbound HTTP client for feed retrieval.
// TLS 1.2+ is enforced.
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
}
