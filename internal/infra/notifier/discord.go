package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"feed-collector/internal/domain/entity"
)

// DiscordConfig contains configuration for Discord webhook notifications.
type DiscordConfig struct {
	// Enabled indicates whether Discord notifications are enabled
	Enabled bool

	// WebhookURL is the Discord webhook URL (includes authentication token)
	WebhookURL string

	// Timeout is the HTTP request timeout for Discord API calls
	Timeout time.Duration

	// RetryDelay is the base delay between retry attempts (default 5s)
	RetryDelay time.Duration
}

// DiscordNotifier sends new-item digests to Discord via webhook.
// The rate limiter is fixed at 0.5 requests per second with a burst of 3
// to stay under the Discord webhook limit of 30 requests per minute.
type DiscordNotifier struct {
	config      DiscordConfig
	httpClient  *http.Client
	rateLimiter *RateLimiter
}

// NewDiscordNotifier creates a new DiscordNotifier with the specified configuration.
func NewDiscordNotifier(config DiscordConfig) *DiscordNotifier {
	if config.RetryDelay <= 0 {
		config.RetryDelay = 5 * time.Second
	}
	return &DiscordNotifier{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		rateLimiter: NewRateLimiter(0.5, 3),
	}
}

// DiscordWebhookPayload represents the JSON payload sent to Discord webhook.
type DiscordWebhookPayload struct {
	Embeds []DiscordEmbed `json:"embeds"`
}

// DiscordEmbed represents a Discord embed message.
type DiscordEmbed struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	URL         string             `json:"url"`
	Color       int                `json:"color"`
	Footer      DiscordEmbedFooter `json:"footer"`
	Timestamp   string             `json:"timestamp"`
}

// DiscordEmbedFooter represents the footer of a Discord embed.
type DiscordEmbedFooter struct {
	Text string `json:"text"`
}

const (
	// Discord embed limits
	maxTitleLength       = 256
	maxDescriptionLength = 4096
	truncationSuffix     = "..."

	// Discord blue color (#5865F2)
	discordBlueColor = 5793266
)

// buildEmbedPayload creates a Discord webhook payload summarizing the
// items a fetch cycle newly archived for the feed. The embed links back
// to the feed URL; item links are listed in the description.
func (d *DiscordNotifier) buildEmbedPayload(feed *entity.Feed, items []entity.Item) DiscordWebhookPayload {
	title := fmt.Sprintf("%s: %d new item(s)", feed.Title, len(items))
	if len(title) > maxTitleLength {
		title = title[:maxTitleLength]
	}

	var lines []string
	for i, item := range items {
		if i == maxListedItems {
			lines = append(lines, fmt.Sprintf("*+%d more*", len(items)-maxListedItems))
			break
		}
		lines = append(lines, fmt.Sprintf("• [%s](%s)", item.Title, item.Link))
	}
	description := truncate(strings.Join(lines, "\n"), maxDescriptionLength, truncationSuffix)

	footerText := feed.Title
	if feed.Category != "" {
		footerText += " • " + feed.Category
	}

	embed := DiscordEmbed{
		Title:       title,
		Description: description,
		URL:         feed.URL,
		Color:       discordBlueColor,
		Footer: DiscordEmbedFooter{
			Text: footerText,
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	return DiscordWebhookPayload{Embeds: []DiscordEmbed{embed}}
}

// sendWebhookRequest sends one Discord webhook request.
// Error classification mirrors the Slack notifier: 429 becomes a
// RateLimitError, other 4xx a ClientError, 5xx a ServerError.
func (d *DiscordNotifier) sendWebhookRequest(ctx context.Context, feed *entity.Feed, items []entity.Item) error {
	payload := d.buildEmbedPayload(feed, items)

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.config.WebhookURL, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return &RateLimitError{
			Message:    "Discord rate limit exceeded",
			RetryAfter: extractRetryAfter(resp, body),
		}
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return &ClientError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Discord API client error: %s", string(body)),
		}
	}

	if resp.StatusCode >= 500 {
		return &ServerError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Discord API server error: %s", string(body)),
		}
	}

	return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
}

// sendWebhookRequestWithRetry sends a Discord webhook request with retry
// logic matching the Slack notifier: 2 attempts, 429 honors retry_after,
// 5xx backs off on RetryDelay, other 4xx fail immediately.
func (d *DiscordNotifier) sendWebhookRequestWithRetry(ctx context.Context, feed *entity.Feed, items []entity.Item) error {
	const maxAttempts = 2

	requestID, _ := ctx.Value(requestIDKey).(string)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := d.sendWebhookRequest(ctx, feed, items)
		if err == nil {
			slog.Info("Discord notification successful",
				slog.String("request_id", requestID),
				slog.String("feed_id", feed.ID),
				slog.Int("new_items", len(items)),
				slog.Int("attempt", attempt))
			return nil
		}

		lastErr = err

		if rateLimitErr, ok := is429Error(err); ok {
			slog.Warn("Discord rate limit hit, backing off",
				slog.String("request_id", requestID),
				slog.String("feed_id", feed.ID),
				slog.Duration("retry_after", rateLimitErr.RetryAfter),
				slog.Int("attempt", attempt))

			select {
			case <-time.After(rateLimitErr.RetryAfter):
				continue
			case <-ctx.Done():
				return fmt.Errorf("context canceled during rate limit backoff: %w", ctx.Err())
			}
		}

		if !isRetryableError(err) {
			slog.Error("Discord notification failed with non-retryable error",
				slog.String("request_id", requestID),
				slog.String("feed_id", feed.ID),
				slog.Any("error", err),
				slog.Int("attempt", attempt))
			return err
		}

		if attempt < maxAttempts {
			delay := d.config.RetryDelay * time.Duration(attempt)
			slog.Warn("Discord API request failed, retrying",
				slog.String("request_id", requestID),
				slog.String("feed_id", feed.ID),
				slog.Any("error", err),
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay))

			select {
			case <-time.After(delay):
				continue
			case <-ctx.Done():
				return fmt.Errorf("context canceled during retry backoff: %w", ctx.Err())
			}
		}
	}

	slog.Error("Discord notification failed after all retries",
		slog.String("request_id", requestID),
		slog.String("feed_id", feed.ID),
		slog.Any("error", lastErr),
		slog.Int("max_attempts", maxAttempts))

	return fmt.Errorf("discord notification failed after %d attempts: %w", maxAttempts, lastErr)
}

// NotifyNewItems sends a Discord digest for the feed's newly archived items.
// This method implements the Notifier interface.
func (d *DiscordNotifier) NotifyNewItems(ctx context.Context, feed *entity.Feed, items []entity.Item) error {
	requestID := uuid.New().String()
	ctx = context.WithValue(ctx, requestIDKey, requestID)

	slog.Info("Starting Discord notification",
		slog.String("request_id", requestID),
		slog.String("feed_id", feed.ID),
		slog.Int("new_items", len(items)))

	if err := d.rateLimiter.Allow(ctx); err != nil {
		slog.Error("Rate limiter error",
			slog.String("request_id", requestID),
			slog.String("feed_id", feed.ID),
			slog.Any("error", err))
		return fmt.Errorf("rate limiter error: %w", err)
	}

	return d.sendWebhookRequestWithRetry(ctx, feed, items)
}
