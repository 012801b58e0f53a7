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

// SlackConfig contains configuration for Slack webhook notifications.
type SlackConfig struct {
	// Enabled indicates whether Slack notifications are enabled
	Enabled bool

	// WebhookURL is the Slack Incoming Webhook URL (includes authentication token)
	WebhookURL string

	// Timeout is the HTTP request timeout for Slack API calls
	Timeout time.Duration

	// RetryDelay is the base delay between retry attempts (default 5s)
	RetryDelay time.Duration
}

// SlackNotifier sends new-item digests to Slack via Incoming Webhook.
// The rate limiter is fixed at 1 request per second to match the Slack
// webhook limit of 1 message per second.
type SlackNotifier struct {
	config      SlackConfig
	httpClient  *http.Client
	rateLimiter *RateLimiter
}

// NewSlackNotifier creates a new SlackNotifier with the specified configuration.
func NewSlackNotifier(config SlackConfig) *SlackNotifier {
	if config.RetryDelay <= 0 {
		config.RetryDelay = 5 * time.Second
	}
	return &SlackNotifier{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		rateLimiter: NewRateLimiter(1.0, 1),
	}
}

// SlackWebhookPayload represents the JSON payload sent to Slack webhook using Block Kit.
type SlackWebhookPayload struct {
	Text   string       `json:"text"`   // Fallback text (required)
	Blocks []SlackBlock `json:"blocks"` // Rich formatting blocks
}

// SlackBlock represents a Slack Block Kit block.
type SlackBlock struct {
	Type     string            `json:"type"`
	Text     *SlackTextObject  `json:"text,omitempty"`
	Elements []SlackTextObject `json:"elements,omitempty"`
}

// SlackTextObject represents a text object in Slack Block Kit.
type SlackTextObject struct {
	Type string `json:"type"` // "mrkdwn" or "plain_text"
	Text string `json:"text"`
}

const (
	// Slack Block Kit limits
	maxSectionTextLength = 3000
	maxContextTextLength = 2000
	maxFallbackLength    = 150

	// Digest messages list at most this many items; the rest collapse
	// into a single "+N more" line.
	maxListedItems = 10

	slackTruncationSuffix = "..."
)

// buildDigestPayload creates a Slack webhook payload summarizing the
// items a fetch cycle newly archived for the feed.
//
// The payload includes:
//   - Text: fallback text (feed title + new item count)
//   - Section block: linked item titles, at most maxListedItems lines
//   - Context block: feed title, category, and dispatch timestamp
func (s *SlackNotifier) buildDigestPayload(feed *entity.Feed, items []entity.Item) SlackWebhookPayload {
	fallbackText := fmt.Sprintf("%s: %d new item(s)", feed.Title, len(items))
	if len(fallbackText) > maxFallbackLength {
		fallbackText = truncate(fallbackText, maxFallbackLength, slackTruncationSuffix)
	}

	var lines []string
	for i, item := range items {
		if i == maxListedItems {
			lines = append(lines, fmt.Sprintf("_+%d more_", len(items)-maxListedItems))
			break
		}
		lines = append(lines, fmt.Sprintf("• <%s|%s>", item.Link, item.Title))
	}
	sectionText := truncate(strings.Join(lines, "\n"), maxSectionTextLength, slackTruncationSuffix)

	contextText := feed.Title
	if feed.Category != "" {
		contextText += " • " + feed.Category
	}
	contextText += " • " + time.Now().UTC().Format(time.RFC3339)
	contextText = truncate(contextText, maxContextTextLength, slackTruncationSuffix)

	return SlackWebhookPayload{
		Text: fallbackText,
		Blocks: []SlackBlock{
			{
				Type: "section",
				Text: &SlackTextObject{Type: "mrkdwn", Text: sectionText},
			},
			{
				Type: "context",
				Elements: []SlackTextObject{
					{Type: "mrkdwn", Text: contextText},
				},
			},
		},
	}
}

// sendWebhookRequest sends one Slack webhook request.
//
// Error types:
//   - 429: RateLimitError (retryable, carries the retry_after duration)
//   - 4xx (non-429): ClientError (non-retryable)
//   - 5xx: ServerError (retryable)
//   - network errors: retryable
func (s *SlackNotifier) sendWebhookRequest(ctx context.Context, feed *entity.Feed, items []entity.Item) error {
	payload := s.buildDigestPayload(feed, items)

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.WebhookURL, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
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
			Message:    "Slack rate limit exceeded",
			RetryAfter: extractRetryAfter(resp, body),
		}
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return &ClientError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Slack API client error: %s", string(body)),
		}
	}

	if resp.StatusCode >= 500 {
		return &ServerError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Slack API server error: %s", string(body)),
		}
	}

	return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
}

// sendWebhookRequestWithRetry sends a Slack webhook request with retry logic.
//
// Retry strategy:
//   - Max attempts: 2
//   - 429 errors: wait for retry_after from the Slack response
//   - Server errors (5xx): linear backoff on RetryDelay
//   - Client errors (4xx): no retry, fail immediately
//
// All attempts are logged with request_id for tracing.
func (s *SlackNotifier) sendWebhookRequestWithRetry(ctx context.Context, feed *entity.Feed, items []entity.Item) error {
	const maxAttempts = 2

	requestID, _ := ctx.Value(requestIDKey).(string)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := s.sendWebhookRequest(ctx, feed, items)
		if err == nil {
			slog.Info("Slack notification successful",
				slog.String("request_id", requestID),
				slog.String("feed_id", feed.ID),
				slog.Int("new_items", len(items)),
				slog.Int("attempt", attempt))
			return nil
		}

		lastErr = err

		if rateLimitErr, ok := is429Error(err); ok {
			slog.Warn("Slack rate limit hit, backing off",
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
			slog.Error("Slack notification failed with non-retryable error",
				slog.String("request_id", requestID),
				slog.String("feed_id", feed.ID),
				slog.Any("error", err),
				slog.Int("attempt", attempt))
			return err
		}

		if attempt < maxAttempts {
			delay := s.config.RetryDelay * time.Duration(attempt)
			slog.Warn("Slack API request failed, retrying",
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

	slog.Error("Slack notification failed after all retries",
		slog.String("request_id", requestID),
		slog.String("feed_id", feed.ID),
		slog.Any("error", lastErr),
		slog.Int("max_attempts", maxAttempts))

	return fmt.Errorf("slack notification failed after %d attempts: %w", maxAttempts, lastErr)
}

// NotifyNewItems sends a Slack digest for the feed's newly archived items.
// This method implements the Notifier interface.
//
// It generates a request_id for tracing, applies rate limiting, then
// sends the webhook request with retry logic.
func (s *SlackNotifier) NotifyNewItems(ctx context.Context, feed *entity.Feed, items []entity.Item) error {
	requestID := uuid.New().String()
	ctx = context.WithValue(ctx, requestIDKey, requestID)

	slog.Info("Starting Slack notification",
		slog.String("request_id", requestID),
		slog.String("feed_id", feed.ID),
		slog.Int("new_items", len(items)))

	if err := s.rateLimiter.Allow(ctx); err != nil {
		slog.Error("Rate limiter error",
			slog.String("request_id", requestID),
			slog.String("feed_id", feed.ID),
			slog.Any("error", err))
		return fmt.Errorf("rate limiter error: %w", err)
	}

	return s.sendWebhookRequestWithRetry(ctx, feed, items)
}
