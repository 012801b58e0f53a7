// Package fetch orchestrates fetch cycles across registered feeds.
// It drives the retrieve, parse, merge, and status-update pipeline for a
// single feed and fans out over the whole registry with bounded parallelism.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"feed-collector/internal/domain/entity"
	"feed-collector/internal/observability/logging"
	"feed-collector/internal/observability/metrics"
	"feed-collector/internal/repository"
)

// Concurrency bounds for batch fetch cycles.
const (
	DefaultMaxConcurrency = 5
	MaxConcurrencyCap     = 10
)

// Retriever fetches the raw bytes of a feed document over the network.
type Retriever interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FeedParser extracts items from a raw feed document.
type FeedParser interface {
	Parse(data []byte) ([]entity.Item, error)
}

// Notifier is told about newly archived items after a successful fetch.
// It is optional; when nil, no notifications are dispatched.
type Notifier interface {
	NotifyNewItems(ctx context.Context, feed *entity.Feed, items []entity.Item) error
}

// Outcome describes the result of one fetch cycle for one feed.
// A failed cycle carries the error message; the zero counts are meaningful
// only when Success is true.
type Outcome struct {
	FeedID     string        `json:"feed_id"`
	FeedTitle  string        `json:"feed_title"`
	Success    bool          `json:"success"`
	TotalItems int           `json:"total_items"`
	NewItems   int           `json:"new_items"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// BatchStats aggregates the outcomes of one batch fetch cycle.
type BatchStats struct {
	Feeds      int
	Succeeded  int
	Failed     int
	TotalItems int
	NewItems   int
	Duration   time.Duration
}

// Service provides feed fetch orchestration use cases.
// It coordinates the retriever, parser, and repositories for each cycle
// and records per-feed outcomes without letting one feed's failure
// disturb the rest of a batch.
type Service struct {
	Feeds     repository.FeedRepository
	Items     repository.ItemRepository
	Retriever Retriever
	Parser    FeedParser
	Notifier  Notifier
	Logger    *slog.Logger

	notifyWG sync.WaitGroup
}

// FetchOne runs a full fetch cycle for a single feed.
// The returned error is non-nil only when the feed cannot be looked up;
// pipeline failures are reported through the Outcome.
func (s *Service) FetchOne(ctx context.Context, feedID string) (Outcome, error) {
	feed, err := s.Feeds.Get(ctx, feedID)
	if err != nil {
		return Outcome{}, fmt.Errorf("get feed %s: %w", feedID, err)
	}
	if feed == nil {
		return Outcome{}, fmt.Errorf("fetch feed %s: %w", feedID, entity.ErrNotFound)
	}
	return s.fetchFeed(ctx, feed), nil
}

// FetchAll runs fetch cycles for every enabled feed, optionally narrowed
// to one category, with at most maxConcurrency cycles in flight.
// Values outside [1, MaxConcurrencyCap] fall back to the default or cap.
// Every feed yields exactly one Outcome; a failing feed never aborts the
// batch. The error is non-nil only when the registry cannot be listed.
func (s *Service) FetchAll(ctx context.Context, category string, maxConcurrency int) ([]Outcome, error) {
	start := time.Now()

	feeds, err := s.Feeds.List(ctx, repository.ListFilter{Category: category, EnabledOnly: true})
	if err != nil {
		return nil, fmt.Errorf("list feeds: %w", err)
	}

	limit := clampConcurrency(maxConcurrency)
	outcomes := make([]Outcome, len(feeds))

	var eg errgroup.Group
	eg.SetLimit(limit)
	for i, feed := range feeds {
		i, feed := i, feed
		eg.Go(func() error {
			outcomes[i] = s.fetchFeed(ctx, feed)
			return nil
		})
	}
	// Workers never return errors; outcomes carry per-feed failures.
	_ = eg.Wait()

	stats := Summarize(outcomes)
	stats.Duration = time.Since(start)
	s.logger().Info("batch fetch completed",
		slog.Int("feeds", stats.Feeds),
		slog.Int("succeeded", stats.Succeeded),
		slog.Int("failed", stats.Failed),
		slog.Int("total_items", stats.TotalItems),
		slog.Int("new_items", stats.NewItems),
		slog.Duration("duration", stats.Duration),
	)

	return outcomes, nil
}

// WaitNotifications blocks until all in-flight notification dispatches
// finish. One-shot workers call it before exiting so digests are not lost.
func (s *Service) WaitNotifications() {
	s.notifyWG.Wait()
}

// Summarize aggregates a slice of outcomes into batch-level statistics.
// Duration is left zero; callers that track wall time set it themselves.
func Summarize(outcomes []Outcome) BatchStats {
	stats := BatchStats{Feeds: len(outcomes)}
	for _, o := range outcomes {
		if o.Success {
			stats.Succeeded++
			stats.TotalItems += o.TotalItems
			stats.NewItems += o.NewItems
		} else {
			stats.Failed++
		}
	}
	return stats
}

// fetchFeed runs the retrieve, parse, merge, status-update pipeline for
// one feed. It never returns an error; every failure is folded into the
// Outcome and recorded against the feed's last-fetch status.
func (s *Service) fetchFeed(ctx context.Context, feed *entity.Feed) Outcome {
	start := time.Now()
	logger := logging.WithFeed(s.logger(), feed.ID, feed.URL)

	body, err := s.Retriever.Fetch(ctx, feed.URL)
	if err != nil {
		return s.failOutcome(ctx, logger, feed, "retrieve", err, start)
	}

	items, err := s.Parser.Parse(body)
	if err != nil {
		return s.failOutcome(ctx, logger, feed, "parse", err, start)
	}

	fresh, err := s.Items.MergeNew(ctx, feed.ID, items)
	if err != nil {
		return s.failOutcome(ctx, logger, feed, "store", err, start)
	}

	// The merge already happened; a failed status update still fails the
	// cycle so operators see the inconsistency.
	safeCtx := context.WithoutCancel(ctx)
	if err := s.Feeds.TouchFetched(safeCtx, feed.ID, time.Now().UTC(), entity.FetchStatusSuccess); err != nil {
		return s.failOutcome(ctx, logger, feed, "status", err, start)
	}

	duration := time.Since(start)
	metrics.RecordFeedFetch(feed.ID, duration, len(items), len(fresh))
	logger.Info("feed fetch completed",
		slog.Int("total_items", len(items)),
		slog.Int("new_items", len(fresh)),
		slog.Duration("duration", duration),
	)

	if s.Notifier != nil && len(fresh) > 0 {
		// Notification failures never affect the outcome.
		s.notifyWG.Add(1)
		go func(feed entity.Feed, fresh []entity.Item) {
			defer s.notifyWG.Done()
			if err := s.Notifier.NotifyNewItems(safeCtx, &feed, fresh); err != nil {
				logger.Warn("failed to dispatch notification",
					slog.Int("new_items", len(fresh)),
					slog.Any("error", err))
			}
		}(*feed, fresh)
	}

	return Outcome{
		FeedID:     feed.ID,
		FeedTitle:  feed.Title,
		Success:    true,
		TotalItems: len(items),
		NewItems:   len(fresh),
		Duration:   duration,
	}
}

// failOutcome records a pipeline-stage failure and builds the outcome.
// The failure status update is best effort; the original error wins.
func (s *Service) failOutcome(ctx context.Context, logger *slog.Logger, feed *entity.Feed, stage string, err error, start time.Time) Outcome {
	metrics.RecordFeedFetchError(feed.ID, stage)
	logger.Warn("feed fetch failed",
		slog.String("stage", stage),
		slog.Any("error", err),
	)

	safeCtx := context.WithoutCancel(ctx)
	if touchErr := s.Feeds.TouchFetched(safeCtx, feed.ID, time.Now().UTC(), entity.FetchStatusFailure); touchErr != nil {
		logger.Warn("failed to record fetch failure status", slog.Any("error", touchErr))
	}

	return Outcome{
		FeedID:    feed.ID,
		FeedTitle: feed.Title,
		Error:     err.Error(),
		Duration:  time.Since(start),
	}
}

func clampConcurrency(n int) int {
	if n < 1 {
		return DefaultMaxConcurrency
	}
	if n > MaxConcurrencyCap {
		return MaxConcurrencyCap
	}
	return n
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
