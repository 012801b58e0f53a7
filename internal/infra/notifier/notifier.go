// Package notifier provides abstraction for announcing newly archived items.
// It defines the Notifier interface which allows different notification
// mechanisms (Slack, Discord, etc.) to be used interchangeably through
// dependency injection, plus a no-op notifier for when notifications are
// disabled.
//
// Each fetch cycle produces at most one notification per feed: a digest of
// the items that cycle added to the archive.
package notifier

import (
	"context"

	"feed-collector/internal/domain/entity"
)

// Notifier is an interface for announcing new items.
// Implementations handle rate limiting, retries, and error logging
// internally and must respect context cancellation.
type Notifier interface {
	// NotifyNewItems sends one digest notification for the items a fetch
	// cycle newly archived for the feed. It is never called with an empty
	// item slice. Returns a non-nil error only after all retry attempts
	// are exhausted.
	NotifyNewItems(ctx context.Context, feed *entity.Feed, items []entity.Item) error
}
