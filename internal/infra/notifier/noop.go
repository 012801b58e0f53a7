package notifier

import (
	"context"

	"feed-collector/internal/domain/entity"
)

// NoopNotifier is a Notifier that does nothing.
// It is used when notifications are disabled so callers never need a
// nil check before dispatching.
type NoopNotifier struct{}

// NewNoopNotifier creates a new NoopNotifier.
func NewNoopNotifier() *NoopNotifier {
	return &NoopNotifier{}
}

// NotifyNewItems discards the notification and always succeeds.
func (n *NoopNotifier) NotifyNewItems(_ context.Context, _ *entity.Feed, _ []entity.Item) error {
	return nil
}
