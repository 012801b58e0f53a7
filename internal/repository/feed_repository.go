// Package repository defines the persistence interfaces the use cases depend on.
// Implementations own the backing storage exclusively; no other component
// touches the persisted files directly.
package repository

import (
	"context"
	"time"

	"feed-collector/internal/domain/entity"
)

// ListFilter narrows the feeds returned by List.
// A zero filter matches every feed.
type ListFilter struct {
	// Category restricts results to feeds with this category label ("" = any)
	Category string
	// EnabledOnly restricts results to feeds whose enabled flag is set
	EnabledOnly bool
}

// FeedRepository persists the feed registry. Every method is a complete
// read-modify-write cycle against the shared registry under its own lock;
// nothing is cached between calls.
type FeedRepository interface {
	// Get returns the feed with the given id, or (nil, nil) if absent.
	Get(ctx context.Context, id string) (*entity.Feed, error)
	// List returns feeds matching the filter, in registration order.
	List(ctx context.Context, filter ListFilter) ([]*entity.Feed, error)
	// Create appends a new feed. Returns entity.ErrDuplicateURL if another
	// feed with the same URL already exists.
	Create(ctx context.Context, feed *entity.Feed) error
	// Update replaces the stored record matching feed.ID.
	// Returns entity.ErrNotFound if the id is unknown.
	Update(ctx context.Context, feed *entity.Feed) error
	// Delete removes the feed record. Returns entity.ErrNotFound if absent.
	Delete(ctx context.Context, id string) error
	// TouchFetched records the timestamp and outcome of a fetch attempt.
	TouchFetched(ctx context.Context, id string, t time.Time, status entity.FetchStatus) error
}
