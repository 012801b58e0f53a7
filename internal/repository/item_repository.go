package repository

import (
	"context"

	"feed-collector/internal/domain/entity"
)

// ItemRepository persists per-feed item archives. Archives are append-only:
// items are never mutated or removed individually, only dropped wholesale
// when their feed is removed.
type ItemRepository interface {
	// List returns every archived item for the feed, oldest first.
	// An unknown feed id yields an empty slice, not an error.
	List(ctx context.Context, feedID string) ([]entity.Item, error)
	// Count returns the number of archived items for the feed.
	Count(ctx context.Context, feedID string) (int, error)
	// MergeNew appends the subset of fetched items not already archived,
	// comparing by link, and returns that subset in fetched order. The
	// diff and append happen inside one lock acquisition so concurrent
	// fetch cycles can never double-insert a link.
	MergeNew(ctx context.Context, feedID string, fetched []entity.Item) ([]entity.Item, error)
	// RemoveArchive deletes the feed's entire archive. Removing an archive
	// that never existed is not an error.
	RemoveArchive(ctx context.Context, feedID string) error
}
