package filestore

import (
	"context"
	"fmt"
	"time"

	"feed-collector/internal/domain/entity"
	"feed-collector/internal/observability/metrics"
	"feed-collector/internal/repository"
)

// FeedRepo implements repository.FeedRepository on top of the locked registry
// document. Every call re-reads the registry from disk under the registry lock.
type FeedRepo struct {
	store *Store
}

// NewFeedRepository creates a feed repository backed by the given store.
func NewFeedRepository(store *Store) *FeedRepo {
	return &FeedRepo{store: store}
}

var _ repository.FeedRepository = (*FeedRepo)(nil)

// Get returns the feed with the given id, or (nil, nil) if it is not registered.
func (r *FeedRepo) Get(ctx context.Context, id string) (*entity.Feed, error) {
	var found *entity.Feed
	err := r.store.updateRegistry(ctx, func(doc *registryDocument) (bool, error) {
		if i := doc.findFeed(id); i >= 0 {
			f := doc.Feeds[i]
			found = &f
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// List returns feeds matching the filter in registration order.
func (r *FeedRepo) List(ctx context.Context, filter repository.ListFilter) ([]*entity.Feed, error) {
	var out []*entity.Feed
	err := r.store.updateRegistry(ctx, func(doc *registryDocument) (bool, error) {
		out = make([]*entity.Feed, 0, len(doc.Feeds))
		for i := range doc.Feeds {
			f := doc.Feeds[i]
			if filter.Category != "" && f.Category != filter.Category {
				continue
			}
			if filter.EnabledOnly && !f.Enabled {
				continue
			}
			out = append(out, &f)
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Create appends the feed to the registry. The duplicate-URL check happens
// inside the registry lock so two concurrent registrations of the same URL
// cannot both succeed.
func (r *FeedRepo) Create(ctx context.Context, feed *entity.Feed) error {
	return r.store.updateRegistry(ctx, func(doc *registryDocument) (bool, error) {
		for i := range doc.Feeds {
			if doc.Feeds[i].URL == feed.URL {
				return false, fmt.Errorf("create feed: %w", entity.ErrDuplicateURL)
			}
		}
		doc.Feeds = append(doc.Feeds, *feed)
		metrics.UpdateFeedsTotal(len(doc.Feeds))
		return true, nil
	})
}

// Update replaces the stored record matching feed.ID. The URL-uniqueness
// invariant is re-checked here because updates may change the URL.
func (r *FeedRepo) Update(ctx context.Context, feed *entity.Feed) error {
	return r.store.updateRegistry(ctx, func(doc *registryDocument) (bool, error) {
		i := doc.findFeed(feed.ID)
		if i < 0 {
			return false, fmt.Errorf("update feed %s: %w", feed.ID, entity.ErrNotFound)
		}
		for j := range doc.Feeds {
			if j != i && doc.Feeds[j].URL == feed.URL {
				return false, fmt.Errorf("update feed %s: %w", feed.ID, entity.ErrDuplicateURL)
			}
		}
		doc.Feeds[i] = *feed
		return true, nil
	})
}

// Delete removes the feed record from the registry.
func (r *FeedRepo) Delete(ctx context.Context, id string) error {
	return r.store.updateRegistry(ctx, func(doc *registryDocument) (bool, error) {
		i := doc.findFeed(id)
		if i < 0 {
			return false, fmt.Errorf("delete feed %s: %w", id, entity.ErrNotFound)
		}
		doc.Feeds = append(doc.Feeds[:i], doc.Feeds[i+1:]...)
		metrics.UpdateFeedsTotal(len(doc.Feeds))
		return true, nil
	})
}

// TouchFetched records the timestamp and outcome of a fetch attempt.
func (r *FeedRepo) TouchFetched(ctx context.Context, id string, t time.Time, status entity.FetchStatus) error {
	return r.store.updateRegistry(ctx, func(doc *registryDocument) (bool, error) {
		i := doc.findFeed(id)
		if i < 0 {
			return false, fmt.Errorf("touch feed %s: %w", id, entity.ErrNotFound)
		}
		doc.Feeds[i].LastFetchedAt = &t
		doc.Feeds[i].LastFetchStatus = status
		doc.Feeds[i].UpdatedAt = t
		return true, nil
	})
}
