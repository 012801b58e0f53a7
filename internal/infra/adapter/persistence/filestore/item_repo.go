package filestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"feed-collector/internal/diff"
	"feed-collector/internal/domain/entity"
	"feed-collector/internal/repository"
)

// ItemRepo implements repository.ItemRepository on top of per-feed archive
// documents. Archives are append-only; the link-based dedup invariant is
// enforced inside the archive lock.
type ItemRepo struct {
	store *Store
}

// NewItemRepository creates an item repository backed by the given store.
func NewItemRepository(store *Store) *ItemRepo {
	return &ItemRepo{store: store}
}

var _ repository.ItemRepository = (*ItemRepo)(nil)

// List returns every archived item for the feed, oldest first.
func (r *ItemRepo) List(ctx context.Context, feedID string) ([]entity.Item, error) {
	var out []entity.Item
	err := r.store.updateArchive(ctx, feedID, func(doc *archiveDocument) (bool, error) {
		out = make([]entity.Item, len(doc.Items))
		copy(out, doc.Items)
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the number of archived items for the feed.
func (r *ItemRepo) Count(ctx context.Context, feedID string) (int, error) {
	n := 0
	err := r.store.updateArchive(ctx, feedID, func(doc *archiveDocument) (bool, error) {
		n = len(doc.Items)
		return false, nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// MergeNew appends the genuinely new items from fetched to the archive and
// returns them. Load, diff, and append run in one critical section under the
// feed's archive lock, so a crash or a concurrent fetch can never produce two
// archived items with the same link.
func (r *ItemRepo) MergeNew(ctx context.Context, feedID string, fetched []entity.Item) ([]entity.Item, error) {
	var fresh []entity.Item
	err := r.store.updateArchive(ctx, feedID, func(doc *archiveDocument) (bool, error) {
		fresh = diff.DetectNew(doc.Items, fetched)
		if len(fresh) == 0 {
			return false, nil
		}
		doc.Items = append(doc.Items, fresh...)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return fresh, nil
}

// RemoveArchive deletes the feed's archive directory, lock file included.
// The archive lock is held while the document is unlinked so an in-flight
// merge cannot resurrect it mid-removal.
func (r *ItemRepo) RemoveArchive(ctx context.Context, feedID string) error {
	path := r.store.archivePath(feedID)
	err := r.store.withLock(ctx, "archive", path+lockSuffix, func() error {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove archive %s: %w", feedID, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// The directory now only holds the lock file.
	if err := os.RemoveAll(filepath.Dir(path)); err != nil {
		return fmt.Errorf("remove archive directory %s: %w", feedID, err)
	}
	return nil
}
