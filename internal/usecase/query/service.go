// Package query provides read-only use cases over archived items.
// It joins items with their feed records, sorts by recency, and supports
// keyword search and pagination over the merged view.
package query

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"feed-collector/internal/common/pagination"
	"feed-collector/internal/domain/entity"
	"feed-collector/internal/repository"
)

// ItemWithFeed is an archived item annotated with its feed's identity.
type ItemWithFeed struct {
	entity.Item
	FeedID    string `json:"feed_id"`
	FeedTitle string `json:"feed_title"`
}

// RecentResult is one page of recent items plus pagination metadata.
type RecentResult struct {
	Data       []ItemWithFeed      `json:"data"`
	Pagination pagination.Metadata `json:"pagination"`
}

// SearchInput narrows a keyword search.
// All keywords must match (AND semantics); matching is case-insensitive
// against title, summary, and content.
type SearchInput struct {
	Keywords []string
	Category string
}

// Service provides item query use cases.
type Service struct {
	Feeds      repository.FeedRepository
	Items      repository.ItemRepository
	Pagination pagination.Config
}

// Recent returns archived items ordered newest first, paginated.
// When feedID is non-empty only that feed's archive is read; otherwise
// items from every registered feed are merged. An unknown feedID returns
// entity.ErrNotFound.
func (s *Service) Recent(ctx context.Context, feedID string, params pagination.Params) (*RecentResult, error) {
	merged, err := s.collect(ctx, feedID, "")
	if err != nil {
		return nil, err
	}
	sortByRecency(merged)

	cfg := s.config()
	params = params.Normalize(cfg)
	offset := pagination.CalculateOffset(params.Page, params.Limit)

	total := int64(len(merged))
	page := []ItemWithFeed{}
	if offset < len(merged) {
		end := offset + params.Limit
		if end > len(merged) {
			end = len(merged)
		}
		page = merged[offset:end]
	}

	return &RecentResult{
		Data: page,
		Pagination: pagination.Metadata{
			Total:      total,
			Page:       params.Page,
			Limit:      params.Limit,
			TotalPages: pagination.CalculateTotalPages(total, params.Limit),
		},
	}, nil
}

// Search returns archived items matching every keyword, newest first.
// An empty keyword list matches nothing.
func (s *Service) Search(ctx context.Context, in SearchInput) ([]ItemWithFeed, error) {
	keywords := make([]string, 0, len(in.Keywords))
	for _, kw := range in.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			keywords = append(keywords, kw)
		}
	}
	if len(keywords) == 0 {
		return []ItemWithFeed{}, nil
	}

	merged, err := s.collect(ctx, "", in.Category)
	if err != nil {
		return nil, err
	}

	matched := make([]ItemWithFeed, 0, len(merged))
	for _, it := range merged {
		if matchesAll(it.Item, keywords) {
			matched = append(matched, it)
		}
	}
	sortByRecency(matched)
	return matched, nil
}

// collect reads the archives of the selected feeds and annotates each
// item with its feed identity.
func (s *Service) collect(ctx context.Context, feedID, category string) ([]ItemWithFeed, error) {
	var feeds []*entity.Feed
	if feedID != "" {
		feed, err := s.Feeds.Get(ctx, feedID)
		if err != nil {
			return nil, fmt.Errorf("get feed %s: %w", feedID, err)
		}
		if feed == nil {
			return nil, fmt.Errorf("query feed %s: %w", feedID, entity.ErrNotFound)
		}
		feeds = []*entity.Feed{feed}
	} else {
		var err error
		feeds, err = s.Feeds.List(ctx, repository.ListFilter{Category: category})
		if err != nil {
			return nil, fmt.Errorf("list feeds: %w", err)
		}
	}

	var merged []ItemWithFeed
	for _, feed := range feeds {
		items, err := s.Items.List(ctx, feed.ID)
		if err != nil {
			return nil, fmt.Errorf("list items for feed %s: %w", feed.ID, err)
		}
		for _, it := range items {
			merged = append(merged, ItemWithFeed{Item: it, FeedID: feed.ID, FeedTitle: feed.Title})
		}
	}
	return merged, nil
}

// matchesAll reports whether every keyword appears in the item's title,
// summary, or content.
func matchesAll(it entity.Item, keywords []string) bool {
	haystack := strings.ToLower(it.Title + "\n" + it.Summary + "\n" + it.Content)
	for _, kw := range keywords {
		if !strings.Contains(haystack, kw) {
			return false
		}
	}
	return true
}

// sortByRecency orders items newest first. Items without a published
// timestamp sort by retrieval time instead; ties break on link for a
// stable order.
func sortByRecency(items []ItemWithFeed) {
	sort.SliceStable(items, func(i, j int) bool {
		ti, tj := effectiveTime(items[i].Item), effectiveTime(items[j].Item)
		if ti.Equal(tj) {
			return items[i].Link < items[j].Link
		}
		return ti.After(tj)
	})
}

func effectiveTime(it entity.Item) time.Time {
	if it.Published != nil {
		return *it.Published
	}
	return it.RetrievedAt
}

func (s *Service) config() pagination.Config {
	if s.Pagination.DefaultLimit > 0 {
		return s.Pagination
	}
	return pagination.DefaultConfig()
}
