package registry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"feed-collector/internal/domain/entity"
	"feed-collector/internal/repository"
)

// Prober checks whether a feed URL currently responds.
// It is optional; when nil, reachability verification is skipped.
type Prober interface {
	Probe(ctx context.Context, url string) bool
}

// CreateInput represents the input parameters for registering a new feed.
type CreateInput struct {
	URL      string
	Title    string
	Category string
	// Cadence defaults to daily when empty.
	Cadence entity.Cadence
	// VerifyReachable probes the URL before registration when a Prober
	// is configured. Registration fails with ErrFeedUnreachable if the
	// probe does not succeed.
	VerifyReachable bool
}

// UpdateInput represents the input parameters for updating an existing feed.
// Nil pointer fields are left unchanged.
type UpdateInput struct {
	ID       string
	URL      *string
	Title    *string
	Category *string
	Cadence  *entity.Cadence
	Enabled  *bool
}

// Service provides feed registry use cases.
// It handles business logic for feed lifecycle operations and delegates
// persistence to the repositories.
type Service struct {
	Feeds  repository.FeedRepository
	Items  repository.ItemRepository
	Prober Prober
	Logger *slog.Logger
}

// Create validates the input and registers a new feed.
// The feed starts enabled with a pending fetch status and a freshly
// generated ID. Returns entity.ErrDuplicateURL if a feed with the same
// URL is already registered, and a ValidationError for invalid fields.
func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.Feed, error) {
	if err := entity.ValidateURL(in.URL); err != nil {
		return nil, err
	}
	if err := entity.ValidateTitle(in.Title); err != nil {
		return nil, err
	}
	if in.Category != "" {
		if err := entity.ValidateCategory(in.Category); err != nil {
			return nil, err
		}
	}

	cadence := in.Cadence
	if cadence == "" {
		cadence = entity.CadenceDaily
	}
	if !cadence.Valid() {
		return nil, &entity.ValidationError{Field: "cadence", Message: "must be daily, weekly, or manual"}
	}

	if in.VerifyReachable && s.Prober != nil {
		if !s.Prober.Probe(ctx, in.URL) {
			return nil, fmt.Errorf("probe %s: %w", in.URL, ErrFeedUnreachable)
		}
	}

	now := time.Now().UTC()
	feed := &entity.Feed{
		ID:              uuid.NewString(),
		URL:             in.URL,
		Title:           in.Title,
		Category:        in.Category,
		Cadence:         cadence,
		CreatedAt:       now,
		UpdatedAt:       now,
		LastFetchStatus: entity.FetchStatusPending,
		Enabled:         true,
	}

	if err := s.Feeds.Create(ctx, feed); err != nil {
		return nil, fmt.Errorf("create feed: %w", err)
	}
	return feed, nil
}

// Get retrieves a single feed by ID.
// Returns ErrFeedNotFound if no feed with that ID is registered.
func (s *Service) Get(ctx context.Context, id string) (*entity.Feed, error) {
	feed, err := s.Feeds.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get feed: %w", err)
	}
	if feed == nil {
		return nil, ErrFeedNotFound
	}
	return feed, nil
}

// List retrieves feeds matching the filter, in registration order.
func (s *Service) List(ctx context.Context, filter repository.ListFilter) ([]*entity.Feed, error) {
	feeds, err := s.Feeds.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list feeds: %w", err)
	}
	return feeds, nil
}

// Update modifies an existing feed with the provided input.
// Nil fields are left unchanged; UpdatedAt is refreshed on success.
// Returns ErrFeedNotFound if the feed does not exist, a ValidationError
// for invalid fields, and entity.ErrDuplicateURL when a URL change would
// collide with another registered feed.
func (s *Service) Update(ctx context.Context, in UpdateInput) (*entity.Feed, error) {
	feed, err := s.Get(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	if in.URL != nil {
		if err := entity.ValidateURL(*in.URL); err != nil {
			return nil, err
		}
		feed.URL = *in.URL
	}
	if in.Title != nil {
		if err := entity.ValidateTitle(*in.Title); err != nil {
			return nil, err
		}
		feed.Title = *in.Title
	}
	if in.Category != nil {
		if *in.Category != "" {
			if err := entity.ValidateCategory(*in.Category); err != nil {
				return nil, err
			}
		}
		feed.Category = *in.Category
	}
	if in.Cadence != nil {
		if !in.Cadence.Valid() {
			return nil, &entity.ValidationError{Field: "cadence", Message: "must be daily, weekly, or manual"}
		}
		feed.Cadence = *in.Cadence
	}
	if in.Enabled != nil {
		feed.Enabled = *in.Enabled
	}

	feed.UpdatedAt = time.Now().UTC()
	if err := s.Feeds.Update(ctx, feed); err != nil {
		return nil, fmt.Errorf("update feed: %w", err)
	}
	return feed, nil
}

// Delete removes a feed and its item archive.
// The registry record is removed first so callers never observe a feed
// without the registry entry; the archive left behind by a failed cleanup
// is unreachable and only costs disk space.
// Returns ErrFeedNotFound if the feed does not exist.
func (s *Service) Delete(ctx context.Context, id string) error {
	feed, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.Feeds.Delete(ctx, feed.ID); err != nil {
		return fmt.Errorf("delete feed: %w", err)
	}
	if err := s.Items.RemoveArchive(ctx, feed.ID); err != nil {
		s.logger().Warn("feed removed but archive cleanup failed",
			slog.String("feed_id", feed.ID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("remove archive for feed %s: %w", feed.ID, err)
	}
	return nil
}

// TouchFetched records the timestamp and outcome of a fetch attempt
// against the feed's registry record.
func (s *Service) TouchFetched(ctx context.Context, id string, t time.Time, status entity.FetchStatus) error {
	if err := s.Feeds.TouchFetched(ctx, id, t, status); err != nil {
		return fmt.Errorf("touch feed %s: %w", id, err)
	}
	return nil
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
