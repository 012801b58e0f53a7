package registry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"feed-collector/internal/domain/entity"
	"feed-collector/internal/repository"
	regUC "feed-collector/internal/usecase/registry"
)

// very-light FeedRepository stub
type stubFeedRepo struct {
	data map[string]*entity.Feed
	err  error // forced error injection
}

func newFeedStub() *stubFeedRepo {
	return &stubFeedRepo{data: map[string]*entity.Feed{}}
}

func (s *stubFeedRepo) Get(_ context.Context, id string) (*entity.Feed, error) {
	if s.err != nil {
		return nil, s.err
	}
	f, ok := s.data[id]
	if !ok {
		return nil, nil
	}
	cp := *f
	return &cp, nil
}

func (s *stubFeedRepo) List(_ context.Context, filter repository.ListFilter) ([]*entity.Feed, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []*entity.Feed
	for _, f := range s.data {
		if filter.Category != "" && f.Category != filter.Category {
			continue
		}
		if filter.EnabledOnly && !f.Enabled {
			continue
		}
		cp := *f
		out = append(out, &cp)
	}
	return out, nil
}

func (s *stubFeedRepo) Create(_ context.Context, feed *entity.Feed) error {
	if s.err != nil {
		return s.err
	}
	for _, f := range s.data {
		if f.URL == feed.URL {
			return entity.ErrDuplicateURL
		}
	}
	cp := *feed
	s.data[feed.ID] = &cp
	return nil
}

func (s *stubFeedRepo) Update(_ context.Context, feed *entity.Feed) error {
	if s.err != nil {
		return s.err
	}
	if _, ok := s.data[feed.ID]; !ok {
		return entity.ErrNotFound
	}
	for id, f := range s.data {
		if id != feed.ID && f.URL == feed.URL {
			return entity.ErrDuplicateURL
		}
	}
	cp := *feed
	s.data[feed.ID] = &cp
	return nil
}

func (s *stubFeedRepo) Delete(_ context.Context, id string) error {
	if s.err != nil {
		return s.err
	}
	if _, ok := s.data[id]; !ok {
		return entity.ErrNotFound
	}
	delete(s.data, id)
	return nil
}

func (s *stubFeedRepo) TouchFetched(_ context.Context, id string, t time.Time, status entity.FetchStatus) error {
	if s.err != nil {
		return s.err
	}
	f, ok := s.data[id]
	if !ok {
		return entity.ErrNotFound
	}
	f.LastFetchedAt = &t
	f.LastFetchStatus = status
	return nil
}

// very-light ItemRepository stub
type stubItemRepo struct {
	archives map[string][]entity.Item
	err      error
	removed  []string
}

func newItemStub() *stubItemRepo {
	return &stubItemRepo{archives: map[string][]entity.Item{}}
}

func (s *stubItemRepo) List(_ context.Context, feedID string) ([]entity.Item, error) {
	return s.archives[feedID], s.err
}

func (s *stubItemRepo) Count(_ context.Context, feedID string) (int, error) {
	return len(s.archives[feedID]), s.err
}

func (s *stubItemRepo) MergeNew(_ context.Context, feedID string, fetched []entity.Item) ([]entity.Item, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.archives[feedID] = append(s.archives[feedID], fetched...)
	return fetched, nil
}

func (s *stubItemRepo) RemoveArchive(_ context.Context, feedID string) error {
	if s.err != nil {
		return s.err
	}
	delete(s.archives, feedID)
	s.removed = append(s.removed, feedID)
	return nil
}

// probe stub with a fixed answer
type stubProber struct {
	alive  bool
	called int
}

func (p *stubProber) Probe(_ context.Context, _ string) bool {
	p.called++
	return p.alive
}

func newService() (*regUC.Service, *stubFeedRepo, *stubItemRepo) {
	feeds := newFeedStub()
	items := newItemStub()
	return &regUC.Service{Feeds: feeds, Items: items}, feeds, items
}

func TestService_Create_success(t *testing.T) {
	svc, feeds, _ := newService()

	feed, err := svc.Create(context.Background(), regUC.CreateInput{
		URL:   "https://blog.example.com/rss",
		Title: "Example Blog",
	})
	if err != nil {
		t.Fatalf("Create err=%v", err)
	}
	if feed.ID == "" {
		t.Fatal("want generated ID, got empty")
	}
	if feed.Cadence != entity.CadenceDaily {
		t.Fatalf("want default cadence daily, got %s", feed.Cadence)
	}
	if !feed.Enabled {
		t.Fatal("want new feed enabled")
	}
	if feed.LastFetchStatus != entity.FetchStatusPending {
		t.Fatalf("want pending status, got %s", feed.LastFetchStatus)
	}
	if len(feeds.data) != 1 {
		t.Fatalf("want 1 stored feed, got %d", len(feeds.data))
	}
}

func TestService_Create_validation(t *testing.T) {
	svc, _, _ := newService()

	cases := []struct {
		name string
		in   regUC.CreateInput
	}{
		{"missing URL", regUC.CreateInput{Title: "t"}},
		{"bad scheme", regUC.CreateInput{URL: "ftp://example.com/rss", Title: "t"}},
		{"missing title", regUC.CreateInput{URL: "https://example.com/rss"}},
		{"bad cadence", regUC.CreateInput{URL: "https://example.com/rss", Title: "t", Cadence: "hourly"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), tc.in); !errors.Is(err, entity.ErrInvalidInput) {
				t.Fatalf("want ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestService_Create_duplicateURL(t *testing.T) {
	svc, _, _ := newService()

	in := regUC.CreateInput{URL: "https://example.com/rss", Title: "First"}
	if _, err := svc.Create(context.Background(), in); err != nil {
		t.Fatalf("first Create err=%v", err)
	}

	in.Title = "Second"
	_, err := svc.Create(context.Background(), in)
	if !errors.Is(err, entity.ErrDuplicateURL) {
		t.Fatalf("want ErrDuplicateURL, got %v", err)
	}
}

func TestService_Create_probe(t *testing.T) {
	t.Run("unreachable", func(t *testing.T) {
		svc, _, _ := newService()
		prober := &stubProber{alive: false}
		svc.Prober = prober

		_, err := svc.Create(context.Background(), regUC.CreateInput{
			URL: "https://dead.example.com/rss", Title: "Dead", VerifyReachable: true,
		})
		if !errors.Is(err, regUC.ErrFeedUnreachable) {
			t.Fatalf("want ErrFeedUnreachable, got %v", err)
		}
		if prober.called != 1 {
			t.Fatalf("want 1 probe, got %d", prober.called)
		}
	})

	t.Run("skipped when not requested", func(t *testing.T) {
		svc, _, _ := newService()
		prober := &stubProber{alive: false}
		svc.Prober = prober

		if _, err := svc.Create(context.Background(), regUC.CreateInput{
			URL: "https://example.com/rss", Title: "Fine",
		}); err != nil {
			t.Fatalf("Create err=%v", err)
		}
		if prober.called != 0 {
			t.Fatalf("want 0 probes, got %d", prober.called)
		}
	})
}

func TestService_Get_notFound(t *testing.T) {
	svc, _, _ := newService()

	_, err := svc.Get(context.Background(), "no-such-id")
	if !errors.Is(err, regUC.ErrFeedNotFound) {
		t.Fatalf("want ErrFeedNotFound, got %v", err)
	}
}

func TestService_Update(t *testing.T) {
	svc, _, _ := newService()

	feed, err := svc.Create(context.Background(), regUC.CreateInput{
		URL: "https://example.com/rss", Title: "Old Title", Category: "go",
	})
	if err != nil {
		t.Fatalf("Create err=%v", err)
	}

	newTitle := "New Title"
	disabled := false
	updated, err := svc.Update(context.Background(), regUC.UpdateInput{
		ID: feed.ID, Title: &newTitle, Enabled: &disabled,
	})
	if err != nil {
		t.Fatalf("Update err=%v", err)
	}
	if updated.Title != newTitle {
		t.Fatalf("want title %q, got %q", newTitle, updated.Title)
	}
	if updated.Enabled {
		t.Fatal("want feed disabled")
	}
	if updated.Category != "go" {
		t.Fatalf("untouched category changed: %q", updated.Category)
	}
	if !updated.UpdatedAt.After(feed.UpdatedAt) {
		t.Fatal("want UpdatedAt refreshed")
	}
}

func TestService_Update_notFound(t *testing.T) {
	svc, _, _ := newService()

	title := "x"
	_, err := svc.Update(context.Background(), regUC.UpdateInput{ID: "missing", Title: &title})
	if !errors.Is(err, regUC.ErrFeedNotFound) {
		t.Fatalf("want ErrFeedNotFound, got %v", err)
	}
}

func TestService_Update_duplicateURL(t *testing.T) {
	svc, _, _ := newService()

	first, err := svc.Create(context.Background(), regUC.CreateInput{
		URL: "https://a.example.com/rss", Title: "A",
	})
	if err != nil {
		t.Fatalf("Create err=%v", err)
	}
	if _, err := svc.Create(context.Background(), regUC.CreateInput{
		URL: "https://b.example.com/rss", Title: "B",
	}); err != nil {
		t.Fatalf("Create err=%v", err)
	}

	collide := "https://b.example.com/rss"
	_, err = svc.Update(context.Background(), regUC.UpdateInput{ID: first.ID, URL: &collide})
	if !errors.Is(err, entity.ErrDuplicateURL) {
		t.Fatalf("want ErrDuplicateURL, got %v", err)
	}
}

func TestService_Delete(t *testing.T) {
	svc, feeds, items := newService()

	feed, err := svc.Create(context.Background(), regUC.CreateInput{
		URL: "https://example.com/rss", Title: "Doomed",
	})
	if err != nil {
		t.Fatalf("Create err=%v", err)
	}
	items.archives[feed.ID] = []entity.Item{{ID: "i1", Link: "https://example.com/1"}}

	if err := svc.Delete(context.Background(), feed.ID); err != nil {
		t.Fatalf("Delete err=%v", err)
	}
	if len(feeds.data) != 0 {
		t.Fatalf("want empty registry, got %d feeds", len(feeds.data))
	}
	if len(items.removed) != 1 || items.removed[0] != feed.ID {
		t.Fatalf("want archive removed for %s, got %v", feed.ID, items.removed)
	}
}

func TestService_Delete_notFound(t *testing.T) {
	svc, _, _ := newService()

	err := svc.Delete(context.Background(), "missing")
	if !errors.Is(err, regUC.ErrFeedNotFound) {
		t.Fatalf("want ErrFeedNotFound, got %v", err)
	}
}

func TestService_List_filter(t *testing.T) {
	svc, _, _ := newService()

	if _, err := svc.Create(context.Background(), regUC.CreateInput{
		URL: "https://a.example.com/rss", Title: "A", Category: "go",
	}); err != nil {
		t.Fatalf("Create err=%v", err)
	}
	if _, err := svc.Create(context.Background(), regUC.CreateInput{
		URL: "https://b.example.com/rss", Title: "B", Category: "news",
	}); err != nil {
		t.Fatalf("Create err=%v", err)
	}

	got, err := svc.List(context.Background(), repository.ListFilter{Category: "go"})
	if err != nil {
		t.Fatalf("List err=%v", err)
	}
	if len(got) != 1 || got[0].Category != "go" {
		t.Fatalf("want 1 go feed, got %v", got)
	}
}
