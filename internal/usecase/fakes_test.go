package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"randomkiwi/internal/catalog"
	"randomkiwi/internal/domain"
	"randomkiwi/internal/metrics"
)

type countingSource struct {
	mu    sync.Mutex
	next  int
	calls int
	fail  error
}

func (s *countingSource) FetchRandomCandidates(_ context.Context, count int, _ string) ([]domain.RawCandidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.fail != nil {
		return nil, s.fail
	}
	out := make([]domain.RawCandidate, 0, count)
	for i := 0; i < count; i++ {
		s.next++
		out = append(out, domain.RawCandidate{
			ID:     s.next,
			Title:  fmt.Sprintf("Article %d", s.next),
			Length: 50000,
		})
	}
	return out, nil
}

func (s *countingSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type plainResolver struct{}

func (plainResolver) BuildArticleURL(title string) (string, error) {
	return "https://en.m.wikipedia.org/wiki/" + title, nil
}

type memoryBookmarks struct {
	mu    sync.Mutex
	items []domain.Bookmark
}

func (m *memoryBookmarks) Save(_ context.Context, b domain.Bookmark) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.items {
		if existing.ArticleID == b.ArticleID {
			return false, nil
		}
	}
	m.items = append(m.items, b)
	return true, nil
}

func (m *memoryBookmarks) List(context.Context) ([]domain.Bookmark, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Bookmark(nil), m.items...), nil
}

func (m *memoryBookmarks) IsBookmarked(_ context.Context, articleID int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.items {
		if existing.ArticleID == articleID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryBookmarks) Delete(_ context.Context, articleID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.items[:0]
	for _, existing := range m.items {
		if existing.ArticleID != articleID {
			kept = append(kept, existing)
		}
	}
	m.items = kept
	return nil
}

type memoryPreferences struct {
	stored  *domain.Preferences
	saveErr error
	saves   int
}

func (m *memoryPreferences) Load(context.Context) (domain.Preferences, bool, error) {
	if m.stored == nil {
		return domain.Preferences{}, false, nil
	}
	return *m.stored, true, nil
}

func (m *memoryPreferences) Save(_ context.Context, prefs domain.Preferences) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.stored = &prefs
	return nil
}

// manualPrefetcher captures the job so tests can trigger it.
type manualPrefetcher struct {
	job     func(context.Context)
	stopped bool
}

func (m *manualPrefetcher) Start(_ context.Context, job func(context.Context)) error {
	m.job = job
	return nil
}

func (m *manualPrefetcher) Stop(context.Context) error {
	m.stopped = true
	return nil
}

type stubAdvisor struct{ aggressive bool }

func (s stubAdvisor) ShouldPrefetchAggressively() bool { return s.aggressive }

type fixture struct {
	browser    *Browser
	engine     *catalog.Engine
	source     *countingSource
	settings   *Settings
	prefs      *memoryPreferences
	bookmarks  *memoryBookmarks
	prefetcher *manualPrefetcher
}

func newFixture(t *testing.T, advisor PrefetchAdvisor) *fixture {
	t.Helper()

	source := &countingSource{}
	prefs := &memoryPreferences{}
	settings := NewSettings(prefs, domain.Preferences{Language: "en", DetailLevel: domain.DetailAny})
	tracker := metrics.NewTracker(metrics.Settings{BasePoolSize: 4}, nil)

	engine, err := catalog.NewEngine(catalog.Settings{PoolThreshold: 4, CatalogThreshold: 8}, catalog.Deps{
		Source:   source,
		Resolver: plainResolver{},
		Levels:   settings,
		Tracker:  tracker,
	})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	bookmarks := &memoryBookmarks{}
	prefetcher := &manualPrefetcher{}
	browser, err := NewBrowser(BrowserDeps{
		Catalog:    engine,
		Advisor:    advisor,
		Settings:   settings,
		Bookmarks:  bookmarks,
		Prefetcher: prefetcher,
	})
	if err != nil {
		t.Fatalf("NewBrowser: %v", err)
	}

	return &fixture{
		browser:    browser,
		engine:     engine,
		source:     source,
		settings:   settings,
		prefs:      prefs,
		bookmarks:  bookmarks,
		prefetcher: prefetcher,
	}
}

var errDiskFull = errors.New("disk full")
