package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"randomkiwi/internal/domain"
	"randomkiwi/internal/metrics"
)

type fetchFunc func(call, count int) ([]domain.RawCandidate, error)

// scriptedSource answers each fetch with the next scripted reply and records the requested counts.
type scriptedSource struct {
	mu     sync.Mutex
	fetch  fetchFunc
	counts []int
}

func (s *scriptedSource) FetchRandomCandidates(ctx context.Context, count int, namespace string) ([]domain.RawCandidate, error) {
	s.mu.Lock()
	call := len(s.counts)
	s.counts = append(s.counts, count)
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if namespace != "0" {
		return nil, fmt.Errorf("unexpected namespace %q", namespace)
	}
	return s.fetch(call, count)
}

func (s *scriptedSource) Requested() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.counts...)
}

// abundant returns exactly count acceptable candidates with increasing IDs.
func abundant() fetchFunc {
	var (
		mu   sync.Mutex
		next = 1
	)
	return func(_, count int) ([]domain.RawCandidate, error) {
		mu.Lock()
		defer mu.Unlock()
		out := candidates(next, count, 50000)
		next += count
		return out, nil
	}
}

func candidates(startID, n, length int) []domain.RawCandidate {
	out := make([]domain.RawCandidate, 0, n)
	for i := 0; i < n; i++ {
		id := startID + i
		out = append(out, domain.RawCandidate{
			ID:     id,
			Title:  fmt.Sprintf("Article %d", id),
			Length: length,
		})
	}
	return out
}

func articles(startID, n int) []domain.ArticleMetadata {
	out := make([]domain.ArticleMetadata, 0, n)
	for i := 0; i < n; i++ {
		id := startID + i
		out = append(out, domain.ArticleMetadata{ID: id, Title: fmt.Sprintf("Article %d", id)})
	}
	return out
}

type testResolver struct{}

func (testResolver) BuildArticleURL(title string) (string, error) {
	if strings.TrimSpace(title) == "" {
		return "", errors.New("empty title")
	}
	return "https://en.m.wikipedia.org/wiki/" + strings.ReplaceAll(title, " ", "_"), nil
}

type levelBox struct {
	mu    sync.Mutex
	level domain.DetailLevel
}

func (l *levelBox) DetailLevel() domain.DetailLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

func (l *levelBox) Set(level domain.DetailLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

type harness struct {
	engine  *Engine
	source  *scriptedSource
	levels  *levelBox
	tracker *metrics.Tracker
}

func newHarness(t *testing.T, settings Settings, fetch fetchFunc) *harness {
	t.Helper()

	source := &scriptedSource{fetch: fetch}
	levels := &levelBox{level: domain.DetailAny}
	tracker := metrics.NewTracker(metrics.Settings{BasePoolSize: 20}, nil)

	engine, err := NewEngine(settings, Deps{
		Source:   source,
		Resolver: testResolver{},
		Levels:   levels,
		Tracker:  tracker,
	})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return &harness{engine: engine, source: source, levels: levels, tracker: tracker}
}

// seed replaces pool and catalog directly.
func (h *harness) seed(pool, catalog []domain.ArticleMetadata, current int) {
	h.engine.mu.Lock()
	defer h.engine.mu.Unlock()
	h.engine.pool = pool
	h.engine.catalog = catalog
	h.engine.current = current
	if len(catalog) > 0 {
		h.engine.state = StateReady
	}
}

func (h *harness) catalogIDs() []int {
	h.engine.mu.Lock()
	defer h.engine.mu.Unlock()
	ids := make([]int, 0, len(h.engine.catalog))
	for _, a := range h.engine.catalog {
		ids = append(ids, a.ID)
	}
	return ids
}

// liveFeed is a feed run with one waiting caller.
func liveFeed() *feedCall {
	return &feedCall{
		ctx:     context.Background(),
		cancel:  func() {},
		waiters: []context.Context{context.Background()},
	}
}

// waitForWaiters blocks until n callers are waiting on in-flight feeds.
func (h *harness) waitForWaiters(t *testing.T, n int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		h.engine.mu.Lock()
		total := 0
		for _, call := range h.engine.calls {
			total += len(call.waiters)
		}
		h.engine.mu.Unlock()
		if total >= n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d feed waiters", n)
}
