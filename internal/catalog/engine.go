// Package catalog keeps a prefetched pool of random articles and the user's
// browsing history through them.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"randomkiwi/internal/domain"
	"randomkiwi/internal/ports"
	"randomkiwi/internal/quality"
)

const (
	defaultPoolThreshold    = 20
	defaultCatalogThreshold = 40
	defaultMaxFeedRounds    = 5
	defaultNamespace        = "0"
)

// State is the lifecycle position of an Engine.
type State int

const (
	StateUninitialized State = iota
	StateReady
	StateEmpty
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateEmpty:
		return "empty"
	case StateDisposed:
		return "disposed"
	default:
		return "uninitialized"
	}
}

// NavigationTracker is the part of the metrics tracker the engine relies on.
type NavigationTracker interface {
	TrackNavigation(kind domain.NavigationType, targetID int)
	OptimalPoolSize() int
}

// Settings bounds the pool and the catalog.
type Settings struct {
	PoolThreshold    int
	CatalogThreshold int
	// MaxFeedRounds caps fetches per replenishment when filtering keeps
	// rejecting candidates.
	MaxFeedRounds int
	Namespace     string
}

// Deps wires the collaborators of an Engine.
type Deps struct {
	Source   ports.CandidateSource
	Resolver ports.URLResolver
	Levels   ports.DetailLevelProvider
	Tracker  NavigationTracker
	Logger   *slog.Logger
}

// Engine serves articles one at a time from a prefetched pool and remembers
// the ones already shown.
//
// Pool, catalog and cursor are guarded by a single mutex; network fetches run
// outside of it. Next, Previous and Refresh are expected to be called
// sequentially by one caller: concurrent calls cannot corrupt state but may
// advance more than once. Prefetch may run concurrently with all of them,
// and a caller's cancelled context only fails that caller's feed.
type Engine struct {
	settings Settings
	source   ports.CandidateSource
	resolver ports.URLResolver
	levels   ports.DetailLevelProvider
	tracker  NavigationTracker
	filter   *quality.Filter
	logger   *slog.Logger
	feeds    singleflight.Group
	lifetime context.Context
	stop     context.CancelFunc

	mu         sync.Mutex
	pool       []domain.ArticleMetadata
	catalog    []domain.ArticleMetadata
	current    int
	state      State
	generation uint64
	calls      map[string]*feedCall
}

// feedCall is one shared pool feed. Its context belongs to the engine rather
// than to any caller and is cancelled once every waiter has gone.
type feedCall struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters []context.Context
}

// liveLocked reports whether some waiter still wants the result.
func (c *feedCall) liveLocked() bool {
	if c.ctx.Err() != nil {
		return false
	}
	for _, w := range c.waiters {
		if w.Err() == nil {
			return true
		}
	}
	return false
}

// NewEngine validates the wiring and applies defaults to zero settings.
func NewEngine(settings Settings, deps Deps) (*Engine, error) {
	switch {
	case deps.Source == nil:
		return nil, errors.New("catalog: candidate source is required")
	case deps.Resolver == nil:
		return nil, errors.New("catalog: url resolver is required")
	case deps.Levels == nil:
		return nil, errors.New("catalog: detail level provider is required")
	case deps.Tracker == nil:
		return nil, errors.New("catalog: navigation tracker is required")
	}

	if settings.PoolThreshold <= 0 {
		settings.PoolThreshold = defaultPoolThreshold
	}
	if settings.CatalogThreshold <= 0 {
		settings.CatalogThreshold = defaultCatalogThreshold
	}
	if settings.MaxFeedRounds <= 0 {
		settings.MaxFeedRounds = defaultMaxFeedRounds
	}
	if settings.Namespace == "" {
		settings.Namespace = defaultNamespace
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	lifetime, stop := context.WithCancel(context.Background())
	return &Engine{
		settings: settings,
		source:   deps.Source,
		resolver: deps.Resolver,
		levels:   deps.Levels,
		tracker:  deps.Tracker,
		filter:   quality.NewFilter(deps.Levels),
		logger:   logger,
		lifetime: lifetime,
		stop:     stop,
		calls:    make(map[string]*feedCall),
	}, nil
}

// Initialize fills the pool and moves to its first article.
func (e *Engine) Initialize(ctx context.Context) Result {
	if e.disposed() {
		return failed(msgDisposed, ErrDisposed, nil)
	}

	if err := e.feed(ctx, e.settings.PoolThreshold); err != nil {
		e.logger.Warn("initialize catalog", "error", err)
		return failed(msgInitialize, fmt.Errorf("%w: %w", ErrInitialize, err), nil)
	}

	article, err := e.advance()
	if err != nil {
		return e.advanceFailure(err)
	}
	return succeeded(article)
}

// Next moves to the next pooled article, then tops the pool up toward the
// size suggested by the navigation tracker.
func (e *Engine) Next(ctx context.Context) Result {
	article, err := e.advance()
	if err != nil {
		return e.advanceFailure(err)
	}

	target := e.tracker.OptimalPoolSize()
	e.logger.Debug("optimal pool size", "size", target)

	if err := e.feed(ctx, target); err != nil {
		return failed(msgReplenish, fmt.Errorf("%w: %w", ErrReplenish, err), article)
	}
	return succeeded(article)
}

// Previous steps back through the catalog. Failing at the first entry is a
// boundary signal, not an error.
func (e *Engine) Previous() Result {
	e.mu.Lock()
	if e.state == StateDisposed {
		e.mu.Unlock()
		return failed(msgDisposed, ErrDisposed, nil)
	}
	if e.current <= 0 || len(e.catalog) == 0 {
		current := e.currentLocked()
		e.mu.Unlock()
		return failed(msgNoPrevious, ErrNoPrevious, current)
	}
	e.current--
	article := e.catalog[e.current]
	e.mu.Unlock()

	e.tracker.TrackNavigation(domain.NavigatePrevious, article.ID)
	return succeeded(&article)
}

// Refresh drops every queued and visited article and initializes again.
// Used when the detail level changes and the old articles no longer qualify.
func (e *Engine) Refresh(ctx context.Context) Result {
	e.mu.Lock()
	if e.state == StateDisposed {
		e.mu.Unlock()
		return failed(msgDisposed, ErrDisposed, nil)
	}
	e.resetLocked()
	e.state = StateUninitialized
	e.mu.Unlock()

	return e.Initialize(ctx)
}

// Prefetch tops the pool up without moving the cursor.
func (e *Engine) Prefetch(ctx context.Context) error {
	if e.disposed() {
		return ErrDisposed
	}
	return e.feed(ctx, e.tracker.OptimalPoolSize())
}

// Current returns the article under the cursor, or nil.
func (e *Engine) Current() *domain.ArticleMetadata {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentLocked()
}

// State reports the lifecycle position.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// PoolSize is the number of queued, unseen articles.
func (e *Engine) PoolSize() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pool)
}

// CatalogSize is the number of visited articles still remembered.
func (e *Engine) CatalogSize() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.catalog)
}

// CurrentIndex is the cursor position inside the catalog.
func (e *Engine) CurrentIndex() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// Close disposes of the engine. It is safe to call more than once.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateDisposed {
		return nil
	}
	e.resetLocked()
	e.pool = nil
	e.catalog = nil
	e.state = StateDisposed
	e.stop()
	return nil
}

func (e *Engine) disposed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state == StateDisposed
}

func (e *Engine) currentLocked() *domain.ArticleMetadata {
	if e.current < 0 || e.current >= len(e.catalog) {
		return nil
	}
	article := e.catalog[e.current]
	return &article
}

// resetLocked empties pool and catalog and invalidates in-flight feeds.
func (e *Engine) resetLocked() {
	e.pool = e.pool[:0]
	e.catalog = e.catalog[:0]
	e.current = 0
	e.generation++
}

func (e *Engine) advanceFailure(err error) Result {
	if errors.Is(err, ErrDisposed) {
		return failed(msgDisposed, err, nil)
	}
	return failed(msgPoolExhausted, err, e.Current())
}

// advance moves the head of the pool to the end of the catalog.
func (e *Engine) advance() (*domain.ArticleMetadata, error) {
	e.mu.Lock()
	if e.state == StateDisposed {
		e.mu.Unlock()
		return nil, ErrDisposed
	}
	if len(e.pool) == 0 {
		if len(e.catalog) > 0 {
			e.state = StateEmpty
		}
		e.mu.Unlock()
		e.logger.Debug("article pool is empty")
		return nil, ErrPoolExhausted
	}

	article := e.pool[0]
	e.pool[0] = domain.ArticleMetadata{}
	e.pool = e.pool[1:]

	e.catalog = append(e.catalog, article)
	e.current = len(e.catalog) - 1
	e.trimLocked()
	e.state = StateReady
	e.mu.Unlock()

	e.tracker.TrackNavigation(domain.NavigateNext, article.ID)
	return &article, nil
}

// trimLocked evicts the oldest entries beyond the catalog threshold and keeps
// the cursor on the same article.
func (e *Engine) trimLocked() {
	excess := len(e.catalog) - e.settings.CatalogThreshold
	if excess <= 0 {
		return
	}
	e.catalog = append(e.catalog[:0], e.catalog[excess:]...)
	e.current -= excess
	if e.current < 0 {
		e.current = 0
	}
}

// feed grows the pool toward target. Concurrent feeds for the same pool
// generation share one run, and each caller waits on its own context. A
// joined run was sized for the first caller's target, so a joined caller the
// run fell short of feeds once more with its own.
func (e *Engine) feed(ctx context.Context, target int) error {
	joined, err := e.feedOnce(ctx, target)
	if err != nil || !joined || e.PoolSize() >= target/2 {
		return err
	}
	e.logger.Debug("shared pool feed fell short", "target", target, "pool_size", e.PoolSize())
	_, err = e.feedOnce(ctx, target)
	return err
}

func (e *Engine) feedOnce(ctx context.Context, target int) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	e.mu.Lock()
	generation := e.generation
	key := strconv.FormatUint(generation, 10)
	call, joined := e.calls[key]
	if !joined {
		runCtx, cancel := context.WithCancel(e.lifetime)
		call = &feedCall{ctx: runCtx, cancel: cancel}
		e.calls[key] = call
	}
	call.waiters = append(call.waiters, ctx)
	results := e.feeds.DoChan(key, func() (any, error) {
		defer e.finishFeed(key, call)
		return nil, e.feedRounds(call, generation, target)
	})
	e.mu.Unlock()

	if joined {
		e.logger.Debug("joined in-flight pool feed", "target", target)
	}

	select {
	case res := <-results:
		e.leaveFeed(ctx, key, call)
		return joined, res.Err
	case <-ctx.Done():
		e.leaveFeed(ctx, key, call)
		return joined, ctx.Err()
	}
}

// finishFeed retires a completed run so the next feed starts a fresh one.
func (e *Engine) finishFeed(key string, call *feedCall) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.forgetLocked(key, call)
	call.cancel()
}

// leaveFeed drops a waiter. The run is cancelled once nobody waits on it.
func (e *Engine) leaveFeed(ctx context.Context, key string, call *feedCall) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i := slices.Index(call.waiters, ctx); i >= 0 {
		call.waiters = slices.Delete(call.waiters, i, i+1)
	}
	if len(call.waiters) == 0 {
		e.forgetLocked(key, call)
		call.cancel()
	}
}

func (e *Engine) forgetLocked(key string, call *feedCall) {
	if e.calls[key] == call {
		delete(e.calls, key)
		e.feeds.Forget(key)
	}
}

func (e *Engine) feedRounds(call *feedCall, generation uint64, target int) error {
	for round := 0; round < e.settings.MaxFeedRounds; round++ {
		if e.PoolSize() >= target/2 {
			return nil
		}

		level := e.levels.DetailLevel()
		fetchSize := quality.EstimateFetchSize(target, level)
		if fetchSize == 0 {
			e.logger.Debug("skip pool feed", "target", target, "detail_level", level.String())
			return nil
		}

		accepted, err := e.fetchAccepted(call, fetchSize)
		if err != nil {
			if round == 0 {
				e.logger.Warn("failed to replenish article pool", "error", err)
				return err
			}
			e.logger.Warn("pool top-up stopped", "round", round, "error", err)
			return nil
		}

		size, ok := e.enqueue(generation, call, accepted)
		if !ok {
			e.logger.Debug("discard stale feed", "articles", len(accepted))
			return nil
		}
		e.logger.Debug("article pool replenished", "size", size, "accepted", len(accepted), "requested", fetchSize)

		if size >= target {
			return nil
		}
		target -= len(accepted)
		if target <= 0 {
			return nil
		}
	}

	e.logger.Warn("pool top-up gave up", "rounds", e.settings.MaxFeedRounds, "pool_size", e.PoolSize())
	return nil
}

// fetchAccepted requests count candidates and keeps those passing the filter.
func (e *Engine) fetchAccepted(call *feedCall, count int) ([]domain.ArticleMetadata, error) {
	candidates, err := e.source.FetchRandomCandidates(call.ctx, count, e.settings.Namespace)
	if err != nil {
		return nil, fmt.Errorf("fetch candidates: %w", err)
	}
	if !e.feedLive(call) {
		return nil, fmt.Errorf("fetch candidates: %w", context.Canceled)
	}

	accepted := make([]domain.ArticleMetadata, 0, len(candidates))
	for _, c := range candidates {
		if !e.filter.Accept(c) {
			continue
		}
		url, err := e.resolver.BuildArticleURL(c.Title)
		if err != nil {
			e.logger.Warn("skip candidate without url", "id", c.ID, "error", err)
			continue
		}
		accepted = append(accepted, domain.ArticleMetadata{
			ID:           c.ID,
			Title:        c.Title,
			DisplayTitle: c.DisplayTitle,
			Description:  c.Description,
			URL:          url,
			Namespace:    c.Namespace,
		})
	}
	return accepted, nil
}

func (e *Engine) feedLive(call *feedCall) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return call.liveLocked()
}

// enqueue appends articles unless the pool was reset since the fetch started
// or every caller waiting on the run has gone.
func (e *Engine) enqueue(generation uint64, call *feedCall, articles []domain.ArticleMetadata) (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateDisposed || e.generation != generation || !call.liveLocked() {
		return len(e.pool), false
	}
	e.pool = append(e.pool, articles...)
	return len(e.pool), true
}
