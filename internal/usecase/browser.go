package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"randomkiwi/internal/catalog"
	"randomkiwi/internal/domain"
	"randomkiwi/internal/ports"
)

const msgSavePreferences = "Failed to save preferences."

var (
	ErrNoCurrentArticle  = errors.New("no current article")
	ErrBookmarksDisabled = errors.New("bookmark storage is not configured")
)

// ArticleCatalog is the navigation surface the browser drives.
type ArticleCatalog interface {
	Initialize(ctx context.Context) catalog.Result
	Next(ctx context.Context) catalog.Result
	Previous() catalog.Result
	Refresh(ctx context.Context) catalog.Result
	Prefetch(ctx context.Context) error
	Current() *domain.ArticleMetadata
	State() catalog.State
	Close() error
}

// PrefetchAdvisor decides whether a background top-up is worth it right now.
type PrefetchAdvisor interface {
	ShouldPrefetchAggressively() bool
}

// BrowserDeps wires the catalog with persistence and background prefetching.
type BrowserDeps struct {
	Catalog    ArticleCatalog
	Advisor    PrefetchAdvisor
	Settings   *Settings
	Bookmarks  ports.BookmarkRepository
	Prefetcher ports.Prefetcher
	Logger     *slog.Logger
	Now        func() time.Time
}

// Browser implements the reading session: navigation, bookmarks and detail-level changes.
type Browser struct {
	catalog    ArticleCatalog
	advisor    PrefetchAdvisor
	settings   *Settings
	bookmarks  ports.BookmarkRepository
	prefetcher ports.Prefetcher
	logger     *slog.Logger
	now        func() time.Time
}

// NewBrowser constructs the session use case.
func NewBrowser(deps BrowserDeps) (*Browser, error) {
	if deps.Catalog == nil {
		return nil, errors.New("browser: catalog is required")
	}
	if deps.Settings == nil {
		return nil, errors.New("browser: settings are required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	now := deps.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}

	return &Browser{
		catalog:    deps.Catalog,
		advisor:    deps.Advisor,
		settings:   deps.Settings,
		bookmarks:  deps.Bookmarks,
		prefetcher: deps.Prefetcher,
		logger:     logger,
		now:        now,
	}, nil
}

func (b *Browser) Start(ctx context.Context) catalog.Result {
	return b.catalog.Initialize(ctx)
}

func (b *Browser) Next(ctx context.Context) catalog.Result {
	return b.catalog.Next(ctx)
}

func (b *Browser) Previous() catalog.Result {
	return b.catalog.Previous()
}

func (b *Browser) Current() *domain.ArticleMetadata {
	return b.catalog.Current()
}

// SetDetailLevel persists the new level and rebuilds the catalog under it.
// An unchanged level, or a catalog that was never started, is not rebuilt.
func (b *Browser) SetDetailLevel(ctx context.Context, level domain.DetailLevel) catalog.Result {
	changed, err := b.settings.SetDetailLevel(ctx, level)
	if err != nil {
		return catalog.Result{Message: msgSavePreferences, Err: err, Article: b.catalog.Current()}
	}
	if !changed {
		return catalog.Result{Success: true, Article: b.catalog.Current()}
	}

	b.logger.Info("detail level changed", "level", level.String())
	if b.catalog.State() == catalog.StateUninitialized {
		return catalog.Result{Success: true}
	}
	return b.catalog.Refresh(ctx)
}

// BookmarkCurrent stores the current article. The bool is false when it was already bookmarked.
func (b *Browser) BookmarkCurrent(ctx context.Context) (domain.Bookmark, bool, error) {
	if b.bookmarks == nil {
		return domain.Bookmark{}, false, ErrBookmarksDisabled
	}

	article := b.catalog.Current()
	if article == nil {
		return domain.Bookmark{}, false, ErrNoCurrentArticle
	}

	bookmark := domain.Bookmark{
		ArticleID:   article.ID,
		Title:       article.Heading(),
		Description: article.Description,
		URL:         article.URL,
		AddedAt:     b.now(),
	}
	added, err := b.bookmarks.Save(ctx, bookmark)
	if err != nil {
		return domain.Bookmark{}, false, fmt.Errorf("bookmark article %d: %w", article.ID, err)
	}
	return bookmark, added, nil
}

func (b *Browser) IsCurrentBookmarked(ctx context.Context) (bool, error) {
	if b.bookmarks == nil {
		return false, ErrBookmarksDisabled
	}
	article := b.catalog.Current()
	if article == nil {
		return false, nil
	}
	return b.bookmarks.IsBookmarked(ctx, article.ID)
}

func (b *Browser) Bookmarks(ctx context.Context) ([]domain.Bookmark, error) {
	if b.bookmarks == nil {
		return nil, ErrBookmarksDisabled
	}
	return b.bookmarks.List(ctx)
}

func (b *Browser) RemoveBookmark(ctx context.Context, articleID int) error {
	if b.bookmarks == nil {
		return ErrBookmarksDisabled
	}
	return b.bookmarks.Delete(ctx, articleID)
}

// StartPrefetch tops up the pool in the background while the reader is moving forward quickly.
func (b *Browser) StartPrefetch(ctx context.Context) error {
	if b.prefetcher == nil || b.advisor == nil {
		return nil
	}

	job := func(ctx context.Context) {
		if !b.advisor.ShouldPrefetchAggressively() {
			return
		}
		if err := b.catalog.Prefetch(ctx); err != nil && ctx.Err() == nil {
			b.logger.Warn("background prefetch failed", "error", err)
		}
	}
	return b.prefetcher.Start(ctx, job)
}

// Close stops background work and disposes the catalog.
func (b *Browser) Close(ctx context.Context) error {
	var errs []error
	if b.prefetcher != nil {
		if err := b.prefetcher.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop prefetcher: %w", err))
		}
	}
	if err := b.catalog.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close catalog: %w", err))
	}
	return errors.Join(errs...)
}
