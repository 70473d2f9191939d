package ports

import (
	"context"

	"randomkiwi/internal/domain"
)

// CandidateSource pulls random, unfiltered article candidates from upstream.
type CandidateSource interface {
	FetchRandomCandidates(ctx context.Context, count int, namespace string) ([]domain.RawCandidate, error)
}

// URLResolver turns an article title into an absolute URL.
type URLResolver interface {
	BuildArticleURL(title string) (string, error)
}

// DetailLevelProvider exposes the currently configured detail level.
// Implementations must return the live value; callers never cache it.
type DetailLevelProvider interface {
	DetailLevel() domain.DetailLevel
}

// BookmarkRepository persists bookmarked articles.
type BookmarkRepository interface {
	Save(ctx context.Context, bookmark domain.Bookmark) (bool, error)
	List(ctx context.Context) ([]domain.Bookmark, error)
	IsBookmarked(ctx context.Context, articleID int) (bool, error)
	Delete(ctx context.Context, articleID int) error
}

// PreferenceRepository persists user preferences.
type PreferenceRepository interface {
	Load(ctx context.Context) (domain.Preferences, bool, error)
	Save(ctx context.Context, prefs domain.Preferences) error
}

// Prefetcher controls when background pool top-ups execute.
type Prefetcher interface {
	Start(ctx context.Context, job func(context.Context)) error
	Stop(ctx context.Context) error
}
