package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"randomkiwi/internal/catalog"
	"randomkiwi/internal/config"
	"randomkiwi/internal/domain"
	"randomkiwi/internal/infrastructure/scheduler"
	"randomkiwi/internal/infrastructure/storage"
	"randomkiwi/internal/infrastructure/wikipedia"
	"randomkiwi/internal/logging"
	"randomkiwi/internal/metrics"
	"randomkiwi/internal/ports"
	"randomkiwi/internal/usecase"
)

// Application wires configs to use cases and owns their lifecycle.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	store    *storage.Store
	settings *usecase.Settings
	tracker  *metrics.Tracker
	engine   *catalog.Engine
	browser  *usecase.Browser
}

// New opens storage, loads stored preferences and assembles the browser.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	level, err := cfg.DetailLevel()
	if err != nil {
		return nil, fmt.Errorf("detail level: %w", err)
	}

	a := &Application{cfg: cfg, logger: baseLogger}

	var (
		bookmarks ports.BookmarkRepository
		prefs     ports.PreferenceRepository
	)
	if cfg.Storage.DSN != "" {
		store, err := storage.Open(ctx, cfg.Storage.Driver, cfg.Storage.DSN)
		if err != nil {
			return nil, fmt.Errorf("open storage: %w", err)
		}
		a.store = store
		bookmarks = store.Bookmarks()
		prefs = store.Preferences()
	} else {
		baseLogger.Warn("storage disabled, bookmarks and preferences will not persist")
	}

	a.settings = usecase.NewSettings(prefs, domain.Preferences{
		Language:    cfg.Wikipedia.Language,
		DetailLevel: level,
	})
	if err := a.settings.Load(ctx); err != nil {
		_ = a.store.Close()
		return nil, err
	}

	language := a.settings.Preferences().Language
	source, err := wikipedia.NewClient(&http.Client{Timeout: cfg.Wikipedia.Timeout}, wikipedia.Options{
		Language:          language,
		URLFormat:         cfg.Wikipedia.URLFormat,
		UserAgent:         cfg.Wikipedia.UserAgent,
		MaxBatch:          cfg.Wikipedia.MaxBatch,
		Parallelism:       cfg.Wikipedia.Parallelism,
		RequestsPerSecond: cfg.Wikipedia.RequestsPerSecond,
	}, logging.Component(baseLogger, "wikipedia"))
	if err != nil {
		_ = a.store.Close()
		return nil, fmt.Errorf("wikipedia client: %w", err)
	}
	resolver, err := wikipedia.NewURLBuilder(language, cfg.Wikipedia.URLFormat)
	if err != nil {
		_ = a.store.Close()
		return nil, fmt.Errorf("url builder: %w", err)
	}

	a.tracker = metrics.NewTracker(metrics.Settings{
		MaxRecentNavigations: cfg.Metrics.MaxRecentNavigations,
		BasePoolSize:         cfg.Metrics.BasePoolSize,
		ActiveWindow:         cfg.Metrics.ActiveWindow,
	}, metrics.SystemClock{})

	a.engine, err = catalog.NewEngine(catalog.Settings{
		PoolThreshold:    cfg.Catalog.PoolThreshold,
		CatalogThreshold: cfg.Catalog.CatalogThreshold,
		MaxFeedRounds:    cfg.Catalog.MaxFeedRounds,
		Namespace:        cfg.Wikipedia.Namespace,
	}, catalog.Deps{
		Source:   source,
		Resolver: resolver,
		Levels:   a.settings,
		Tracker:  a.tracker,
		Logger:   logging.Component(baseLogger, "catalog"),
	})
	if err != nil {
		_ = a.store.Close()
		return nil, fmt.Errorf("catalog engine: %w", err)
	}

	a.browser, err = usecase.NewBrowser(usecase.BrowserDeps{
		Catalog:    a.engine,
		Advisor:    a.tracker,
		Settings:   a.settings,
		Bookmarks:  bookmarks,
		Prefetcher: scheduler.NewTickerPrefetcher(cfg.Prefetch.Interval),
		Logger:     logging.Component(baseLogger, "browser"),
	})
	if err != nil {
		_ = a.store.Close()
		return nil, fmt.Errorf("browser: %w", err)
	}

	return a, nil
}

func (a *Application) Browser() *usecase.Browser { return a.browser }

func (a *Application) Settings() *usecase.Settings { return a.settings }

// Tracker exposes session metrics for diagnostics.
func (a *Application) Tracker() *metrics.Tracker { return a.tracker }

func (a *Application) Logger() *slog.Logger { return a.logger }

// Close stops background work and releases storage.
func (a *Application) Close(ctx context.Context) error {
	var errs []error
	if a.browser != nil {
		if err := a.browser.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := a.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close storage: %w", err))
	}
	return errors.Join(errs...)
}
