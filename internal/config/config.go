package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"randomkiwi/internal/domain"
)

const (
	configPathEnv  = "RANDOMKIWI_CONFIG"
	languageEnv    = "RANDOMKIWI_LANGUAGE"
	detailLevelEnv = "RANDOMKIWI_DETAIL_LEVEL"
	databaseDSNEnv = "RANDOMKIWI_DATABASE_DSN"
	logLevelEnv    = "RANDOMKIWI_LOG_LEVEL"

	defaultUserAgent = "randomkiwi/1.0 (https://github.com/randomkiwi/randomkiwi)"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging     LoggingConfig     `yaml:"logging"`
	Wikipedia   WikipediaConfig   `yaml:"wikipedia"`
	Catalog     CatalogConfig     `yaml:"catalog"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Preferences PreferencesConfig `yaml:"preferences"`
	Storage     StorageConfig     `yaml:"storage"`
	Prefetch    PrefetchConfig    `yaml:"prefetch"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// WikipediaConfig describes how to reach the MediaWiki API.
type WikipediaConfig struct {
	Language          string        `yaml:"language"`
	URLFormat         string        `yaml:"urlFormat"`
	Namespace         string        `yaml:"namespace"`
	UserAgent         string        `yaml:"userAgent"`
	Timeout           time.Duration `yaml:"timeout"`
	MaxBatch          int           `yaml:"maxBatch"`
	Parallelism       int           `yaml:"parallelism"`
	RequestsPerSecond float64       `yaml:"requestsPerSecond"`
}

// CatalogConfig sizes the pool and the navigation history.
type CatalogConfig struct {
	PoolThreshold    int `yaml:"poolThreshold"`
	CatalogThreshold int `yaml:"catalogThreshold"`
	MaxFeedRounds    int `yaml:"maxFeedRounds"`
}

type MetricsConfig struct {
	MaxRecentNavigations int           `yaml:"maxRecentNavigations"`
	BasePoolSize         int           `yaml:"basePoolSize"`
	ActiveWindow         time.Duration `yaml:"activeWindow"`
}

// PreferencesConfig seeds preferences until the user stores their own.
type PreferencesConfig struct {
	DetailLevel string `yaml:"detailLevel"`
}

// StorageConfig selects the database. An empty DSN disables persistence.
type StorageConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type PrefetchConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// Load reads YAML configuration from path, or from RANDOMKIWI_CONFIG when path
// is empty, then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		var fileCfg Config
		if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		cfg = mergeConfig(cfg, fileCfg)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DetailLevel parses the configured default detail level.
func (c Config) DetailLevel() (domain.DetailLevel, error) {
	return domain.ParseDetailLevel(c.Preferences.DetailLevel)
}

// Validate rejects settings the engine cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Catalog.PoolThreshold <= 0 {
		errs = append(errs, errors.New("catalog.poolThreshold must be positive"))
	}
	if c.Catalog.CatalogThreshold <= 0 {
		errs = append(errs, errors.New("catalog.catalogThreshold must be positive"))
	}
	if c.Catalog.MaxFeedRounds <= 0 {
		errs = append(errs, errors.New("catalog.maxFeedRounds must be positive"))
	}
	if c.Metrics.BasePoolSize <= 0 {
		errs = append(errs, errors.New("metrics.basePoolSize must be positive"))
	}
	if c.Metrics.MaxRecentNavigations <= 0 {
		errs = append(errs, errors.New("metrics.maxRecentNavigations must be positive"))
	}
	if c.Wikipedia.Language == "" {
		errs = append(errs, errors.New("wikipedia.language is required"))
	}
	if level, err := c.DetailLevel(); err != nil {
		errs = append(errs, fmt.Errorf("preferences.detailLevel: %w", err))
	} else if level == domain.DetailUnknown {
		errs = append(errs, errors.New("preferences.detailLevel must be any, medium or detailed"))
	}
	switch c.Storage.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q is not supported", c.Storage.Driver))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(languageEnv); v != "" {
		c.Wikipedia.Language = v
	}

	if v := os.Getenv(detailLevelEnv); v != "" {
		c.Preferences.DetailLevel = v
	}

	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Storage.DSN = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Wikipedia.Language != "" {
		base.Wikipedia.Language = override.Wikipedia.Language
	}
	if override.Wikipedia.URLFormat != "" {
		base.Wikipedia.URLFormat = override.Wikipedia.URLFormat
	}
	if override.Wikipedia.Namespace != "" {
		base.Wikipedia.Namespace = override.Wikipedia.Namespace
	}
	if override.Wikipedia.UserAgent != "" {
		base.Wikipedia.UserAgent = override.Wikipedia.UserAgent
	}
	if override.Wikipedia.Timeout != 0 {
		base.Wikipedia.Timeout = override.Wikipedia.Timeout
	}
	if override.Wikipedia.MaxBatch != 0 {
		base.Wikipedia.MaxBatch = override.Wikipedia.MaxBatch
	}
	if override.Wikipedia.Parallelism != 0 {
		base.Wikipedia.Parallelism = override.Wikipedia.Parallelism
	}
	if override.Wikipedia.RequestsPerSecond != 0 {
		base.Wikipedia.RequestsPerSecond = override.Wikipedia.RequestsPerSecond
	}

	if override.Catalog.PoolThreshold != 0 {
		base.Catalog.PoolThreshold = override.Catalog.PoolThreshold
	}
	if override.Catalog.CatalogThreshold != 0 {
		base.Catalog.CatalogThreshold = override.Catalog.CatalogThreshold
	}
	if override.Catalog.MaxFeedRounds != 0 {
		base.Catalog.MaxFeedRounds = override.Catalog.MaxFeedRounds
	}

	if override.Metrics.MaxRecentNavigations != 0 {
		base.Metrics.MaxRecentNavigations = override.Metrics.MaxRecentNavigations
	}
	if override.Metrics.BasePoolSize != 0 {
		base.Metrics.BasePoolSize = override.Metrics.BasePoolSize
	}
	if override.Metrics.ActiveWindow != 0 {
		base.Metrics.ActiveWindow = override.Metrics.ActiveWindow
	}

	if override.Preferences.DetailLevel != "" {
		base.Preferences.DetailLevel = override.Preferences.DetailLevel
	}

	if override.Storage.Driver != "" {
		base.Storage.Driver = override.Storage.Driver
	}
	if override.Storage.DSN != "" {
		base.Storage.DSN = override.Storage.DSN
	}

	if override.Prefetch.Interval != 0 {
		base.Prefetch.Interval = override.Prefetch.Interval
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Wikipedia: WikipediaConfig{
			Language:          "en",
			Namespace:         "0",
			UserAgent:         defaultUserAgent,
			Timeout:           15 * time.Second,
			MaxBatch:          50,
			Parallelism:       4,
			RequestsPerSecond: 5,
		},
		Catalog:     CatalogConfig{PoolThreshold: 20, CatalogThreshold: 40, MaxFeedRounds: 5},
		Metrics:     MetricsConfig{MaxRecentNavigations: 20, BasePoolSize: 20, ActiveWindow: 30 * time.Second},
		Preferences: PreferencesConfig{DetailLevel: "any"},
		Storage:     StorageConfig{Driver: "sqlite", DSN: defaultDatabasePath()},
		Prefetch:    PrefetchConfig{Interval: 10 * time.Second},
	}
}

func defaultDatabasePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "randomkiwi", "randomkiwi.db")
}
