package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"randomkiwi/internal/domain"
	"randomkiwi/internal/ports"
)

// Settings holds the live preferences and persists changes when a repository is configured.
type Settings struct {
	repo ports.PreferenceRepository

	// writeMu orders writers so the stored and live values agree.
	writeMu sync.Mutex

	mu    sync.RWMutex
	prefs domain.Preferences
}

var _ ports.DetailLevelProvider = (*Settings)(nil)

// NewSettings starts from defaults; repo may be nil for in-memory use.
func NewSettings(repo ports.PreferenceRepository, defaults domain.Preferences) *Settings {
	return &Settings{repo: repo, prefs: defaults}
}

// Load replaces the defaults with stored preferences, when any exist.
func (s *Settings) Load(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}

	stored, found, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load preferences: %w", err)
	}
	if !found {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if stored.Language != "" {
		s.prefs.Language = stored.Language
	}
	if stored.DetailLevel != domain.DetailUnknown {
		s.prefs.DetailLevel = stored.DetailLevel
	}
	return nil
}

func (s *Settings) DetailLevel() domain.DetailLevel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs.DetailLevel
}

func (s *Settings) Preferences() domain.Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs
}

// SetDetailLevel persists the level and then makes it live. It reports whether the level changed.
// Readers of DetailLevel never wait on the save.
func (s *Settings) SetDetailLevel(ctx context.Context, level domain.DetailLevel) (bool, error) {
	if level == domain.DetailUnknown {
		return false, errors.New("detail level must be one of any, medium, detailed")
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	next := s.Preferences()
	if next.DetailLevel == level {
		return false, nil
	}
	next.DetailLevel = level
	if s.repo != nil {
		if err := s.repo.Save(ctx, next); err != nil {
			return false, fmt.Errorf("save preferences: %w", err)
		}
	}

	s.mu.Lock()
	s.prefs = next
	s.mu.Unlock()
	return true, nil
}
