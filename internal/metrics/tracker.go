package metrics

import (
	"sync"
	"time"

	"randomkiwi/internal/domain"
)

const (
	defaultMaxRecent    = 20
	defaultBasePoolSize = 20
	defaultActiveWindow = 30 * time.Second
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// Settings tunes the tracker.
type Settings struct {
	MaxRecentNavigations int
	BasePoolSize         int
	ActiveWindow         time.Duration
}

// Session is a copy of the counters gathered for one engine lifetime.
type Session struct {
	LastActivity        time.Time
	TotalNavigations    int
	ForwardNavigations  int
	BackwardNavigations int
	ConsecutiveForward  int
	ConsecutiveBackward int
	RecentNavigations   []domain.NavigationEvent
}

// Tracker records navigation events and derives a browsing pattern from them.
type Tracker struct {
	mu       sync.Mutex
	settings Settings
	clock    Clock
	session  Session
}

// NewTracker builds a tracker; zero settings fall back to defaults and a nil clock uses SystemClock.
func NewTracker(settings Settings, clock Clock) *Tracker {
	if settings.MaxRecentNavigations <= 0 {
		settings.MaxRecentNavigations = defaultMaxRecent
	}
	if settings.BasePoolSize <= 0 {
		settings.BasePoolSize = defaultBasePoolSize
	}
	if settings.ActiveWindow <= 0 {
		settings.ActiveWindow = defaultActiveWindow
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Tracker{
		settings: settings,
		clock:    clock,
		session: Session{
			LastActivity:      clock.Now(),
			RecentNavigations: make([]domain.NavigationEvent, 0, settings.MaxRecentNavigations),
		},
	}
}

// TrackNavigation updates the counters for a move to targetID.
func (t *Tracker) TrackNavigation(kind domain.NavigationType, targetID int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	s := &t.session
	s.LastActivity = now
	s.TotalNavigations++

	switch kind {
	case domain.NavigateNext:
		s.ForwardNavigations++
		s.ConsecutiveForward++
		s.ConsecutiveBackward = 0
	case domain.NavigatePrevious:
		s.BackwardNavigations++
		s.ConsecutiveBackward++
		s.ConsecutiveForward = 0
	}

	s.RecentNavigations = append(s.RecentNavigations, domain.NavigationEvent{
		Type:     kind,
		TargetID: targetID,
		At:       now,
	})
	if over := len(s.RecentNavigations) - t.settings.MaxRecentNavigations; over > 0 {
		s.RecentNavigations = append(s.RecentNavigations[:0], s.RecentNavigations[over:]...)
	}
}

// AnalyzePattern classifies the session from its aggregate counters.
func (t *Tracker) AnalyzePattern() domain.NavigationPattern {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.analyze()
}

func (t *Tracker) analyze() domain.NavigationPattern {
	s := t.session
	if s.TotalNavigations == 0 {
		return domain.PatternUnknown
	}

	forwardRatio := float64(s.ForwardNavigations) / float64(s.TotalNavigations)
	if forwardRatio > 0.8 && s.ConsecutiveForward > 3 {
		return domain.PatternReader
	}
	if s.ConsecutiveBackward > 2 {
		return domain.PatternReviewer
	}
	return domain.PatternExplorer
}

// OptimalPoolSize scales the base pool size by the current pattern.
func (t *Tracker) OptimalPoolSize() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	base := t.settings.BasePoolSize
	switch t.analyze() {
	case domain.PatternExplorer:
		return base * 3 / 2
	case domain.PatternReader:
		return base * 2
	default:
		return base
	}
}

// ShouldPrefetchAggressively reports a user steadily moving forward right now.
func (t *Tracker) ShouldPrefetchAggressively() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	active := t.clock.Now().Sub(t.session.LastActivity) < t.settings.ActiveWindow
	return active && t.session.ConsecutiveForward > 2
}

// Snapshot returns a copy of the session counters.
func (t *Tracker) Snapshot() Session {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.session
	s.RecentNavigations = append([]domain.NavigationEvent(nil), t.session.RecentNavigations...)
	return s
}
