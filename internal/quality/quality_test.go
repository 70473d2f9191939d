package quality

import (
	"testing"

	"randomkiwi/internal/domain"
)

type staticLevel domain.DetailLevel

func (s staticLevel) DetailLevel() domain.DetailLevel { return domain.DetailLevel(s) }

func TestFilterAccept(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		level     domain.DetailLevel
		candidate domain.RawCandidate
		want      bool
	}{
		{"any below threshold", domain.DetailAny, domain.RawCandidate{Length: 999}, false},
		{"any at threshold", domain.DetailAny, domain.RawCandidate{Length: 1000}, true},
		{"medium below threshold", domain.DetailMedium, domain.RawCandidate{Length: 9999}, false},
		{"medium above threshold", domain.DetailMedium, domain.RawCandidate{Length: 12000}, true},
		{"detailed below threshold", domain.DetailDetailed, domain.RawCandidate{Length: 29999}, false},
		{"detailed at threshold", domain.DetailDetailed, domain.RawCandidate{Length: 30000}, true},
		{"unknown accepts empty article", domain.DetailUnknown, domain.RawCandidate{Length: 0}, true},
		{"disambiguation rejected", domain.DetailAny, domain.RawCandidate{Length: 50000, Disambiguation: true}, false},
		{"disambiguation rejected when level unset", domain.DetailUnknown, domain.RawCandidate{Disambiguation: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := NewFilter(staticLevel(tt.level))
			if got := f.Accept(tt.candidate); got != tt.want {
				t.Fatalf("Accept(%+v) at %s = %v, want %v", tt.candidate, tt.level, got, tt.want)
			}
		})
	}
}

func TestFilterReadsLiveLevel(t *testing.T) {
	t.Parallel()

	level := &switchableLevel{level: domain.DetailAny}
	f := NewFilter(level)
	candidate := domain.RawCandidate{Length: 5000}

	if !f.Accept(candidate) {
		t.Fatal("expected candidate to pass at any")
	}
	level.level = domain.DetailMedium
	if f.Accept(candidate) {
		t.Fatal("expected candidate to fail once the level is raised")
	}
}

type switchableLevel struct {
	level domain.DetailLevel
}

func (s *switchableLevel) DetailLevel() domain.DetailLevel { return s.level }

func TestNewFilterPanicsOnNilProvider(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for nil provider")
		}
	}()
	NewFilter(nil)
}

func TestEstimateFetchSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		target int
		level  domain.DetailLevel
		want   int
	}{
		{20, domain.DetailAny, 40},
		{20, domain.DetailMedium, 200},
		{20, domain.DetailDetailed, 600},
		{20, domain.DetailUnknown, 0},
		{20, domain.DetailLevel(42), 0},
		{0, domain.DetailAny, 0},
		{-3, domain.DetailDetailed, 0},
	}

	for _, tt := range tests {
		if got := EstimateFetchSize(tt.target, tt.level); got != tt.want {
			t.Fatalf("EstimateFetchSize(%d, %s) = %d, want %d", tt.target, tt.level, got, tt.want)
		}
	}
}
