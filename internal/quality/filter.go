// Package quality decides which raw candidates are worth showing and how many
// must be requested to end up with enough of them.
package quality

import (
	"randomkiwi/internal/domain"
	"randomkiwi/internal/ports"
)

// MinLength is the shortest acceptable article, in bytes of wikitext, for a detail level.
func MinLength(level domain.DetailLevel) int {
	switch level {
	case domain.DetailAny:
		return 1000
	case domain.DetailMedium:
		return 10000
	case domain.DetailDetailed:
		return 30000
	default:
		return 0
	}
}

// Filter accepts candidates against the live detail level.
type Filter struct {
	levels ports.DetailLevelProvider
}

// NewFilter panics on a nil provider; that is a wiring bug, not a runtime condition.
func NewFilter(levels ports.DetailLevelProvider) *Filter {
	if levels == nil {
		panic("quality: nil detail level provider")
	}
	return &Filter{levels: levels}
}

// Accept rejects short articles and disambiguation pages.
func (f *Filter) Accept(candidate domain.RawCandidate) bool {
	return Accepts(candidate, f.levels.DetailLevel())
}

// Accepts is the pure form of Filter.Accept.
func Accepts(candidate domain.RawCandidate, level domain.DetailLevel) bool {
	if candidate.Disambiguation {
		return false
	}
	return candidate.Length >= MinLength(level)
}
