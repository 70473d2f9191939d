package domain

import "time"

// NavigationType is the direction of a move through the catalog.
type NavigationType int

const (
	NavigateNext NavigationType = iota + 1
	NavigatePrevious
)

func (n NavigationType) String() string {
	switch n {
	case NavigateNext:
		return "next"
	case NavigatePrevious:
		return "previous"
	default:
		return "unknown"
	}
}

// NavigationPattern classifies how a user moves through articles.
type NavigationPattern int

const (
	PatternUnknown NavigationPattern = iota
	PatternReviewer
	PatternExplorer
	PatternReader
)

func (p NavigationPattern) String() string {
	switch p {
	case PatternReviewer:
		return "reviewer"
	case PatternExplorer:
		return "explorer"
	case PatternReader:
		return "reader"
	default:
		return "unknown"
	}
}

// NavigationEvent records a single tracked move.
type NavigationEvent struct {
	Type     NavigationType
	TargetID int
	At       time.Time
}
