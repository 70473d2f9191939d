package domain

import (
	"fmt"
	"strings"
	"time"
)

// ArticleMetadata is an accepted article, ready to be shown to the user.
type ArticleMetadata struct {
	ID           int
	Title        string
	DisplayTitle string
	Description  string
	URL          string
	Namespace    int
}

// Heading returns the title meant for display.
func (a ArticleMetadata) Heading() string {
	if a.DisplayTitle != "" {
		return a.DisplayTitle
	}
	return a.Title
}

// RawCandidate is an unfiltered record returned by a candidate source.
type RawCandidate struct {
	ID             int
	Namespace      int
	Title          string
	DisplayTitle   string
	Description    string
	Length         int
	Disambiguation bool
}

// DetailLevel controls how long an article must be to be shown.
type DetailLevel int

const (
	DetailUnknown DetailLevel = iota
	DetailAny
	DetailMedium
	DetailDetailed
)

func (d DetailLevel) String() string {
	switch d {
	case DetailAny:
		return "any"
	case DetailMedium:
		return "medium"
	case DetailDetailed:
		return "detailed"
	default:
		return "unknown"
	}
}

// ParseDetailLevel maps a config or CLI value onto a DetailLevel.
func ParseDetailLevel(value string) (DetailLevel, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "any":
		return DetailAny, nil
	case "medium":
		return DetailMedium, nil
	case "detailed":
		return DetailDetailed, nil
	case "", "unknown":
		return DetailUnknown, nil
	default:
		return DetailUnknown, fmt.Errorf("unknown detail level %q", value)
	}
}

// Bookmark is an article the user chose to keep.
type Bookmark struct {
	Identifier  string
	ArticleID   int
	Title       string
	Description string
	URL         string
	AddedAt     time.Time
}

// Preferences holds user-tunable settings that survive restarts.
type Preferences struct {
	Language    string
	DetailLevel DetailLevel
}
