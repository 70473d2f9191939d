package wikipedia

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"randomkiwi/internal/ports"
)

const (
	defaultLanguage  = "en"
	defaultURLFormat = "https://%s.m.wikipedia.org"
)

// BaseURL renders the wiki root for a language. A format without a %s verb is used verbatim.
func BaseURL(language, format string) (string, error) {
	if format == "" {
		format = defaultURLFormat
	}
	if language == "" {
		language = defaultLanguage
	}

	raw := format
	if strings.Contains(format, "%s") {
		raw = fmt.Sprintf(format, language)
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid wiki url %s: %w", raw, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("wiki url %s must be absolute", raw)
	}
	return strings.TrimSuffix(parsed.String(), "/"), nil
}

// URLBuilder resolves article titles to /wiki/ links.
type URLBuilder struct {
	base string
}

var _ ports.URLResolver = (*URLBuilder)(nil)

// NewURLBuilder fixes the language for every URL it builds.
func NewURLBuilder(language, format string) (*URLBuilder, error) {
	base, err := BaseURL(language, format)
	if err != nil {
		return nil, err
	}
	return &URLBuilder{base: base}, nil
}

// BuildArticleURL replaces spaces with underscores and escapes the title.
func (b *URLBuilder) BuildArticleURL(title string) (string, error) {
	if strings.TrimSpace(title) == "" {
		return "", errors.New("article title cannot be empty")
	}
	formatted := strings.ReplaceAll(title, " ", "_")
	return b.base + "/wiki/" + url.PathEscape(formatted), nil
}
