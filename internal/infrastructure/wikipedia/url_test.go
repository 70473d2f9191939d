package wikipedia

import "testing"

func TestBuildArticleURL(t *testing.T) {
	t.Parallel()

	builder, err := NewURLBuilder("fr", "")
	if err != nil {
		t.Fatalf("NewURLBuilder: %v", err)
	}

	tests := []struct {
		title string
		want  string
	}{
		{"Tour Eiffel", "https://fr.m.wikipedia.org/wiki/Tour_Eiffel"},
		{"AC/DC", "https://fr.m.wikipedia.org/wiki/AC%2FDC"},
		{"Pierre & Marie", "https://fr.m.wikipedia.org/wiki/Pierre_&_Marie"},
	}
	for _, tt := range tests {
		got, err := builder.BuildArticleURL(tt.title)
		if err != nil {
			t.Fatalf("BuildArticleURL(%q): %v", tt.title, err)
		}
		if got != tt.want {
			t.Fatalf("BuildArticleURL(%q) = %s, want %s", tt.title, got, tt.want)
		}
	}
}

func TestBuildArticleURLRejectsBlankTitle(t *testing.T) {
	t.Parallel()

	builder, err := NewURLBuilder("en", "")
	if err != nil {
		t.Fatalf("NewURLBuilder: %v", err)
	}
	for _, title := range []string{"", "   "} {
		if _, err := builder.BuildArticleURL(title); err == nil {
			t.Fatalf("expected error for %q", title)
		}
	}
}

func TestBaseURLRequiresAbsoluteURL(t *testing.T) {
	t.Parallel()

	if _, err := BaseURL("en", "wikipedia.org/%s"); err == nil {
		t.Fatal("expected error for relative url format")
	}
	got, err := BaseURL("", "")
	if err != nil {
		t.Fatalf("BaseURL: %v", err)
	}
	if got != "https://en.m.wikipedia.org" {
		t.Fatalf("unexpected default base %s", got)
	}
}
