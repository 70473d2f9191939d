package wikipedia

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"randomkiwi/internal/domain"
)

const samplePages = `{
  "batchcomplete": "",
  "query": {
    "pages": {
      "736": {
        "pageid": 736, "ns": 0, "title": "Albert Einstein", "length": 180000,
        "description": "German-born theoretical physicist",
        "pageprops": {"wikibase_item": "Q937"}
      },
      "12": {
        "pageid": 12, "ns": 0, "title": "Mercury",
        "length": 2400,
        "pageprops": {"disambiguation": "", "displaytitle": "Mercury"}
      },
      "99": {
        "pageid": 99, "ns": 0, "title": "HMS Beagle", "length": 15000,
        "pageprops": {"displaytitle": "<i>HMS Beagle</i>"}
      }
    }
  }
}`

func newTestClient(t *testing.T, server *httptest.Server, opts Options) *Client {
	t.Helper()

	opts.URLFormat = server.URL
	client, err := NewClient(server.Client(), opts, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestBuildQueryURL(t *testing.T) {
	t.Parallel()

	u, err := buildQueryURL("https://fr.m.wikipedia.org", "0", 25)
	if err != nil {
		t.Fatalf("buildQueryURL returned error: %v", err)
	}

	parsed, err := url.Parse(u)
	if err != nil {
		t.Fatalf("parse result: %v", err)
	}
	if parsed.Host != "fr.m.wikipedia.org" || parsed.Path != "/w/api.php" {
		t.Fatalf("unexpected endpoint: %s", u)
	}

	q := parsed.Query()
	want := map[string]string{
		"action":         "query",
		"generator":      "random",
		"grnnamespace":   "0",
		"grnlimit":       "25",
		"grnfilterredir": "nonredirects",
		"prop":           "pageprops|info|description",
		"format":         "json",
	}
	for key, value := range want {
		if got := q.Get(key); got != value {
			t.Fatalf("expected %s=%s, got %s", key, value, got)
		}
	}
}

func TestFetchRandomCandidatesDecodesPages(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "randomkiwi-test" {
			t.Errorf("unexpected user agent %q", got)
		}
		_, _ = w.Write([]byte(samplePages))
	}))
	defer server.Close()

	client := newTestClient(t, server, Options{UserAgent: "randomkiwi-test"})
	got, err := client.FetchRandomCandidates(context.Background(), 3, "0")
	if err != nil {
		t.Fatalf("FetchRandomCandidates: %v", err)
	}

	want := []domain.RawCandidate{
		{ID: 12, Title: "Mercury", DisplayTitle: "Mercury", Length: 2400, Disambiguation: true},
		{ID: 99, Title: "HMS Beagle", DisplayTitle: "HMS Beagle", Length: 15000},
		{ID: 736, Title: "Albert Einstein", Description: "German-born theoretical physicist", Length: 180000},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("candidates mismatch (-want +got):\n%s", diff)
	}
}

func TestFetchRandomCandidatesSplitsLargeRequests(t *testing.T) {
	t.Parallel()

	var (
		mu     sync.Mutex
		limits []int
		nextID = 1
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit, err := strconv.Atoi(r.URL.Query().Get("grnlimit"))
		if err != nil {
			http.Error(w, "bad limit", http.StatusBadRequest)
			return
		}

		mu.Lock()
		limits = append(limits, limit)
		start := nextID
		nextID += limit
		mu.Unlock()

		pages := make([]string, 0, limit)
		for id := start; id < start+limit; id++ {
			pages = append(pages, fmt.Sprintf(`"%d":{"pageid":%d,"ns":0,"title":"Page %d","length":4000}`, id, id, id))
		}
		_, _ = fmt.Fprintf(w, `{"query":{"pages":{%s}}}`, strings.Join(pages, ","))
	}))
	defer server.Close()

	client := newTestClient(t, server, Options{MaxBatch: 50, Parallelism: 2})
	got, err := client.FetchRandomCandidates(context.Background(), 120, "0")
	if err != nil {
		t.Fatalf("FetchRandomCandidates: %v", err)
	}
	if len(got) != 120 {
		t.Fatalf("expected 120 candidates, got %d", len(got))
	}

	mu.Lock()
	defer mu.Unlock()
	total := 0
	for _, limit := range limits {
		if limit > 50 {
			t.Fatalf("batch of %d exceeds the per-request cap", limit)
		}
		total += limit
	}
	if len(limits) != 3 || total != 120 {
		t.Fatalf("expected 3 batches totalling 120, got %v", limits)
	}
}

func TestFetchRandomCandidatesErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr string
	}{
		{
			name: "http status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "maintenance", http.StatusServiceUnavailable)
			},
			wantErr: "503",
		},
		{
			name: "api error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"error":{"code":"badvalue","info":"Unrecognized value"}}`))
			},
			wantErr: "badvalue",
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"query":`))
			},
			wantErr: "decode response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := newTestClient(t, server, Options{})
			_, err := client.FetchRandomCandidates(context.Background(), 5, "0")
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestFetchRandomCandidatesHonoursCancellation(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(samplePages))
	}))
	defer server.Close()

	client := newTestClient(t, server, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.FetchRandomCandidates(ctx, 3, "0"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestFetchRandomCandidatesRejectsNonPositiveCount(t *testing.T) {
	t.Parallel()

	client, err := NewClient(nil, Options{}, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.FetchRandomCandidates(context.Background(), 0, "0"); err == nil {
		t.Fatal("expected error for zero count")
	}
}

func TestSplitBatches(t *testing.T) {
	t.Parallel()

	if diff := cmp.Diff([]int{50, 50, 20}, splitBatches(120, 50)); diff != "" {
		t.Fatalf("splitBatches mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{7}, splitBatches(7, 50)); diff != "" {
		t.Fatalf("splitBatches mismatch (-want +got):\n%s", diff)
	}
}
