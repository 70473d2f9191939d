package wikipedia

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"randomkiwi/internal/domain"
	"randomkiwi/internal/ports"
)

const (
	apiPath            = "/w/api.php"
	defaultUserAgent   = "randomkiwi/1.0"
	defaultMaxBatch    = 50
	defaultParallelism = 4
)

// Options tunes the MediaWiki client.
type Options struct {
	Language          string
	URLFormat         string
	UserAgent         string
	MaxBatch          int
	Parallelism       int
	RequestsPerSecond float64
}

// Client fetches random pages through the MediaWiki query API.
type Client struct {
	client      *http.Client
	base        string
	userAgent   string
	maxBatch    int
	parallelism int
	limiter     *rate.Limiter
	logger      *slog.Logger
}

var _ ports.CandidateSource = (*Client)(nil)

// NewClient wires an HTTP client; a nil client gets a 20 second timeout.
func NewClient(client *http.Client, opts Options, logger *slog.Logger) (*Client, error) {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	base, err := BaseURL(opts.Language, opts.URLFormat)
	if err != nil {
		return nil, err
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.MaxBatch <= 0 {
		opts.MaxBatch = defaultMaxBatch
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = defaultParallelism
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	return &Client{
		client:      client,
		base:        base,
		userAgent:   opts.UserAgent,
		maxBatch:    opts.MaxBatch,
		parallelism: opts.Parallelism,
		limiter:     rate.NewLimiter(limit, 1),
		logger:      logger,
	}, nil
}

// FetchRandomCandidates returns up to count random pages from namespace.
// Requests larger than the per-call limit are split into concurrent batches.
func (c *Client) FetchRandomCandidates(ctx context.Context, count int, namespace string) ([]domain.RawCandidate, error) {
	if count <= 0 {
		return nil, fmt.Errorf("candidate count must be positive, got %d", count)
	}

	batches := splitBatches(count, c.maxBatch)
	results := make([][]domain.RawCandidate, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.parallelism)
	for i, size := range batches {
		g.Go(func() error {
			pages, err := c.fetchBatch(gctx, size, namespace)
			if err != nil {
				return fmt.Errorf("batch %d: %w", i, err)
			}
			results[i] = pages
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[int]struct{}, count)
	out := make([]domain.RawCandidate, 0, count)
	for _, batch := range results {
		for _, candidate := range batch {
			if _, ok := seen[candidate.ID]; ok {
				continue
			}
			seen[candidate.ID] = struct{}{}
			out = append(out, candidate)
		}
	}

	c.debug("fetched random candidates", "requested", count, "received", len(out), "batches", len(batches))
	return out, nil
}

func (c *Client) fetchBatch(ctx context.Context, limit int, namespace string) ([]domain.RawCandidate, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait for rate limiter: %w", err)
	}

	endpoint, err := buildQueryURL(c.base, namespace, limit)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request random pages: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("wikipedia returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var payload queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if payload.Error != nil {
		return nil, fmt.Errorf("wikipedia api error %s: %s", payload.Error.Code, payload.Error.Info)
	}
	if payload.Query == nil {
		return nil, nil
	}

	return toCandidates(payload.Query.Pages), nil
}

type queryResponse struct {
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
	Query *struct {
		Pages map[string]page `json:"pages"`
	} `json:"query"`
}

type page struct {
	PageID      int        `json:"pageid"`
	Namespace   int        `json:"ns"`
	Title       string     `json:"title"`
	Length      int        `json:"length"`
	Description string     `json:"description"`
	PageProps   *pageProps `json:"pageprops"`
}

type pageProps struct {
	DisplayTitle   string  `json:"displaytitle"`
	Disambiguation *string `json:"disambiguation"`
}

func toCandidates(pages map[string]page) []domain.RawCandidate {
	out := make([]domain.RawCandidate, 0, len(pages))
	for _, p := range pages {
		candidate := domain.RawCandidate{
			ID:          p.PageID,
			Namespace:   p.Namespace,
			Title:       p.Title,
			Description: strings.TrimSpace(p.Description),
			Length:      p.Length,
		}
		if p.PageProps != nil {
			candidate.Disambiguation = p.PageProps.Disambiguation != nil
			candidate.DisplayTitle = plainText(p.PageProps.DisplayTitle)
		}
		out = append(out, candidate)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// plainText strips the markup MediaWiki puts in display titles, e.g. <i>Title</i>.
func plainText(fragment string) string {
	if fragment == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func buildQueryURL(base, namespace string, limit int) (string, error) {
	parsed, err := url.Parse(base + apiPath)
	if err != nil {
		return "", fmt.Errorf("invalid api url %s: %w", base, err)
	}

	query := url.Values{}
	query.Set("action", "query")
	query.Set("format", "json")
	query.Set("generator", "random")
	query.Set("grnnamespace", namespace)
	query.Set("grnlimit", strconv.Itoa(limit))
	query.Set("grnfilterredir", "nonredirects")
	query.Set("prop", "pageprops|info|description")
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func splitBatches(count, maxBatch int) []int {
	batches := make([]int, 0, count/maxBatch+1)
	for count > 0 {
		size := min(count, maxBatch)
		batches = append(batches, size)
		count -= size
	}
	return batches
}

func (c *Client) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
