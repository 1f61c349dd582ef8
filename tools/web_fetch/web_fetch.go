package web_fetch

import (
	"context"
	"fmt"
	"net/http"
	nurl "net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
)

const (
	DefaultTimeout  = 10 * time.Second
	MaxCharsDefault = 300
)

// Result is a readable excerpt of a fetched page.
type Result struct {
	Title   string
	Excerpt string
}

// Fetcher downloads a page over plain HTTP and extracts a readable excerpt.
// It exists only to enrich link previews; callers treat every error as
// "no preview".
type Fetcher struct {
	client   *http.Client
	maxChars int
}

func NewFetcher(timeout time.Duration, maxChars int) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxChars <= 0 {
		maxChars = MaxCharsDefault
	}
	return &Fetcher{client: &http.Client{Timeout: timeout}, maxChars: maxChars}
}

func (f *Fetcher) Exec(ctx context.Context, pageURL string) (Result, error) {
	parsed, err := nurl.Parse(pageURL)
	if err != nil {
		return Result{}, fmt.Errorf("parse url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Accept", "text/html")

	resp, err := f.client.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("fetch http %d", resp.StatusCode)
	}

	article, err := readability.FromReader(resp.Body, parsed)
	if err != nil {
		return Result{}, fmt.Errorf("extract content: %w", err)
	}

	excerpt := strings.TrimSpace(article.Excerpt)
	if excerpt == "" {
		excerpt = strings.TrimSpace(article.TextContent)
	}
	excerpt = strings.Join(strings.Fields(excerpt), " ")
	if len(excerpt) > f.maxChars {
		excerpt = excerpt[:f.maxChars] + "…"
	}
	return Result{Title: article.Title, Excerpt: excerpt}, nil
}
