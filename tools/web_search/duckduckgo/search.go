package duckduckgo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/itsjustRohitch/ResourceScout/tools/web_search/models"
)

const endpoint = "https://lite.duckduckgo.com/lite/"

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// limiter enforces 1 query per second across all Search instances; the lite
// endpoint bans anything faster.
var limiter = rate.NewLimiter(rate.Every(time.Second), 1)

// Search scrapes the DuckDuckGo lite HTML interface. No API key needed.
type Search struct {
	client *http.Client
}

func NewSearch() *Search {
	return &Search{client: &http.Client{Timeout: 15 * time.Second}}
}

// NewSearchWithClient overrides the HTTP client, used by tests.
func NewSearchWithClient(client *http.Client) *Search {
	return &Search{client: client}
}

func (s *Search) Discover(ctx context.Context, q string, k int, sites []string, region string) ([]models.Result, error) {
	if strings.TrimSpace(q) == "" {
		return nil, fmt.Errorf("query is empty")
	}
	if len(sites) > 0 {
		parts := make([]string, 0, len(sites))
		for _, d := range sites {
			parts = append(parts, "site:"+d)
		}
		q = fmt.Sprintf("%s (%s)", q, strings.Join(parts, " OR "))
	}

	if err := limiter.Wait(ctx); err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("q", q)
	if region != "" {
		form.Set("kl", region)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("duckduckgo http %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}
	return parseResults(doc, k), nil
}

// parseResults walks the lite page: result links carry class result-link,
// the snippet sits in the following result-snippet cell.
func parseResults(doc *goquery.Document, k int) []models.Result {
	var out []models.Result
	doc.Find("a.result-link").EachWithBreak(func(i int, a *goquery.Selection) bool {
		href, ok := a.Attr("href")
		if !ok {
			return true
		}
		title := strings.TrimSpace(a.Text())
		if title == "" || href == "" {
			return true
		}
		snippet := strings.TrimSpace(a.Closest("tr").NextFiltered("tr").Find(".result-snippet").Text())
		out = append(out, models.Result{Title: title, URL: cleanURL(href), Snippet: snippet})
		return len(out) < k
	})
	return out
}

// cleanURL unwraps the //duckduckgo.com/l/?uddg= redirect wrapper when present.
func cleanURL(href string) string {
	if !strings.Contains(href, "duckduckgo.com/l/") {
		return href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}
