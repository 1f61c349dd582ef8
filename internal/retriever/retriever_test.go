package retriever

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/itsjustRohitch/ResourceScout/config"
	"github.com/itsjustRohitch/ResourceScout/models"
	vmodels "github.com/itsjustRohitch/ResourceScout/tools/video_search/models"
	wmodels "github.com/itsjustRohitch/ResourceScout/tools/web_search/models"
)

type fakeWeb struct {
	calls   []fakeWebCall
	results map[bool][]wmodels.Result // keyed by biased (sites non-empty)
	err     error
}

type fakeWebCall struct {
	q     string
	sites []string
}

func (f *fakeWeb) Discover(ctx context.Context, q string, k int, sites []string, region string) ([]wmodels.Result, error) {
	f.calls = append(f.calls, fakeWebCall{q: q, sites: sites})
	if f.err != nil {
		return nil, f.err
	}
	return f.results[len(sites) > 0], nil
}

type fakeVideo struct {
	results []vmodels.Video
	err     error
}

func (f *fakeVideo) Discover(ctx context.Context, q string, k int) ([]vmodels.Video, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func testConfig() config.SearchConfig {
	return config.SearchConfig{
		Region:          "us-en",
		MaxWebResults:   4,
		MaxVideoResults: 2,
		Timeout:         time.Second,
		TrustedSites: map[string][]string{
			"cs":      {"a.org", "b.org", "c.org", "d.org", "e.org"},
			"general": {"g.org"},
		},
		Fallback: config.FallbackConfig{
			MinLinks: 2,
			Domains: []config.FallbackTemplate{
				{Domain: "scholar.google.com", Title: "Academic papers: %s", Template: "https://scholar.google.com/scholar?q=%s"},
				{Domain: "khanacademy.org", Title: "Learn '%s' on Khan Academy", Template: "https://www.khanacademy.org/search?page_search_query=%s"},
			},
		},
	}
}

func newTestRetriever(cfg config.SearchConfig, web *fakeWeb, video *fakeVideo) *Retriever {
	return New(cfg, web, video, nil, nil, log.New(io.Discard, "", 0))
}

func TestFetchMapsLiveResults(t *testing.T) {
	web := &fakeWeb{results: map[bool][]wmodels.Result{
		true: {
			{Title: "Sorting algorithms", URL: "https://a.org/sort", Snippet: "quicksort"},
			{Title: "非英語タイトル", URL: "https://b.org/x"},
		},
	}}
	video := &fakeVideo{results: []vmodels.Video{
		{Title: "Sorting explained", URL: "https://www.youtube.com/watch?v=abc", Thumbnail: "https://i.ytimg.com/abc.jpg"},
	}}
	r := newTestRetriever(testConfig(), web, video)

	articles, videos := r.Fetch(context.Background(), "sorting", "sorting", models.CategoryCS)

	if len(articles) != 1 {
		t.Fatalf("expected 1 article (non-English dropped), got %d", len(articles))
	}
	if articles[0].Source != models.SourceArticle || articles[0].URL != "https://a.org/sort" {
		t.Fatalf("unexpected article: %+v", articles[0])
	}
	if len(videos) != 1 || videos[0].Source != models.SourceVideo {
		t.Fatalf("unexpected videos: %+v", videos)
	}

	// the first attempt is biased to at most 4 trusted sites
	if len(web.calls) == 0 || len(web.calls[0].sites) != 4 {
		t.Fatalf("expected trusted-site biased first attempt, got %+v", web.calls)
	}
}

func TestFetchFallsBackOnEmptyResults(t *testing.T) {
	cfg := testConfig()
	web := &fakeWeb{results: map[bool][]wmodels.Result{}}
	r := newTestRetriever(cfg, web, &fakeVideo{})

	articles, _ := r.Fetch(context.Background(), "linear algebra", "linear algebra", models.CategoryMath)

	if len(articles) != cfg.Fallback.MinLinks {
		t.Fatalf("expected exactly %d fallback links, got %d", cfg.Fallback.MinLinks, len(articles))
	}
	// deterministic ordering: alphabetical by domain
	if !strings.Contains(articles[0].URL, "khanacademy.org") || !strings.Contains(articles[1].URL, "scholar.google.com") {
		t.Fatalf("fallback links out of order: %+v", articles)
	}
	for _, a := range articles {
		if a.Source != models.SourceFallback {
			t.Fatalf("fallback link mislabelled: %+v", a)
		}
		if a.URL == "" {
			t.Fatal("fallback link with empty URL")
		}
		if !strings.Contains(a.URL, "linear+algebra") {
			t.Fatalf("query not templated into %s", a.URL)
		}
	}
	// two attempts were made before falling back
	if len(web.calls) != 2 {
		t.Fatalf("expected biased then general attempt, got %d calls", len(web.calls))
	}
	if len(web.calls[1].sites) != 0 {
		t.Fatal("second attempt must be unbiased")
	}
}

func TestFetchSwallowsProviderErrors(t *testing.T) {
	web := &fakeWeb{err: errors.New("rate limited")}
	video := &fakeVideo{err: errors.New("timeout")}
	r := newTestRetriever(testConfig(), web, video)

	articles, videos := r.Fetch(context.Background(), "topic", "topic", models.CategoryGeneral)

	if len(articles) == 0 {
		t.Fatal("articles must never be empty")
	}
	for _, a := range articles {
		if a.Source != models.SourceFallback {
			t.Fatalf("expected fallback links on provider error, got %+v", a)
		}
	}
	if len(videos) != 0 {
		t.Fatalf("video failures should yield no videos, got %+v", videos)
	}
}

func TestFallbackLinksDeterministic(t *testing.T) {
	r := newTestRetriever(testConfig(), &fakeWeb{}, &fakeVideo{})
	a := r.FallbackLinks("quantum computing")
	b := r.FallbackLinks("quantum computing")
	if fmt.Sprint(a) != fmt.Sprint(b) {
		t.Fatal("fallback links must be deterministic")
	}
	if a[0].Title != "Learn 'quantum computing' on Khan Academy" {
		t.Fatalf("unexpected fallback title: %q", a[0].Title)
	}
}

func TestUnknownCategoryUsesGeneralSites(t *testing.T) {
	web := &fakeWeb{results: map[bool][]wmodels.Result{
		true: {{Title: "ok", URL: "https://g.org/x"}},
	}}
	r := newTestRetriever(testConfig(), web, &fakeVideo{})

	r.Fetch(context.Background(), "q", "q", models.Category("history"))
	if len(web.calls) == 0 || len(web.calls[0].sites) != 1 || web.calls[0].sites[0] != "g.org" {
		t.Fatalf("expected general trusted sites, got %+v", web.calls)
	}
}
