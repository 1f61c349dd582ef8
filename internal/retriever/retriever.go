// Package retriever turns research queries into curated resource links.
// It is the one component with a decision policy: live search first, and on
// any failure or empty result set a deterministic set of deep links into
// trusted domains, so callers always receive a non-empty result.
package retriever

import (
	"context"
	"log"
	"strings"

	"github.com/itsjustRohitch/ResourceScout/config"
	"github.com/itsjustRohitch/ResourceScout/internal/telemetry"
	"github.com/itsjustRohitch/ResourceScout/models"
	"github.com/itsjustRohitch/ResourceScout/tools/video_search"
	"github.com/itsjustRohitch/ResourceScout/tools/web_fetch"
	"github.com/itsjustRohitch/ResourceScout/tools/web_search"
	"github.com/itsjustRohitch/ResourceScout/utils"
)

type Retriever struct {
	cfg     config.SearchConfig
	web     web_search.WebSearcher
	video   video_search.VideoSearcher
	fetcher *web_fetch.Fetcher
	metrics *telemetry.Metrics
	logger  *log.Logger
}

// New builds a Retriever from config. fetcher may be nil (previews off);
// metrics may be nil in tests.
func New(cfg config.SearchConfig, web web_search.WebSearcher, video video_search.VideoSearcher, fetcher *web_fetch.Fetcher, metrics *telemetry.Metrics, logger *log.Logger) *Retriever {
	if logger == nil {
		logger = log.New(log.Writer(), "[RETRIEVE] ", log.LstdFlags)
	}
	return &Retriever{cfg: cfg, web: web, video: video, fetcher: fetcher, metrics: metrics, logger: logger}
}

// NewFromConfig wires the configured providers.
func NewFromConfig(cfg config.SearchConfig, metrics *telemetry.Metrics, logger *log.Logger) (*Retriever, error) {
	web, err := web_search.NewWebSearcher(web_search.Provider(cfg.WebProvider), cfg.SerperAPIKey)
	if err != nil {
		return nil, err
	}
	video, err := video_search.NewVideoSearcher(video_search.Provider(cfg.VideoProvider))
	if err != nil {
		return nil, err
	}
	var fetcher *web_fetch.Fetcher
	if cfg.EnrichPreviews {
		fetcher = web_fetch.NewFetcher(cfg.Timeout, 0)
	}
	return New(cfg, web, video, fetcher, metrics, logger), nil
}

// Fetch runs web and video search for the given queries. It never returns an
// error and its article set is never empty: provider failures and empty
// result sets are swallowed and replaced with fallback links.
func (r *Retriever) Fetch(ctx context.Context, webQuery, videoQuery string, category models.Category) (articles, videos []models.ResourceLink) {
	articles = r.searchWeb(ctx, webQuery, category)
	if len(articles) == 0 {
		articles = r.FallbackLinks(webQuery)
	}
	videos = r.searchVideos(ctx, videoQuery)
	r.enrich(ctx, articles)
	return articles, videos
}

// searchWeb tries a trusted-site biased query first, then an unbiased one.
// Titles that are not plain English are dropped.
func (r *Retriever) searchWeb(ctx context.Context, query string, category models.Category) []models.ResourceLink {
	sites := r.trustedSites(category)
	if len(sites) > 4 {
		sites = sites[:4]
	}

	for _, biased := range []bool{true, false} {
		attempt := sites
		if !biased {
			attempt = nil
		}
		results, err := r.web.Discover(ctx, query, r.cfg.MaxWebResults, attempt, r.cfg.Region)
		if err != nil {
			r.logger.Printf("web search failed (biased=%v): %v", biased, err)
			if r.metrics != nil {
				r.metrics.SearchFailures.WithLabelValues("web").Inc()
			}
			continue
		}
		var links []models.ResourceLink
		for _, res := range results {
			if res.URL == "" || !utils.IsEnglish(res.Title) {
				continue
			}
			links = append(links, models.ResourceLink{
				Title:   res.Title,
				URL:     res.URL,
				Excerpt: res.Snippet,
				Source:  models.SourceArticle,
			})
		}
		if len(links) > 0 {
			return links
		}
	}
	return nil
}

func (r *Retriever) searchVideos(ctx context.Context, query string) []models.ResourceLink {
	results, err := r.video.Discover(ctx, query, r.cfg.MaxVideoResults)
	if err != nil {
		r.logger.Printf("video search failed: %v", err)
		if r.metrics != nil {
			r.metrics.SearchFailures.WithLabelValues("video").Inc()
		}
		return nil
	}
	var links []models.ResourceLink
	for _, v := range results {
		if v.URL == "" {
			continue
		}
		links = append(links, models.ResourceLink{
			Title:     v.Title,
			URL:       v.URL,
			Thumbnail: v.Thumbnail,
			Source:    models.SourceVideo,
		})
	}
	return links
}

func (r *Retriever) trustedSites(category models.Category) []string {
	if sites, ok := r.cfg.TrustedSites[strings.ToLower(string(category))]; ok {
		return sites
	}
	return r.cfg.TrustedSites["general"]
}

// enrich attaches a readable excerpt to the top article when previews are
// enabled. Enrichment failures are ignored.
func (r *Retriever) enrich(ctx context.Context, articles []models.ResourceLink) {
	if r.fetcher == nil || len(articles) == 0 || articles[0].Excerpt != "" {
		return
	}
	if articles[0].Source == models.SourceFallback {
		return
	}
	res, err := r.fetcher.Exec(ctx, articles[0].URL)
	if err != nil {
		r.logger.Printf("preview fetch failed for %s: %v", articles[0].URL, err)
		return
	}
	articles[0].Excerpt = res.Excerpt
}
