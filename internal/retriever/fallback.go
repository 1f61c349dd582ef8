package retriever

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/itsjustRohitch/ResourceScout/models"
)

// FallbackLinks builds the deterministic substitute set for a topic: one
// query-templated deep link per configured trusted domain, ordered
// alphabetically by domain and capped at the configured minimum. The topic
// is URL-escaped into each template, so every link has a non-empty URL.
func (r *Retriever) FallbackLinks(topic string) []models.ResourceLink {
	templates := make([]fallbackEntry, 0, len(r.cfg.Fallback.Domains))
	for _, d := range r.cfg.Fallback.Domains {
		templates = append(templates, fallbackEntry{domain: d.Domain, title: d.Title, template: d.Template})
	}
	sort.Slice(templates, func(i, j int) bool { return templates[i].domain < templates[j].domain })

	n := r.cfg.Fallback.MinLinks
	if n <= 0 || n > len(templates) {
		n = len(templates)
	}

	escaped := url.QueryEscape(topic)
	links := make([]models.ResourceLink, 0, n)
	for _, t := range templates[:n] {
		title := t.title
		if strings.Contains(title, "%s") {
			title = fmt.Sprintf(title, topic)
		}
		if title == "" {
			title = fmt.Sprintf("Search '%s' on %s", topic, t.domain)
		}
		links = append(links, models.ResourceLink{
			Title:  title,
			URL:    fmt.Sprintf(t.template, escaped),
			Source: models.SourceFallback,
		})
	}
	if r.metrics != nil {
		r.metrics.FallbacksServed.Inc()
	}
	return links
}

type fallbackEntry struct {
	domain, title, template string
}
