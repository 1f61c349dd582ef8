// Package scout sequences the per-turn pipeline: cache lookup, the
// Architect/Writer brains, resource retrieval, and cache write-back.
package scout

import (
	"context"
	"log"
	"strings"

	"github.com/itsjustRohitch/ResourceScout/internal/cache"
	"github.com/itsjustRohitch/ResourceScout/internal/retriever"
	"github.com/itsjustRohitch/ResourceScout/internal/session"
	"github.com/itsjustRohitch/ResourceScout/internal/telemetry"
	"github.com/itsjustRohitch/ResourceScout/models"
	"github.com/itsjustRohitch/ResourceScout/provider"
)

// Quick commands routed without intent classification.
const (
	CmdSummarize = "Summarize the uploaded documents."
	CmdQuiz      = "Generate a quiz based on the context."
)

type Engine struct {
	llm       provider.Provider
	retriever *retriever.Retriever
	cache     cache.Cache
	metrics   *telemetry.Metrics
	logger    *log.Logger
}

func NewEngine(llm provider.Provider, r *retriever.Retriever, c cache.Cache, metrics *telemetry.Metrics, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(log.Writer(), "[SCOUT] ", log.LstdFlags)
	}
	return &Engine{llm: llm, retriever: r, cache: c, metrics: metrics, logger: logger}
}

// WithLLM returns a copy of the engine bound to a different provider. The
// server uses it to honour a session-scoped user API key.
func (e *Engine) WithLLM(llm provider.Provider) *Engine {
	clone := *e
	clone.llm = llm
	return &clone
}

// Handle processes one user turn. The only errors it surfaces are Writer
// exhaustion; search failures become fallback links and Architect failures
// downgrade to the direct Writer route.
func (e *Engine) Handle(ctx context.Context, sess *session.Session, query string) (*models.ResourceResult, error) {
	query = strings.TrimSpace(query)
	docContext := sess.RelevantContext(query, analysisContextBudget)

	key := cache.Key(query, docContext)
	if res, ok := e.cache.Get(ctx, key); ok {
		if e.metrics != nil {
			e.metrics.CacheHits.Inc()
		}
		return res, nil
	}
	if e.metrics != nil {
		e.metrics.CacheMisses.Inc()
	}

	var (
		res *models.ResourceResult
		err error
	)
	switch query {
	case CmdSummarize:
		res, err = e.summarize(ctx, docContext)
	case CmdQuiz:
		res, err = e.quiz(ctx, docContext)
	default:
		res, err = e.research(ctx, query, docContext)
	}
	if err != nil {
		return nil, err
	}

	e.cache.Set(ctx, key, res)
	return res, nil
}

// summarize extracts a technical syllabus and forces retrieval on the
// hardest topic the Writer reports via the SEARCH_QUERY trailer.
func (e *Engine) summarize(ctx context.Context, docContext string) (*models.ResourceResult, error) {
	full, err := e.generate(ctx, summarizePrompt(docContext))
	if err != nil {
		return nil, err
	}

	summary, topic := splitSearchTag(full)
	articles, videos := e.retriever.Fetch(ctx, topic, topic, models.CategoryCS)
	return &models.ResourceResult{
		Explanation: summary,
		Category:    models.CategorySyllabus,
		Videos:      videos,
		Articles:    articles,
	}, nil
}

func (e *Engine) quiz(ctx context.Context, docContext string) (*models.ResourceResult, error) {
	text, err := e.generate(ctx, quizPrompt(docContext))
	if err != nil {
		return nil, err
	}
	return &models.ResourceResult{Explanation: text, Category: models.CategoryQuiz}, nil
}

// research runs the Architect brain and, on success, the standard flow.
// Architect exhaustion downgrades to a direct Writer answer with retrieval
// on the raw query.
func (e *Engine) research(ctx context.Context, query, docContext string) (*models.ResourceResult, error) {
	decision, err := e.llm.Analyze(ctx, query, docContext)
	if e.metrics != nil {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		e.metrics.LLMCalls.WithLabelValues("architect", outcome).Inc()
	}
	if err != nil {
		e.logger.Printf("analysis failed, switching to direct generation: %v", err)
		return e.direct(ctx, query, docContext)
	}

	if decision.Category == models.CategoryChat {
		explanation := decision.Explanation
		if explanation == "" {
			explanation = "Hello! How can I help you learn today?"
		}
		return &models.ResourceResult{Explanation: explanation, Category: models.CategoryChat}, nil
	}

	videoQuery := decision.VideoQuery
	if videoQuery == "" {
		videoQuery = query
	}
	webQuery := decision.WebQuery
	if webQuery == "" {
		webQuery = query
	}

	articles, videos := e.retriever.Fetch(ctx, webQuery, videoQuery, decision.Category)
	return &models.ResourceResult{
		Explanation: decision.Explanation,
		Category:    decision.Category,
		Book:        decision.Book,
		Videos:      videos,
		Articles:    articles,
	}, nil
}

// direct is the universal fallback: free-form Writer answer plus retrieval
// on the raw user query.
func (e *Engine) direct(ctx context.Context, query, docContext string) (*models.ResourceResult, error) {
	text, err := e.generate(ctx, directPrompt(docContext, query))
	if err != nil {
		return nil, err
	}
	articles, videos := e.retriever.Fetch(ctx, query, query, models.CategoryGeneral)
	return &models.ResourceResult{
		Explanation: text,
		Category:    models.CategoryGeneral,
		Videos:      videos,
		Articles:    articles,
	}, nil
}

func (e *Engine) generate(ctx context.Context, prompt string) (string, error) {
	text, err := e.llm.Generate(ctx, prompt)
	if e.metrics != nil {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		e.metrics.LLMCalls.WithLabelValues("writer", outcome).Inc()
	}
	return text, err
}

// splitSearchTag separates the summary body from the SEARCH_QUERY trailer.
// Models occasionally bold the tag; that variant is normalized first.
func splitSearchTag(full string) (summary, topic string) {
	clean := strings.ReplaceAll(full, "**"+searchTag+"**", searchTag)
	clean = strings.ReplaceAll(clean, "**"+searchTag, searchTag)

	idx := strings.LastIndex(clean, searchTag)
	if idx < 0 {
		return strings.TrimSpace(full), defaultSummaryTopic
	}
	summary = strings.TrimSpace(clean[:idx])
	topic = strings.TrimSpace(clean[idx+len(searchTag):])
	if topic == "" {
		topic = defaultSummaryTopic
	}
	return summary, topic
}
