package web_search

import (
	"context"

	"github.com/itsjustRohitch/ResourceScout/tools/web_search/duckduckgo"
	"github.com/itsjustRohitch/ResourceScout/tools/web_search/models"
	"github.com/itsjustRohitch/ResourceScout/tools/web_search/serper"
)

// WebSearcher is the contract for web search providers. region is a fixed
// locale filter (e.g. "us-en"); sites, when non-empty, biases results
// towards those domains.
type WebSearcher interface {
	Discover(ctx context.Context, q string, k int, sites []string, region string) ([]models.Result, error)
}

type Provider string

const (
	DuckDuckGoProvider Provider = "duckduckgo"
	SerperProvider     Provider = "serper"
)

type Error struct{ Msg string }

func (e *Error) Error() string { return e.Msg }

var ErrUnsupportedProvider = &Error{"unsupported provider"}

func NewWebSearcher(provider Provider, apiKey string) (WebSearcher, error) {
	switch provider {
	case DuckDuckGoProvider:
		return duckduckgo.NewSearch(), nil
	case SerperProvider:
		return serper.Search{ApiKey: apiKey}, nil
	default:
		return nil, ErrUnsupportedProvider
	}
}
