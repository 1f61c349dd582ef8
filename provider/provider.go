package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/itsjustRohitch/ResourceScout/config"
	"github.com/itsjustRohitch/ResourceScout/models"
	gemini_provider "github.com/itsjustRohitch/ResourceScout/provider/gemini"
	openai_provider "github.com/itsjustRohitch/ResourceScout/provider/openai"
)

// Provider is the interface every LLM implementation must satisfy. It exposes
// the two brains plus the vision mode used for document extraction:
// Analyze is the structured-output "Architect", Generate the free-form
// "Writer", Transcribe the multimodal OCR path.
type Provider interface {
	Analyze(ctx context.Context, query string, docContext string) (*models.IntentDecision, error)
	Generate(ctx context.Context, prompt string) (string, error)
	Transcribe(ctx context.Context, mime string, data []byte) (string, error)
}

// ErrNoProvider is returned when no usable LLM provider is configured.
var ErrNoProvider = errors.New("no LLM provider configured")

// New creates the configured default LLM provider.
func New(cfg config.LLMConfig) (Provider, error) {
	name := cfg.Default
	if name == "" {
		for k := range cfg.Providers {
			name = k
			break
		}
	}
	pc, ok := cfg.Providers[name]
	if !ok {
		return nil, ErrNoProvider
	}
	return NewFromProviderConfig(pc)
}

// NewFromProviderConfig creates a provider from a single provider block.
// apiKey, when non-empty, overrides the configured key; this is how a
// session-scoped user key is honoured without touching config.
func NewFromProviderConfig(pc config.LLMProvider, apiKey ...string) (Provider, error) {
	key := pc.APIKey
	if len(apiKey) > 0 && apiKey[0] != "" {
		key = apiKey[0]
	}
	switch pc.Type {
	case "gemini":
		return gemini_provider.NewClient(key, pc), nil
	case "openai":
		return openai_provider.NewClient(key, pc), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider type: %s", pc.Type)
	}
}
