package openai_provider

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/itsjustRohitch/ResourceScout/config"
	"github.com/itsjustRohitch/ResourceScout/models"
	"github.com/itsjustRohitch/ResourceScout/provider/prompts"
)

const defaultBaseURL = "https://api.openai.com/v1"

// retryBase scales the linear wait between attempts; tests shrink it.
var retryBase = 5 * time.Second

// Client implements the provider interface against the OpenAI chat
// completions API. The Architect brain uses json_object response format,
// the Writer plain text, and Transcribe an image_url content part.
type Client struct {
	apiKey      string
	baseURL     string
	model       string
	visionModel string
	temperature float64
	maxTokens   int
	maxRetries  int
	httpClient  *http.Client
}

// NewClient creates a new OpenAI client from a provider config block.
func NewClient(apiKey string, cfg config.LLMProvider) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	visionModel := cfg.VisionModel
	if visionModel == "" {
		visionModel = model
	}
	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = 3
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		apiKey:      apiKey,
		baseURL:     baseURL,
		model:       model,
		visionModel: visionModel,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		maxRetries:  retries,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

type message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type request struct {
	Model          string          `json:"model"`
	Messages       []message       `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type response struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Analyze runs the Architect brain using json_object response format. A
// reply that does not unmarshal into an IntentDecision burns a retry
// attempt like any other upstream failure.
func (c *Client) Analyze(ctx context.Context, query string, docContext string) (*models.IntentDecision, error) {
	var decision models.IntentDecision
	_, err := c.complete(ctx, request{
		Model:          c.model,
		Messages:       []message{{Role: "user", Content: prompts.Analyze(query, docContext)}},
		Temperature:    c.temperature,
		MaxTokens:      c.maxTokens,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}, func(text string) error {
		decision = models.IntentDecision{}
		return json.Unmarshal([]byte(text), &decision)
	})
	if err != nil {
		return nil, err
	}
	if !decision.Category.Valid() {
		decision.Category = models.CategoryGeneral
	}
	return &decision, nil
}

// Generate runs the Writer brain.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	return c.complete(ctx, request{
		Model:       c.model,
		Messages:    []message{{Role: "user", Content: prompt}},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}, nil)
}

// Transcribe sends the document as a data URL through the vision model.
func (c *Client) Transcribe(ctx context.Context, mime string, data []byte) (string, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data))
	return c.complete(ctx, request{
		Model: c.visionModel,
		Messages: []message{{Role: "user", Content: []contentPart{
			{Type: "text", Text: prompts.Transcribe},
			{Type: "image_url", ImageURL: &imageURL{URL: dataURL}},
		}}},
	}, nil)
}

// complete posts a chat completion, retrying quota/429, transient 5xx and
// malformed replies (undecodable body, empty choices, or a non-nil decode
// rejecting the content) up to the fixed limit.
func (c *Client) complete(ctx context.Context, payload request, decode func(string) error) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("openai API key not configured")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := time.Duration(attempt) * retryBase
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(wait):
			}
		}

		req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		var out response
		decodeErr := json.NewDecoder(resp.Body).Decode(&out)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("openai status %d", resp.StatusCode)
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				continue
			}
			return "", lastErr
		}
		if decodeErr != nil {
			lastErr = fmt.Errorf("decode: %w", decodeErr)
			continue
		}
		if len(out.Choices) == 0 {
			lastErr = fmt.Errorf("openai returned no choices")
			continue
		}
		text := out.Choices[0].Message.Content
		if decode != nil {
			if err := decode(text); err != nil {
				lastErr = fmt.Errorf("malformed analysis response: %w", err)
				continue
			}
		}
		return text, nil
	}
	return "", fmt.Errorf("openai completion failed after %d attempts: %w", c.maxRetries, lastErr)
}
