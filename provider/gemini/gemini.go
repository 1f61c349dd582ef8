package gemini_provider

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/itsjustRohitch/ResourceScout/config"
	"github.com/itsjustRohitch/ResourceScout/models"
	"github.com/itsjustRohitch/ResourceScout/provider/prompts"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// retryBase scales the linear wait between attempts; tests shrink it.
var retryBase = 5 * time.Second

// Client talks to the Gemini generateContent API. It holds two generation
// configs for the same model: the Architect (JSON-enforced output) and the
// Writer (free-form text).
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

// NewClient creates a new Gemini client from a provider config block.
func NewClient(apiKey string, cfg config.LLMProvider) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-2.5-flash"
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

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"` // base64
}

type content struct {
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMIMEType string  `json:"response_mime_type,omitempty"`
	Temperature      float64 `json:"temperature,omitempty"`
	MaxOutputTokens  int     `json:"maxOutputTokens,omitempty"`
}

type request struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type response struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Analyze runs the Architect brain: the model is forced into JSON output and
// the reply is parsed into an IntentDecision. A malformed reply burns a
// retry attempt like any other upstream failure; only exhaustion surfaces,
// and the caller decides whether to downgrade to the Writer.
func (c *Client) Analyze(ctx context.Context, query string, docContext string) (*models.IntentDecision, error) {
	prompt := prompts.Analyze(query, docContext)
	var decision models.IntentDecision
	_, err := c.generate(ctx, c.model, []part{{Text: prompt}}, &generationConfig{
		ResponseMIMEType: "application/json",
		Temperature:      c.temperature,
		MaxOutputTokens:  c.maxTokens,
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

// Generate runs the Writer brain for free-form text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, c.model, []part{{Text: prompt}}, &generationConfig{
		Temperature:     c.temperature,
		MaxOutputTokens: c.maxTokens,
	}, nil)
}

// Transcribe sends raw document bytes through the vision model and returns
// the extracted text.
func (c *Client) Transcribe(ctx context.Context, mime string, data []byte) (string, error) {
	parts := []part{
		{Text: prompts.Transcribe},
		{InlineData: &inlineData{MIMEType: mime, Data: base64.StdEncoding.EncodeToString(data)}},
	}
	return c.generate(ctx, c.visionModel, parts, nil, nil)
}

// generate calls generateContent, retrying a fixed number of times with a
// short linear wait. Retried: quota/429, transient 5xx, and malformed
// replies (an undecodable candidate body, or a non-nil decode rejecting the
// reply text). Other HTTP errors fail fast.
func (c *Client) generate(ctx context.Context, model string, parts []part, genCfg *generationConfig, decode func(string) error) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("gemini API key not configured")
	}

	body, err := json.Marshal(request{Contents: []content{{Parts: parts}}, GenerationConfig: genCfg})
	if err != nil {
		return "", fmt.Errorf("marshal: %w", err)
	}
	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, model)

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

		req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		text, err := decodeResponse(resp)
		if err == nil {
			if decode == nil {
				return text, nil
			}
			derr := decode(text)
			if derr == nil {
				return text, nil
			}
			err = fmt.Errorf("malformed analysis response: %w", derr)
		}
		lastErr = err
		if !retryable(resp.StatusCode) && resp.StatusCode != http.StatusOK {
			return "", err
		}
	}
	return "", fmt.Errorf("gemini generate failed after %d attempts: %w", c.maxRetries, lastErr)
}

func decodeResponse(resp *http.Response) (string, error) {
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	var out response
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("gemini status %d: decode: %w", resp.StatusCode, err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("gemini status %d: %s", out.Error.Code, out.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini status %d", resp.StatusCode)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}
	var sb strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return strings.TrimSpace(sb.String()), nil
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}
