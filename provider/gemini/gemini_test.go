package gemini_provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/itsjustRohitch/ResourceScout/config"
	"github.com/itsjustRohitch/ResourceScout/models"
)

func candidateBody(text string) string {
	b, _ := json.Marshal(map[string]any{
		"candidates": []any{
			map[string]any{"content": map[string]any{"parts": []any{map[string]any{"text": text}}}},
		},
	})
	return string(b)
}

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-key", config.LLMProvider{
		BaseURL:    srv.URL,
		Model:      "gemini-2.5-flash",
		MaxRetries: 3,
	})
}

func shrinkRetries(t *testing.T) {
	t.Helper()
	old := retryBase
	retryBase = time.Millisecond
	t.Cleanup(func() { retryBase = old })
}

func TestAnalyzeParsesDecision(t *testing.T) {
	decision := `{"category":"cs","explanation":"Use a heap.","book":"CLRS","youtube_query":"heaps","web_query":"binary heap"}`
	var gotPath string
	var gotKey string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.GenerationConfig == nil || req.GenerationConfig.ResponseMIMEType != "application/json" {
			t.Error("Analyze must force JSON output")
		}
		w.Write([]byte(candidateBody(decision)))
	})

	got, err := c.Analyze(context.Background(), "priority queues?", "")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if got.Category != models.CategoryCS || got.Book != "CLRS" || got.WebQuery != "binary heap" {
		t.Fatalf("unexpected decision: %+v", got)
	}
	if gotPath != "/models/gemini-2.5-flash:generateContent" {
		t.Fatalf("path: %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Fatalf("api key header: %q", gotKey)
	}
}

func TestAnalyzeNormalizesUnknownCategory(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(candidateBody(`{"category":"philosophy","explanation":"x"}`)))
	})
	got, err := c.Analyze(context.Background(), "q", "")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if got.Category != models.CategoryGeneral {
		t.Fatalf("category = %q, want general", got.Category)
	}
}

func TestAnalyzeRetriesMalformedJSON(t *testing.T) {
	shrinkRetries(t)
	var calls int
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.Write([]byte(candidateBody("Sure! Here is the JSON you asked for...")))
			return
		}
		w.Write([]byte(candidateBody(`{"category":"science","explanation":"x"}`)))
	})

	got, err := c.Analyze(context.Background(), "q", "")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if got.Category != models.CategoryScience || calls != 3 {
		t.Fatalf("got %+v after %d calls", got, calls)
	}
}

func TestAnalyzeMalformedJSONExhaustsRetries(t *testing.T) {
	shrinkRetries(t)
	var calls int
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(candidateBody("still not JSON")))
	})

	_, err := c.Analyze(context.Background(), "q", "")
	if err == nil || !strings.Contains(err.Error(), "malformed analysis response") {
		t.Fatalf("err = %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestGenerateRetriesOnQuota(t *testing.T) {
	shrinkRetries(t)
	var calls int
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":{"code":429,"message":"quota","status":"RESOURCE_EXHAUSTED"}}`))
			return
		}
		w.Write([]byte(candidateBody("recovered")))
	})

	got, err := c.Generate(context.Background(), "p")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "recovered" || calls != 3 {
		t.Fatalf("got %q after %d calls", got, calls)
	}
}

func TestGenerateExhaustsRetries(t *testing.T) {
	shrinkRetries(t)
	var calls int
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":{"code":503,"message":"overloaded","status":"UNAVAILABLE"}}`))
	})

	_, err := c.Generate(context.Background(), "p")
	if err == nil || !strings.Contains(err.Error(), "after 3 attempts") {
		t.Fatalf("err = %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestGenerateDoesNotRetryClientErrors(t *testing.T) {
	shrinkRetries(t)
	var calls int
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":400,"message":"invalid argument","status":"INVALID_ARGUMENT"}}`))
	})

	if _, err := c.Generate(context.Background(), "p"); err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestGenerateRequiresAPIKey(t *testing.T) {
	c := NewClient("", config.LLMProvider{})
	if _, err := c.Generate(context.Background(), "p"); err == nil {
		t.Fatal("expected error without API key")
	}
}

func TestTranscribeSendsInlineData(t *testing.T) {
	var req request
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Write([]byte(candidateBody("extracted text")))
	})

	got, err := c.Transcribe(context.Background(), "application/pdf", []byte("%PDF-1.7"))
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if got != "extracted text" {
		t.Fatalf("got %q", got)
	}
	parts := req.Contents[0].Parts
	if len(parts) != 2 || parts[1].InlineData == nil {
		t.Fatalf("unexpected parts: %+v", parts)
	}
	if parts[1].InlineData.MIMEType != "application/pdf" {
		t.Fatalf("mime: %q", parts[1].InlineData.MIMEType)
	}
	if parts[1].InlineData.Data != "JVBERi0xLjc=" {
		t.Fatalf("base64 payload: %q", parts[1].InlineData.Data)
	}
}
