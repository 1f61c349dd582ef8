package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/itsjustRohitch/ResourceScout/tools/video_search/models"
)

const resultsURL = "https://www.youtube.com/results"

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

var limiter = rate.NewLimiter(rate.Every(time.Second), 1)

// Search scrapes the YouTube results page. The page embeds its result set
// in a `var ytInitialData = {...};` script; the videoRenderer objects inside
// it carry the id, title and thumbnails.
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

func (s *Search) Discover(ctx context.Context, q string, k int) ([]models.Video, error) {
	if strings.TrimSpace(q) == "" {
		return nil, fmt.Errorf("query is empty")
	}
	if err := limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u := resultsURL + "?search_query=" + url.QueryEscape(q)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("youtube http %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}
	return ParseResults(string(body), k)
}

// ParseResults extracts up to k videos from a results page body.
func ParseResults(body string, k int) ([]models.Video, error) {
	raw, err := initialData(body)
	if err != nil {
		return nil, err
	}
	var root any
	if err := json.Unmarshal([]byte(raw), &root); err != nil {
		return nil, fmt.Errorf("decode ytInitialData: %w", err)
	}

	var out []models.Video
	collectVideos(root, k, &out)
	return out, nil
}

// initialData locates the ytInitialData JSON blob by balancing braces from
// its first `{`.
func initialData(body string) (string, error) {
	const marker = "ytInitialData"
	i := strings.Index(body, marker)
	if i < 0 {
		return "", fmt.Errorf("ytInitialData not found")
	}
	start := strings.Index(body[i:], "{")
	if start < 0 {
		return "", fmt.Errorf("ytInitialData not found")
	}
	start += i

	depth := 0
	inString := false
	escaped := false
	for j := start; j < len(body); j++ {
		ch := body[j]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return body[start : j+1], nil
			}
		}
	}
	return "", fmt.Errorf("ytInitialData truncated")
}

// collectVideos walks the decoded tree for videoRenderer objects until k
// are found. Result lists live in JSON arrays, which preserve ranking; map
// children are visited in sorted key order so the walk stays deterministic
// when renderers sit under more than one branch.
func collectVideos(node any, k int, out *[]models.Video) {
	if len(*out) >= k {
		return
	}
	switch n := node.(type) {
	case map[string]any:
		if vr, ok := n["videoRenderer"].(map[string]any); ok {
			if v, ok := videoFromRenderer(vr); ok {
				*out = append(*out, v)
				if len(*out) >= k {
					return
				}
			}
		}
		keys := make([]string, 0, len(n))
		for key := range n {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			collectVideos(n[key], k, out)
			if len(*out) >= k {
				return
			}
		}
	case []any:
		for _, child := range n {
			collectVideos(child, k, out)
			if len(*out) >= k {
				return
			}
		}
	}
}

func videoFromRenderer(vr map[string]any) (models.Video, bool) {
	id, _ := vr["videoId"].(string)
	if id == "" {
		return models.Video{}, false
	}
	v := models.Video{URL: "https://www.youtube.com/watch?v=" + id}

	if title, ok := vr["title"].(map[string]any); ok {
		if runs, ok := title["runs"].([]any); ok && len(runs) > 0 {
			if run, ok := runs[0].(map[string]any); ok {
				v.Title, _ = run["text"].(string)
			}
		}
	}
	if thumb, ok := vr["thumbnail"].(map[string]any); ok {
		if thumbs, ok := thumb["thumbnails"].([]any); ok && len(thumbs) > 0 {
			if first, ok := thumbs[0].(map[string]any); ok {
				v.Thumbnail, _ = first["url"].(string)
			}
		}
	}
	if v.Title == "" {
		v.Title = "YouTube video"
	}
	return v, true
}
