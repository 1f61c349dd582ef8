package duckduckgo

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

const litePage = `<html><body><table>
<tr><td>1.</td><td><a class="result-link" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.org%2Fbtree&amp;rut=abc">B-tree basics</a></td></tr>
<tr><td></td><td class="result-snippet">A B-tree is a self-balancing search tree.</td></tr>
<tr><td>2.</td><td><a class="result-link" href="https://direct.example.com/page">Direct link result</a></td></tr>
<tr><td></td><td class="result-snippet">No redirect wrapper here.</td></tr>
<tr><td>3.</td><td><a class="result-link" href="https://third.example.com/">Third result</a></td></tr>
</table></body></html>`

func liteDoc(t *testing.T) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(litePage))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return doc
}

func TestParseResults(t *testing.T) {
	results := parseResults(liteDoc(t), 10)
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].URL != "https://example.org/btree" {
		t.Fatalf("redirect not unwrapped: %q", results[0].URL)
	}
	if results[0].Title != "B-tree basics" {
		t.Fatalf("title: %q", results[0].Title)
	}
	if results[0].Snippet != "A B-tree is a self-balancing search tree." {
		t.Fatalf("snippet: %q", results[0].Snippet)
	}
	if results[1].URL != "https://direct.example.com/page" {
		t.Fatalf("direct url mangled: %q", results[1].URL)
	}
}

func TestParseResultsHonorsLimit(t *testing.T) {
	results := parseResults(liteDoc(t), 2)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
}

func TestCleanURL(t *testing.T) {
	wrapped := "//duckduckgo.com/l/?uddg=" + url.QueryEscape("https://example.org/a?b=c") + "&rut=xyz"
	if got := cleanURL(wrapped); got != "https://example.org/a?b=c" {
		t.Fatalf("got %q", got)
	}
	if got := cleanURL("https://plain.example.com/"); got != "https://plain.example.com/" {
		t.Fatalf("plain url changed: %q", got)
	}
	if got := cleanURL("//duckduckgo.com/l/?other=1"); got != "//duckduckgo.com/l/?other=1" {
		t.Fatalf("wrapper without uddg changed: %q", got)
	}
}

func TestDiscoverSendsSiteBiasAndRegion(t *testing.T) {
	var form url.Values
	client := &http.Client{Transport: captureTransport{form: &form}}
	s := NewSearchWithClient(client)

	results, err := s.Discover(context.Background(), "b-trees", 5, []string{"example.org", "example.edu"}, "us-en")
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results", len(results))
	}
	if got := form.Get("q"); got != "b-trees (site:example.org OR site:example.edu)" {
		t.Fatalf("query: %q", got)
	}
	if got := form.Get("kl"); got != "us-en" {
		t.Fatalf("region: %q", got)
	}
}

func TestDiscoverRejectsEmptyQuery(t *testing.T) {
	s := NewSearch()
	if _, err := s.Discover(context.Background(), "  ", 5, nil, ""); err == nil {
		t.Fatal("expected error for empty query")
	}
}

// captureTransport records the POSTed form and serves the fixture page
// without touching the network.
type captureTransport struct {
	form *url.Values
}

func (t captureTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := req.ParseForm(); err != nil {
		return nil, err
	}
	*t.form = req.PostForm
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(litePage)),
		Request:    req,
	}, nil
}
