// Package session holds per-user conversation state: uploaded document
// context, the chat transcript, and a small in-memory BM25 index over
// context chunks so prompts use the most relevant material instead of blind
// truncation.
package session

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/blevesearch/bleve"

	"github.com/itsjustRohitch/ResourceScout/models"
)

// Chunk is one indexed slice of extracted document text.
type Chunk struct {
	DocID    string `json:"doc_id"`
	FileName string `json:"file_name"`
	Text     string `json:"text"`
	Index    int    `json:"chunk_index"`
}

type Session struct {
	id        string
	expiresAt time.Time
	index     bleve.Index
	meta      map[string]Chunk
	files     []string
	contexts  []models.ExtractedContent
	messages  []models.ChatMessage
	mu        sync.RWMutex
}

func NewSession(id string, ttl time.Duration) (*Session, error) {
	index, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, err
	}
	return &Session{
		id:        id,
		expiresAt: time.Now().Add(ttl),
		index:     index,
		meta:      make(map[string]Chunk),
	}, nil
}

func (s *Session) ID() string { return s.id }

func (s *Session) Expire(ttl time.Duration) {
	s.mu.Lock()
	s.expiresAt = time.Now().Add(ttl)
	s.mu.Unlock()
}

func (s *Session) Expired() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Now().After(s.expiresAt)
}

// HasFile reports whether a file of this name was already ingested, so the
// caller can skip re-extraction.
func (s *Session) HasFile(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.files {
		if f == name {
			return true
		}
	}
	return false
}

func (s *Session) Files() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.files...)
}

// AddContext stores extracted document text and indexes its chunks.
func (s *Session) AddContext(content models.ExtractedContent) error {
	chunks := SplitChunks(content.Text, chunkCharBudget, chunkOverlapChars)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.contexts = append(s.contexts, content)
	s.files = append(s.files, content.Name)
	for i, text := range chunks {
		chunk := Chunk{
			DocID:    fmt.Sprintf("%s#%d", content.Name, i),
			FileName: content.Name,
			Text:     text,
			Index:    i,
		}
		s.meta[chunk.DocID] = chunk
		if err := s.index.Index(chunk.DocID, chunk); err != nil {
			return err
		}
	}
	return nil
}

// Context returns the accumulated document context with file separators.
func (s *Session) Context() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var sb strings.Builder
	for _, c := range s.contexts {
		fmt.Fprintf(&sb, "\n\n--- %s ---\n%s", c.Name, c.Text)
	}
	return sb.String()
}

// RelevantContext returns document context sized to budget bytes. Small
// corpora pass through whole; larger ones are reduced to the chunks that
// match the query best, in stable document order.
func (s *Session) RelevantContext(query string, budget int) string {
	full := s.Context()
	if len(full) <= budget || strings.TrimSpace(query) == "" {
		return full
	}

	hits, err := s.searchChunks(query, budget/chunkCharBudget+1)
	if err != nil || len(hits) == 0 {
		return full[:budget]
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].FileName != hits[j].FileName {
			return hits[i].FileName < hits[j].FileName
		}
		return hits[i].Index < hits[j].Index
	})

	var sb strings.Builder
	for _, h := range hits {
		if sb.Len()+len(h.Text) > budget {
			break
		}
		fmt.Fprintf(&sb, "\n--- %s ---\n%s", h.FileName, h.Text)
	}
	if sb.Len() == 0 {
		return full[:budget]
	}
	return sb.String()
}

func (s *Session) searchChunks(query string, k int) ([]Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q := bleve.NewQueryStringQuery(query)
	req := bleve.NewSearchRequestOptions(q, k, 0, false)
	res, err := s.index.Search(req)
	if err != nil {
		return nil, err
	}
	var out []Chunk
	for _, hit := range res.Hits {
		if c, ok := s.meta[hit.ID]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Session) AddMessage(role, content string) {
	s.mu.Lock()
	s.messages = append(s.messages, models.ChatMessage{Role: role, Content: content, At: time.Now()})
	s.mu.Unlock()
}

func (s *Session) Messages() []models.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.ChatMessage(nil), s.messages...)
}

// Clear drops all context, files and transcript but keeps the session id.
func (s *Session) Clear() error {
	index, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = index
	s.meta = make(map[string]Chunk)
	s.files = nil
	s.contexts = nil
	s.messages = nil
	return nil
}
