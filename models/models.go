package models

import (
	"errors"
	"time"
)

// ErrUnsupportedType is returned when an uploaded file cannot be handled.
var ErrUnsupportedType = errors.New("unsupported file type")

// Category classifies what kind of help the user is asking for. The chat
// category short-circuits resource retrieval entirely.
type Category string

const (
	CategoryChat    Category = "chat"
	CategoryCS      Category = "cs"
	CategoryMath    Category = "math"
	CategoryScience Category = "science"
	CategoryGeneral Category = "general"

	// Result-only labels, never produced by intent classification.
	CategorySyllabus Category = "syllabus"
	CategoryQuiz     Category = "quiz"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryChat, CategoryCS, CategoryMath, CategoryScience, CategoryGeneral:
		return true
	}
	return false
}

// Document is an uploaded file, kept only until extraction finishes.
type Document struct {
	Name string
	MIME string
	Data []byte
}

// ExtractedContent is the text pulled out of a Document. It is owned by the
// session for the session's lifetime.
type ExtractedContent struct {
	Name        string    `json:"name"`
	Text        string    `json:"text"`
	ExtractedAt time.Time `json:"extracted_at"`
}

// IntentDecision is the Architect brain's structured verdict for one user
// turn: what the user wants and which queries to research with.
type IntentDecision struct {
	Category    Category `json:"category"`
	Explanation string   `json:"explanation"`
	Book        string   `json:"book,omitempty"`
	VideoQuery  string   `json:"youtube_query,omitempty"`
	WebQuery    string   `json:"web_query,omitempty"`
}

// SourceType tells the UI where a ResourceLink came from.
type SourceType string

const (
	SourceArticle  SourceType = "article"
	SourceVideo    SourceType = "video"
	SourceFallback SourceType = "fallback"
)

// ResourceLink is a single curated study resource. Immutable once created;
// URL is never empty.
type ResourceLink struct {
	Title     string     `json:"title"`
	URL       string     `json:"url"`
	Thumbnail string     `json:"thumbnail,omitempty"`
	Excerpt   string     `json:"excerpt,omitempty"`
	Source    SourceType `json:"source_type"`
}

// ResourceResult is the standardized response object passed between the
// engine and the API layer, whatever the route (research, quiz, summary).
type ResourceResult struct {
	Explanation string         `json:"explanation"`
	Category    Category       `json:"category"`
	Book        string         `json:"book,omitempty"`
	Videos      []ResourceLink `json:"videos"`
	Articles    []ResourceLink `json:"articles"`
}

// ChatMessage is one turn of a session transcript.
type ChatMessage struct {
	Role    string    `json:"role"` // user or assistant
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}
