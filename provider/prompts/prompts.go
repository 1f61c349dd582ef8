// Package prompts holds the prompt templates shared by the LLM providers.
package prompts

import "fmt"

// maxContextChars caps how much session context is inlined into the
// analysis prompt.
const maxContextChars = 50000

// Transcribe is the vision-mode instruction used for document extraction.
const Transcribe = "Extract all textual content from this document. Return only the text, preserving headings and list structure."

const analyzeTemplate = `Role: ResourceScout, a helpful and encouraging academic research assistant.
Query: %s
Context: %s

Instructions:
1. If the user input is a greeting (hi, hello), gratitude (thanks), or small talk:
   - Set "category" to "chat".
   - Write a warm, friendly response in "explanation" (e.g., "You're welcome! Happy to help you learn.").
   - Set other fields to null.

2. If the user input is an educational question:
   - Set "category" to "cs", "math", "science", or "general".
   - Generate the research queries as usual.

Return JSON: {
    "category": "cs|math|science|general|chat",
    "explanation": "Detailed academic summary (approx 200 words) OR friendly chat response.",
    "book": "Standard textbook title (or null if chat).",
    "youtube_query": "Search query for video (or null if chat).",
    "web_query": "Search query for articles (or null if chat)."
}`

// Analyze builds the Architect prompt for intent classification.
func Analyze(query, docContext string) string {
	return fmt.Sprintf(analyzeTemplate, query, Truncate(docContext, maxContextChars))
}

// Truncate clips s to at most n bytes. Prompt budgets are byte-based; a
// clipped rune at the boundary is acceptable noise for the model.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
