package session

import "strings"

const (
	chunkCharBudget   = 1000
	chunkOverlapChars = 200
)

// SplitChunks slices text into overlapping chunks of roughly budget bytes,
// preferring to break at a whitespace boundary near the budget. Output is
// deterministic for a given input.
func SplitChunks(text string, budget, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if budget <= 0 {
		budget = chunkCharBudget
	}
	if overlap < 0 || overlap >= budget {
		overlap = 0
	}
	if len(text) <= budget {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + budget
		if end >= len(text) {
			chunks = append(chunks, strings.TrimSpace(text[start:]))
			break
		}
		// back off to the last whitespace inside the budget window
		cut := end
		for cut > start && !isSpace(text[cut-1]) {
			cut--
		}
		if cut == start {
			cut = end
		}
		chunks = append(chunks, strings.TrimSpace(text[start:cut]))
		next := cut - overlap
		if next <= start {
			next = cut
		}
		start = next
	}

	out := chunks[:0]
	for _, c := range chunks {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\n' || b == '\t' || b == '\r'
}
