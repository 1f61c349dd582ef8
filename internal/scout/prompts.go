package scout

import (
	"fmt"

	"github.com/itsjustRohitch/ResourceScout/provider/prompts"
)

// Context budgets differ per route: analysis gets the most, the quiz the
// least.
const (
	analysisContextBudget = 50000
	summaryContextBudget  = 20000
	fallbackContextBudget = 10000
	quizContextBudget     = 5000
)

// searchTag is the trailer the summary prompt asks the Writer to emit; the
// engine parses it back out to pick the retrieval topic.
const searchTag = "SEARCH_QUERY:"

// defaultSummaryTopic is used when the Writer forgets the trailer.
const defaultSummaryTopic = "Computer Science Core"

const summarizeTemplate = `Analyze the document and extract the Technical Syllabus.
Ignore admin details. Focus on core modules.

Format:
1. List 3-5 key technical modules.
2. Briefly explain sub-topics.

CRITICAL: On the very last line, output the search tag like this:
SEARCH_QUERY: <Insert the hardest technical topic here>

Document Context:
%s`

func summarizePrompt(docContext string) string {
	return fmt.Sprintf(summarizeTemplate, prompts.Truncate(docContext, summaryContextBudget))
}

func quizPrompt(docContext string) string {
	return fmt.Sprintf("Create a 3-question quiz based on:\n%s", prompts.Truncate(docContext, quizContextBudget))
}

func directPrompt(docContext, query string) string {
	return fmt.Sprintf("Context: %s\n\nUser Request: %s", prompts.Truncate(docContext, fallbackContextBudget), query)
}
