package highlights

import (
	"context"
	"fmt"
	"strings"

	"newsbrief/generation"
	"newsbrief/types"
)

const (
	// summaryInputChars caps how much article body goes into the prompt.
	summaryInputChars = 2000

	// summaryMaxChars caps the final summary length.
	summaryMaxChars = 300

	// rawFallbackChars is used when the body has no usable sentences.
	rawFallbackChars = 200

	// minSentenceChars filters out fragments in the extractive path.
	minSentenceChars = 20

	summarySystemPrompt = "You are a news summarizer. Create concise, informative summaries."
)

// Summarizer produces article summaries through the generation gate, falling
// back to extractive summaries whenever the gate declines.
type Summarizer struct {
	gate *generation.Gate
}

func NewSummarizer(gate *generation.Gate) *Summarizer {
	return &Summarizer{gate: gate}
}

// Summarize returns a 2-3 sentence summary of the article. It never fails:
// when generation is degraded or errors, the extractive summary is used.
func (s *Summarizer) Summarize(ctx context.Context, article *types.Article) string {
	prompt := fmt.Sprintf("Summarize this news article in 2-3 sentences:\n\nTitle: %s\n\nContent: %s",
		article.Title, truncateRunes(article.Body, summaryInputChars))

	if text, ok := s.gate.Generate(ctx, summarySystemPrompt, prompt, 150, 0.3); ok {
		return text
	}
	return ExtractiveSummary(article.Body)
}

// ExtractiveSummary builds a summary from the body's own sentences: the first
// three sentences longer than 20 characters, joined with ". " and a closing
// period. A body with no qualifying sentences yields its first 200 characters
// (ellipsis when truncated). The result is capped at 300 characters.
func ExtractiveSummary(body string) string {
	var sentences []string
	for _, s := range strings.Split(body, ".") {
		if s = strings.TrimSpace(s); len(s) > minSentenceChars {
			sentences = append(sentences, s)
		}
	}

	var summary string
	switch {
	case len(sentences) >= 3:
		summary = strings.Join(sentences[:3], ". ") + "."
	case len(sentences) >= 1:
		summary = strings.Join(sentences, ". ") + "."
	default:
		summary = truncateRunes(body, rawFallbackChars)
		if len([]rune(body)) > rawFallbackChars {
			summary += "..."
		}
	}

	if len([]rune(summary)) > summaryMaxChars {
		summary = truncateRunes(summary, summaryMaxChars) + "..."
	}
	return summary
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
