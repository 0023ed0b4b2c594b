package extract

import (
	"strings"

	"newsbrief/types"
)

// categorizeBodyChars caps how much body text feeds categorization.
const categorizeBodyChars = 500

// defaultCategory is used when nothing matches.
const defaultCategory = "lifestyle"

// categoryKeywords is ordered so ties resolve the same way every run.
var categoryKeywords = []struct {
	name     string
	keywords []string
}{
	{"sports", []string{
		"sport", "football", "cricket", "rugby", "tennis", "olympics",
		"athlete", "match", "game", "team", "player", "coach",
	}},
	{"lifestyle", []string{
		"lifestyle", "health", "wellness", "fitness", "diet", "travel",
		"fashion", "beauty", "home", "family", "relationship",
	}},
	{"music", []string{
		"music", "song", "album", "artist", "concert", "festival",
		"musician", "band", "singer", "performance", "chart",
	}},
	{"finance", []string{
		"finance", "business", "economy", "market", "stock", "investment",
		"bank", "money", "dollar", "profit", "revenue", "financial",
	}},
}

// Categorize assigns an article to the best-matching category by keyword
// density over the title and the start of the body. Articles matching nothing
// fall back to lifestyle.
func Categorize(article *types.Article) string {
	text := strings.ToLower(article.Title + " " + truncate(article.Body, categorizeBodyChars))

	best := defaultCategory
	bestScore := 0.0
	for _, c := range categoryKeywords {
		score := scoreCategory(text, c.keywords)
		if score > bestScore {
			bestScore = score
			best = c.name
		}
	}
	return best
}

func scoreCategory(text string, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}
	hits := 0
	for _, k := range keywords {
		if strings.Contains(text, k) {
			hits++
		}
	}
	return float64(hits) / float64(len(keywords))
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
