package highlights

import (
	"context"
	"sort"
	"strings"

	"newsbrief/types"
)

const (
	// scoreBodyChars caps how much body text feeds keyword scoring.
	scoreBodyChars = 200

	// frequencyWeight boosts stories covered by more sources.
	frequencyWeight = 0.5
)

// Synthesizer turns clustered articles into ranked highlights per category.
type Synthesizer struct {
	summarizer       *Summarizer
	priorityKeywords []string
}

func NewSynthesizer(summarizer *Summarizer, priorityKeywords []string) *Synthesizer {
	return &Synthesizer{summarizer: summarizer, priorityKeywords: priorityKeywords}
}

// Synthesize builds one highlight per story among the category's records.
// Records sharing a duplicateGroupId form one story; records without a group
// id are singleton stories keyed by their URL. Marked duplicates never start
// a highlight of their own, but they do count toward their story's frequency,
// scoring, and source aggregation. The result is sorted by (priorityScore,
// frequency) descending; ties keep the order in which stories were first
// encountered in the input — downstream consumers rely on that stability.
// An empty filter result yields an empty list, not an error.
func (s *Synthesizer) Synthesize(ctx context.Context, records []*types.Article, category string) []types.Highlight {
	var filtered []*types.Article
	for _, r := range records {
		if r.Category == category {
			filtered = append(filtered, r)
		}
	}

	// Group in first-encounter order.
	groupIndex := make(map[string]int)
	var groups [][]*types.Article
	for _, r := range filtered {
		key := r.DuplicateGroupID
		if key == "" {
			key = "single_" + r.URL
		}
		i, ok := groupIndex[key]
		if !ok {
			i = len(groups)
			groupIndex[key] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], r)
	}

	result := make([]types.Highlight, 0, len(groups))
	for _, group := range groups {
		primary := primaryOf(group)
		if primary == nil {
			// Every member is a duplicate whose primary sits in another
			// category; that story is not this category's to report.
			continue
		}
		frequency := len(group)

		var allText strings.Builder
		for i, a := range group {
			if i > 0 {
				allText.WriteString(" ")
			}
			allText.WriteString(a.Title)
			allText.WriteString(" ")
			allText.WriteString(truncateRunes(a.Body, scoreBodyChars))
		}
		lower := strings.ToLower(allText.String())

		score := 0.0
		for _, keyword := range s.priorityKeywords {
			if strings.Contains(lower, keyword) {
				score += 1.0
			}
		}
		score += float64(frequency) * frequencyWeight

		summary := primary.Summary
		if summary == "" {
			summary = s.summarizer.Summarize(ctx, primary)
		}

		h := types.Highlight{
			Title:         primary.Title,
			Summary:       summary,
			Category:      category,
			Frequency:     frequency,
			PriorityScore: score,
			Keywords:      []string{},
		}
		for _, a := range group {
			h.Sources = append(h.Sources, a.Source)
			h.URLs = append(h.URLs, a.URL)
			if a.Author != "" {
				h.Authors = append(h.Authors, a.Author)
			}
			if a.PublishedAt != nil {
				h.PublishedDates = append(h.PublishedDates, *a.PublishedAt)
			}
		}
		if score > 0 {
			h.Keywords = append([]string(nil), s.priorityKeywords...)
		}

		result = append(result, h)
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].PriorityScore != result[j].PriorityScore {
			return result[i].PriorityScore > result[j].PriorityScore
		}
		return result[i].Frequency > result[j].Frequency
	})

	return result
}

// primaryOf returns the first non-duplicate member, which clustering
// guarantees is the lowest-index record of the story.
func primaryOf(group []*types.Article) *types.Article {
	for _, a := range group {
		if !a.IsDuplicate {
			return a
		}
	}
	return nil
}
