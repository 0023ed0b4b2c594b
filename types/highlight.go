package types

import "time"

// Highlight is a synthesized, ranked summary of one story (a duplicate group
// of articles) within a category. The full highlight set for a pipeline run
// replaces the previous one.
type Highlight struct {
	Title          string      `json:"title"`
	Summary        string      `json:"summary"`
	Category       string      `json:"category"`
	Sources        []string    `json:"sources"`
	Authors        []string    `json:"authors"`
	Frequency      int         `json:"frequency"`
	PriorityScore  float64     `json:"priority_score"`
	Keywords       []string    `json:"keywords"`
	URLs           []string    `json:"urls"`
	PublishedDates []time.Time `json:"published_dates"`
}

// RunResult summarizes one full pipeline run.
type RunResult struct {
	RunID           string    `json:"run_id"`
	Status          string    `json:"status"` // "success" or "error"
	Message         string    `json:"message,omitempty"`
	ArticlesCount   int       `json:"articles_count"`
	DuplicatesCount int       `json:"duplicates_count"`
	HighlightsCount int       `json:"highlights_count"`
	CompletedAt     time.Time `json:"completed_at"`
}
