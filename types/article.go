package types

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Article represents a single extracted news article. The extraction layer
// guarantees a unique URL and non-empty title/body; the clustering and
// highlight stages fill in the remaining fields.
type Article struct {
	Title            string     `json:"title"`
	Body             string     `json:"body"`
	Author           string     `json:"author,omitempty"`
	Source           string     `json:"source"`
	URL              string     `json:"url"`
	Category         string     `json:"category,omitempty"`
	PublishedAt      *time.Time `json:"published_at,omitempty"`
	ExtractedAt      time.Time  `json:"extracted_at"`
	Summary          string     `json:"summary,omitempty"`
	Keywords         []string   `json:"keywords,omitempty"`
	IsDuplicate      bool       `json:"is_duplicate"`
	DuplicateGroupID string     `json:"duplicate_group_id,omitempty"`
}

// ID derives a stable identifier from the article URL.
func (a *Article) ID() string {
	return GenerateID(a.URL)
}

// GenerateID creates a unique ID from URL
func GenerateID(url string) string {
	hash := sha256.Sum256([]byte(url))
	return hex.EncodeToString(hash[:])[:16]
}
