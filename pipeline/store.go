package pipeline

import (
	"sync"

	"newsbrief/types"
)

// Store is the in-memory database for the current article and highlight sets.
// Articles upsert by URL; highlights are replaced wholesale by each run.
type Store struct {
	mu         sync.RWMutex
	articles   map[string]*types.Article
	order      []string
	highlights []types.Highlight
}

func NewStore() *Store {
	return &Store{articles: make(map[string]*types.Article)}
}

// SaveArticles upserts articles by URL, keeping first-insertion order.
func (s *Store) SaveArticles(articles []*types.Article) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range articles {
		if _, ok := s.articles[a.URL]; !ok {
			s.order = append(s.order, a.URL)
		}
		s.articles[a.URL] = a
	}
}

// SaveHighlights replaces the highlight set.
func (s *Store) SaveHighlights(highlights []types.Highlight) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.highlights = append([]types.Highlight(nil), highlights...)
}

// Articles returns stored articles, optionally filtered by category.
func (s *Store) Articles(category string) []*types.Article {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*types.Article, 0, len(s.order))
	for _, url := range s.order {
		a := s.articles[url]
		if category == "" || a.Category == category {
			out = append(out, a)
		}
	}
	return out
}

// Highlights returns stored highlights, optionally filtered by category and
// capped at limit (0 means no cap).
func (s *Store) Highlights(category string, limit int) []types.Highlight {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Highlight, 0, len(s.highlights))
	for _, h := range s.highlights {
		if category != "" && h.Category != category {
			continue
		}
		out = append(out, h)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// Counts returns the stored article and highlight totals.
func (s *Store) Counts() (articles, highlights int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order), len(s.highlights)
}

// ArticlesByCategory returns article counts per category.
func (s *Store) ArticlesByCategory() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]int)
	for _, url := range s.order {
		counts[s.articles[url].Category]++
	}
	return counts
}
