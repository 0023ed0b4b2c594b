package pipeline

import (
	"context"
	"strings"
	"testing"

	"newsbrief/dedup"
	"newsbrief/generation"
	"newsbrief/highlights"
	"newsbrief/ragchat"
	"newsbrief/types"
	"newsbrief/vectorstore"
)

// keywordEmbedder maps texts containing a key phrase onto a shared axis so
// clustering and retrieval behave predictably.
type keywordEmbedder struct {
	axes []struct {
		key  string
		axis int
	}
	dim int
}

func (e *keywordEmbedder) ModelName() string { return "keyword" }

func (e *keywordEmbedder) EmbedTexts(texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, t := range texts {
		lower := strings.ToLower(t)
		v := make([]float64, e.dim)
		axis := e.dim - 1
		for _, a := range e.axes {
			if strings.Contains(lower, a.key) {
				axis = a.axis
				break
			}
		}
		v[axis] = 1
		out[i] = v
	}
	return out, nil
}

type unavailableProvider struct{}

func (unavailableProvider) Name() string { return "unavailable" }

func (unavailableProvider) Complete(ctx context.Context, system, user string, maxTokens int, temperature float64) (string, error) {
	return "", &generation.RateLimitedError{StatusCode: 429}
}

type fixedExtractor struct {
	byCategory map[string][]*types.Article
}

func (f *fixedExtractor) ExtractCategory(category string, sources []string) []*types.Article {
	return f.byCategory[category]
}

func newTestPipeline(byCategory map[string][]*types.Article) (*Pipeline, *Store, *ragchat.Answerer) {
	embedder := &keywordEmbedder{
		dim: 4,
		axes: []struct {
			key  string
			axis int
		}{
			{"grand final", 0},
			{"interest rates", 1},
		},
	}

	gate := generation.NewGate(unavailableProvider{})
	summarizer := highlights.NewSummarizer(gate)
	answerer := ragchat.NewAnswerer(embedder, gate, vectorstore.NewMemory())
	store := NewStore()

	sources := map[string][]string{"sports": {"src"}, "finance": {"src"}}
	p := New(Config{
		Extractor:   &fixedExtractor{byCategory: byCategory},
		Clusterer:   dedup.NewClusterer(embedder, 0.85),
		Summarizer:  summarizer,
		Synthesizer: highlights.NewSynthesizer(summarizer, []string{"breaking", "urgent"}),
		Answerer:    answerer,
		Store:       store,
		Sources:     sources,
		Categories:  []string{"sports", "finance"},
	})
	return p, store, answerer
}

func sportsBody(lead string) string {
	return lead + " grand final coverage continues across the city this week. Fans have been gathering since early morning outside the ground."
}

func TestRunEndToEnd(t *testing.T) {
	byCategory := map[string][]*types.Article{
		"sports": {
			{Title: "Grand final preview", Body: sportsBody("The"), Source: "abc", URL: "https://abc/a", Category: "sports"},
			{Title: "Grand final build-up", Body: sportsBody("More"), Source: "sbs", URL: "https://sbs/b", Category: "sports"},
		},
		"finance": {
			{Title: "Interest rates on hold", Body: "Interest rates were left on hold by the central bank this afternoon. Economists had expected the decision for weeks.", Source: "nine", URL: "https://nine/c", Category: "finance"},
		},
	}

	p, store, answerer := newTestPipeline(byCategory)
	result := p.Run(context.Background(), nil)

	if result.Status != "success" {
		t.Fatalf("unexpected status %q (%s)", result.Status, result.Message)
	}
	if result.ArticlesCount != 3 {
		t.Fatalf("expected 3 articles, got %d", result.ArticlesCount)
	}
	if result.DuplicatesCount != 1 {
		t.Fatalf("expected 1 duplicate, got %d", result.DuplicatesCount)
	}
	if result.HighlightsCount != 2 {
		t.Fatalf("expected 2 highlights, got %d", result.HighlightsCount)
	}
	if result.RunID == "" {
		t.Fatal("expected a run id")
	}

	sports := store.Highlights("sports", 0)
	if len(sports) != 1 {
		t.Fatalf("expected 1 sports highlight, got %d", len(sports))
	}
	if sports[0].Frequency != 2 {
		t.Fatalf("expected the two sports articles to merge, frequency %d", sports[0].Frequency)
	}
	if len(sports[0].Sources) != 2 {
		t.Fatalf("expected both sources on the highlight, got %v", sports[0].Sources)
	}
	if sports[0].Summary == "" {
		t.Fatal("expected an extractive summary on the highlight")
	}

	stored := store.Articles("")
	if len(stored) != 3 {
		t.Fatalf("expected 3 stored articles, got %d", len(stored))
	}
	dupes := 0
	for _, a := range stored {
		if a.IsDuplicate {
			dupes++
			if a.DuplicateGroupID == "" {
				t.Fatal("duplicate missing group id")
			}
		}
	}
	if dupes != 1 {
		t.Fatalf("expected 1 stored duplicate, got %d", dupes)
	}

	answer := answerer.Query(context.Background(), "what is happening with interest rates", 3)
	if !strings.Contains(answer, "Interest rates on hold") {
		t.Fatalf("chat should answer from the indexed highlights, got %q", answer)
	}
}

func TestRunNoArticles(t *testing.T) {
	p, store, _ := newTestPipeline(map[string][]*types.Article{})
	result := p.Run(context.Background(), nil)

	if result.Status != "error" {
		t.Fatalf("expected error status, got %q", result.Status)
	}
	if result.Message != "No articles extracted" {
		t.Fatalf("unexpected message %q", result.Message)
	}
	articles, highlightCount := store.Counts()
	if articles != 0 || highlightCount != 0 {
		t.Fatalf("store should stay empty, got %d articles %d highlights", articles, highlightCount)
	}
}

func TestRunUnknownCategorySkipped(t *testing.T) {
	byCategory := map[string][]*types.Article{
		"finance": {
			{Title: "Interest rates on hold", Body: "Interest rates were left on hold by the central bank this afternoon. Economists had expected the decision for weeks.", Source: "nine", URL: "https://nine/c", Category: "finance"},
		},
	}
	p, _, _ := newTestPipeline(byCategory)

	result := p.Run(context.Background(), []string{"weather", "finance"})
	if result.Status != "success" {
		t.Fatalf("unexpected status %q", result.Status)
	}
	if result.ArticlesCount != 1 {
		t.Fatalf("expected 1 article, got %d", result.ArticlesCount)
	}
}

func TestStoreUpsertsByURL(t *testing.T) {
	store := NewStore()
	store.SaveArticles([]*types.Article{
		{Title: "v1", URL: "https://a", Category: "sports"},
		{Title: "other", URL: "https://b", Category: "finance"},
	})
	store.SaveArticles([]*types.Article{
		{Title: "v2", URL: "https://a", Category: "sports"},
	})

	all := store.Articles("")
	if len(all) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(all))
	}
	if all[0].Title != "v2" {
		t.Fatalf("expected upsert to replace, got %q", all[0].Title)
	}

	counts := store.ArticlesByCategory()
	if counts["sports"] != 1 || counts["finance"] != 1 {
		t.Fatalf("unexpected counts %v", counts)
	}
}

func TestStoreHighlightLimit(t *testing.T) {
	store := NewStore()
	store.SaveHighlights([]types.Highlight{
		{Title: "a", Category: "sports"},
		{Title: "b", Category: "sports"},
		{Title: "c", Category: "finance"},
	})

	if got := store.Highlights("sports", 1); len(got) != 1 || got[0].Title != "a" {
		t.Fatalf("unexpected limited result %v", got)
	}
	if got := store.Highlights("", 0); len(got) != 3 {
		t.Fatalf("expected all highlights, got %d", len(got))
	}
}
