package ragchat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"newsbrief/generation"
	"newsbrief/types"
	"newsbrief/vectorstore"
)

// hashEmbedder maps texts onto fixed axes so retrieval order is predictable.
type hashEmbedder struct {
	axes map[string]int
	dim  int
	err  error
}

func (e *hashEmbedder) ModelName() string { return "hash" }

func (e *hashEmbedder) EmbedTexts(texts []string) ([][]float64, error) {
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float64, len(texts))
	for i, t := range texts {
		v := make([]float64, e.dim)
		axis := 0
		for key, a := range e.axes {
			if strings.Contains(t, key) {
				axis = a
				break
			}
		}
		v[axis] = 1
		out[i] = v
	}
	return out, nil
}

type chatProvider struct {
	text  string
	err   error
	calls int
}

func (p *chatProvider) Name() string { return "chat" }

func (p *chatProvider) Complete(ctx context.Context, system, user string, maxTokens int, temperature float64) (string, error) {
	p.calls++
	return p.text, p.err
}

func sampleHighlights() []types.Highlight {
	return []types.Highlight{
		{
			Title:     "Grand final preview",
			Category:  "sports",
			Summary:   "The grand final kicks off this weekend.",
			Sources:   []string{"abc", "sbs"},
			Frequency: 2,
			Keywords:  []string{"breaking"},
			URLs:      []string{"https://a", "https://b"},
		},
		{
			Title:     "Rates hold steady",
			Category:  "finance",
			Summary:   "The central bank left rates unchanged.",
			Sources:   []string{"nine"},
			Frequency: 1,
			URLs:      []string{"https://c"},
		},
	}
}

func newTestAnswerer(provider generation.Provider) (*Answerer, *vectorstore.Memory) {
	embedder := &hashEmbedder{
		dim: 2,
		axes: map[string]int{
			"grand final": 0,
			"football":    0,
			"rates":       1,
		},
	}
	mem := vectorstore.NewMemory()
	return NewAnswerer(embedder, generation.NewGate(provider), mem), mem
}

func TestIndexHighlightsBuildsDocuments(t *testing.T) {
	a, mem := newTestAnswerer(&chatProvider{text: "unused"})
	if err := a.IndexHighlights(sampleHighlights()); err != nil {
		t.Fatal(err)
	}

	n, err := mem.Count()
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("expected 2 indexed documents, got %d", n)
	}

	res, err := mem.Query([]float64{1, 0}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if res.IDs[0] != "highlight_0" {
		t.Fatalf("unexpected id %q", res.IDs[0])
	}
	doc := res.Documents[0]
	for _, want := range []string{
		"Title: Grand final preview",
		"Category: sports",
		"Summary: The grand final kicks off this weekend.",
		"Sources: abc, sbs",
		"Frequency: 2",
		"Keywords: breaking",
	} {
		if !strings.Contains(doc, want) {
			t.Fatalf("document missing %q:\n%s", want, doc)
		}
	}
	meta := res.Metadatas[0]
	if meta["sources"] != "abc, sbs" || meta["frequency"] != "2" || meta["urls"] != "https://a, https://b" {
		t.Fatalf("unexpected metadata %v", meta)
	}
}

func TestIndexHighlightsEmptyIsNoOp(t *testing.T) {
	a, mem := newTestAnswerer(&chatProvider{text: "unused"})
	if err := a.IndexHighlights(sampleHighlights()); err != nil {
		t.Fatal(err)
	}
	if err := a.IndexHighlights(nil); err != nil {
		t.Fatal(err)
	}
	n, _ := mem.Count()
	if n != 2 {
		t.Fatalf("empty reindex must not clear the index, got %d docs", n)
	}
}

func TestIndexHighlightsRebuildReplaces(t *testing.T) {
	a, mem := newTestAnswerer(&chatProvider{text: "unused"})
	if err := a.IndexHighlights(sampleHighlights()); err != nil {
		t.Fatal(err)
	}
	if err := a.IndexHighlights(sampleHighlights()[:1]); err != nil {
		t.Fatal(err)
	}
	n, _ := mem.Count()
	if n != 1 {
		t.Fatalf("expected full rebuild to replace documents, got %d", n)
	}
}

func TestQueryUsesGeneratedAnswer(t *testing.T) {
	provider := &chatProvider{text: "The grand final is this weekend."}
	a, _ := newTestAnswerer(provider)
	if err := a.IndexHighlights(sampleHighlights()); err != nil {
		t.Fatal(err)
	}

	got := a.Query(context.Background(), "when is the grand final football match", 0)
	if got != "The grand final is this weekend." {
		t.Fatalf("got %q", got)
	}
	if provider.calls != 1 {
		t.Fatalf("expected one provider call, got %d", provider.calls)
	}
}

func TestQueryEmptyIndexReturnsInsufficient(t *testing.T) {
	a, _ := newTestAnswerer(&chatProvider{text: "unused"})
	got := a.Query(context.Background(), "anything", 3)
	if got != insufficientMessage {
		t.Fatalf("got %q", got)
	}
}

func TestQueryFallbackWhenDegraded(t *testing.T) {
	provider := &chatProvider{err: &generation.RateLimitedError{StatusCode: 429}}
	a, _ := newTestAnswerer(provider)
	if err := a.IndexHighlights(sampleHighlights()); err != nil {
		t.Fatal(err)
	}

	got := a.Query(context.Background(), "what happened with interest rates", 3)
	if !strings.HasPrefix(got, "Based on the news highlights:\n\n") {
		t.Fatalf("expected extractive fallback, got %q", got)
	}
	if !strings.Contains(got, "Title: Rates hold steady") {
		t.Fatalf("fallback should pick the rates document, got %q", got)
	}
	if !strings.Contains(got, "Summary: The central bank left rates unchanged.") {
		t.Fatalf("fallback missing summary line, got %q", got)
	}
	if strings.Contains(got, "Sources:") {
		t.Fatalf("fallback should only keep title and summary lines, got %q", got)
	}

	// Once degraded, subsequent queries skip the provider entirely.
	calls := provider.calls
	_ = a.Query(context.Background(), "what happened with interest rates", 3)
	if provider.calls != calls {
		t.Fatalf("degraded gate must not call the provider again, got %d calls", provider.calls)
	}
}

func TestQueryFallbackOnTransientError(t *testing.T) {
	provider := &chatProvider{err: errors.New("connection reset")}
	a, _ := newTestAnswerer(provider)
	if err := a.IndexHighlights(sampleHighlights()); err != nil {
		t.Fatal(err)
	}

	got := a.Query(context.Background(), "tell me about the grand final", 3)
	if !strings.HasPrefix(got, "Based on the news highlights:") {
		t.Fatalf("expected fallback, got %q", got)
	}
	if a.gate.Degraded() {
		t.Fatal("transient error must not degrade the gate")
	}
}

func TestQueryEmbedderFailureReturnsErrorMessage(t *testing.T) {
	embedder := &hashEmbedder{dim: 2, err: errors.New("embed down")}
	a := NewAnswerer(embedder, generation.NewGate(&chatProvider{text: "unused"}), vectorstore.NewMemory())

	got := a.Query(context.Background(), "anything", 3)
	if got != errorMessage {
		t.Fatalf("got %q", got)
	}
}

func TestFallbackAnswerTruncatesAt400(t *testing.T) {
	long := strings.Repeat("w", 500)
	doc := fmt.Sprintf("Title: %s\nSummary: short", long)
	got := fallbackAnswer([]string{doc}, "unrelated")
	body := strings.TrimPrefix(got, "Based on the news highlights:\n\n")
	if len([]rune(body)) != 403 {
		t.Fatalf("expected 400 chars plus ellipsis, got %d", len([]rune(body)))
	}
	if !strings.HasSuffix(body, "...") {
		t.Fatalf("expected ellipsis, got %q", body)
	}
}

func TestFallbackAnswerShortBodyNoEllipsis(t *testing.T) {
	doc := "Title: A\nSummary: B\nSources: c"
	got := fallbackAnswer([]string{doc}, "unrelated")
	if got != "Based on the news highlights:\n\nTitle: A\nSummary: B" {
		t.Fatalf("got %q", got)
	}
}
