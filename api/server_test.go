package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"newsbrief/dedup"
	"newsbrief/generation"
	"newsbrief/highlights"
	"newsbrief/pipeline"
	"newsbrief/ragchat"
	"newsbrief/types"
	"newsbrief/vectorstore"

	"github.com/gin-gonic/gin"
)

type fixedEmbedder struct{}

func (fixedEmbedder) ModelName() string { return "fixed" }

func (fixedEmbedder) EmbedTexts(texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = []float64{1, 0}
	}
	return out, nil
}

type silentProvider struct{}

func (silentProvider) Name() string { return "silent" }

func (silentProvider) Complete(ctx context.Context, system, user string, maxTokens int, temperature float64) (string, error) {
	return "", &generation.RateLimitedError{StatusCode: 429}
}

type emptyExtractor struct{}

func (emptyExtractor) ExtractCategory(category string, sources []string) []*types.Article {
	return nil
}

func newTestRouter() (*gin.Engine, *pipeline.Store) {
	gin.SetMode(gin.TestMode)

	gate := generation.NewGate(silentProvider{})
	summarizer := highlights.NewSummarizer(gate)
	answerer := ragchat.NewAnswerer(fixedEmbedder{}, gate, vectorstore.NewMemory())
	store := pipeline.NewStore()

	p := pipeline.New(pipeline.Config{
		Extractor:   emptyExtractor{},
		Clusterer:   dedup.NewClusterer(fixedEmbedder{}, 0.85),
		Summarizer:  summarizer,
		Synthesizer: highlights.NewSynthesizer(summarizer, []string{"breaking"}),
		Answerer:    answerer,
		Store:       store,
		Sources:     map[string][]string{"sports": {"src"}},
		Categories:  []string{"sports"},
	})

	news := NewNewsController(p, store, gate, []string{"sports"})
	chat := NewChatController(answerer)
	return NewRouter(news, chat), store
}

func doRequest(t *testing.T, r *gin.Engine, method, target, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var decoded map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON response %q: %v", w.Body.String(), err)
	}
	return w, decoded
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter()
	w, body := doRequest(t, r, http.MethodGet, "/api/health", "")
	if w.Code != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("unexpected health response %d %v", w.Code, body)
	}
}

func TestHighlightsFiltersByCategory(t *testing.T) {
	r, store := newTestRouter()
	store.SaveHighlights([]types.Highlight{
		{Title: "a", Category: "sports"},
		{Title: "b", Category: "finance"},
	})

	w, body := doRequest(t, r, http.MethodGet, "/api/highlights?category=sports", "")
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", w.Code)
	}
	hs := body["highlights"].([]interface{})
	if len(hs) != 1 {
		t.Fatalf("expected 1 highlight, got %d", len(hs))
	}
}

func TestHighlightsRejectsBadLimit(t *testing.T) {
	r, _ := newTestRouter()
	w, _ := doRequest(t, r, http.MethodGet, "/api/highlights?limit=nope", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestArticles(t *testing.T) {
	r, store := newTestRouter()
	store.SaveArticles([]*types.Article{
		{Title: "a", URL: "https://a", Category: "sports"},
	})

	w, body := doRequest(t, r, http.MethodGet, "/api/articles?category=sports", "")
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", w.Code)
	}
	articles := body["articles"].([]interface{})
	if len(articles) != 1 {
		t.Fatalf("expected 1 article, got %d", len(articles))
	}
}

func TestStatus(t *testing.T) {
	r, store := newTestRouter()
	store.SaveArticles([]*types.Article{
		{Title: "a", URL: "https://a", Category: "sports"},
	})

	w, body := doRequest(t, r, http.MethodGet, "/api/status", "")
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", w.Code)
	}
	if body["status"] != "operational" {
		t.Fatalf("unexpected status field %v", body["status"])
	}
	if body["articles_count"].(float64) != 1 {
		t.Fatalf("unexpected counts %v", body)
	}
}

func TestChatRequiresMessage(t *testing.T) {
	r, _ := newTestRouter()
	w, _ := doRequest(t, r, http.MethodPost, "/api/chat", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestChatAnswersFromEmptyIndex(t *testing.T) {
	r, _ := newTestRouter()
	w, body := doRequest(t, r, http.MethodPost, "/api/chat", `{"message":"any news?"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", w.Code)
	}
	response := body["response"].(string)
	if !strings.Contains(response, "I don't have enough information") {
		t.Fatalf("unexpected response %q", response)
	}
}

func TestExtractStartsRun(t *testing.T) {
	r, _ := newTestRouter()
	w, body := doRequest(t, r, http.MethodPost, "/api/extract", `{"categories":["sports"]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", w.Code)
	}
	if body["status"] != "started" {
		t.Fatalf("unexpected body %v", body)
	}
}
