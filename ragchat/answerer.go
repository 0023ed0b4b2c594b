package ragchat

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	"newsbrief/embeddings"
	"newsbrief/generation"
	"newsbrief/types"
	"newsbrief/vectorstore"
)

const (
	// defaultTopK is how many highlights back an answer.
	defaultTopK = 3

	// fallbackMaxChars caps the extractive fallback answer.
	fallbackMaxChars = 400

	chatSystemPrompt = "You are a helpful assistant that answers questions about news highlights. Use the provided context to answer questions accurately. If the context doesn't contain relevant information, say so."

	insufficientMessage = "I don't have enough information about recent news highlights to answer your question. Please try asking about sports, lifestyle, music, or finance news."

	errorMessage = "I encountered an error while processing your question. Please try again later."
)

// Answerer answers questions over the current highlight set using retrieval
// plus gate-mediated generation. Indexing rebuilds the vector index from
// scratch; queries run concurrently against the last completed rebuild.
type Answerer struct {
	embedder embeddings.Provider
	gate     *generation.Gate
	index    vectorstore.Index

	mu sync.RWMutex
}

func NewAnswerer(embedder embeddings.Provider, gate *generation.Gate, index vectorstore.Index) *Answerer {
	return &Answerer{embedder: embedder, gate: gate, index: index}
}

// IndexHighlights replaces the indexed highlight set. An empty set is a no-op
// so a failed pipeline run cannot wipe the previous index.
func (a *Answerer) IndexHighlights(highlights []types.Highlight) error {
	if len(highlights) == 0 {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	log.Printf("Indexing %d highlights...", len(highlights))

	if err := a.index.Clear(); err != nil {
		log.Printf("Warning: could not clear existing highlights index: %v", err)
	}

	ids := make([]string, len(highlights))
	documents := make([]string, len(highlights))
	metadatas := make([]map[string]interface{}, len(highlights))
	for i, h := range highlights {
		ids[i] = fmt.Sprintf("highlight_%d", i)
		documents[i] = fmt.Sprintf("Title: %s\nCategory: %s\nSummary: %s\nSources: %s\nFrequency: %d\nKeywords: %s",
			h.Title, h.Category, h.Summary, strings.Join(h.Sources, ", "), h.Frequency, strings.Join(h.Keywords, ", "))
		// Chroma metadata values must be scalars, so lists are flattened.
		metadatas[i] = map[string]interface{}{
			"title":     h.Title,
			"category":  h.Category,
			"summary":   h.Summary,
			"sources":   strings.Join(h.Sources, ", "),
			"frequency": strconv.Itoa(h.Frequency),
			"urls":      strings.Join(h.URLs, ", "),
		}
	}

	embs, err := a.embedder.EmbedTexts(documents)
	if err != nil {
		return fmt.Errorf("failed to embed highlights: %w", err)
	}
	if len(embs) != len(documents) {
		return fmt.Errorf("embedding count mismatch: %d embeddings for %d documents", len(embs), len(documents))
	}

	if err := a.index.Add(ids, embs, documents, metadatas); err != nil {
		return fmt.Errorf("failed to index highlights: %w", err)
	}

	log.Println("Highlights indexed successfully")
	return nil
}

// Query answers a question from the indexed highlights. It always returns a
// user-facing string; failures yield fixed fallback messages rather than
// errors.
func (a *Answerer) Query(ctx context.Context, question string, topK int) (answer string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Warning: chatbot query panicked: %v", r)
			answer = errorMessage
		}
	}()

	if topK <= 0 {
		topK = defaultTopK
	}

	embs, err := a.embedder.EmbedTexts([]string{question})
	if err != nil || len(embs) == 0 {
		log.Printf("Warning: failed to embed question: %v", err)
		return errorMessage
	}

	a.mu.RLock()
	result, err := a.index.Query(embs[0], topK)
	a.mu.RUnlock()
	if err != nil {
		log.Printf("Warning: highlight retrieval failed: %v", err)
		return errorMessage
	}

	if result == nil || len(result.Documents) == 0 {
		return insufficientMessage
	}

	var parts []string
	for i, doc := range result.Documents {
		parts = append(parts, fmt.Sprintf("News Highlight %d:\n%s", i+1, doc))
	}
	contextText := strings.Join(parts, "\n\n")

	prompt := fmt.Sprintf("Context from news highlights:\n\n%s\n\n\nUser question: %s\n\nPlease provide a helpful answer based on the context above.",
		contextText, question)
	if text, ok := a.gate.Generate(ctx, chatSystemPrompt, prompt, 300, 0.7); ok {
		return text
	}

	return fallbackAnswer(result.Documents, question)
}

// fallbackAnswer extracts the title and summary lines from the most relevant
// retrieved document when generation is unavailable.
func fallbackAnswer(docs []string, question string) string {
	relevant := docs[0]
	words := strings.Fields(strings.ToLower(question))
	for _, doc := range docs {
		lower := strings.ToLower(doc)
		matched := false
		for _, w := range words {
			if len(w) > 3 && strings.Contains(lower, w) {
				matched = true
				break
			}
		}
		if matched {
			relevant = doc
			break
		}
	}

	var keyLines []string
	for _, line := range strings.Split(relevant, "\n") {
		if strings.Contains(line, "Summary:") || strings.Contains(line, "Title:") {
			keyLines = append(keyLines, line)
		}
	}

	body := relevant
	if len(keyLines) > 0 {
		body = strings.Join(keyLines, "\n")
	}
	if runes := []rune(body); len(runes) > fallbackMaxChars {
		body = string(runes[:fallbackMaxChars]) + "..."
	}
	return "Based on the news highlights:\n\n" + body
}
