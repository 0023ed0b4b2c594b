package embeddings

import (
	"fmt"
	"os"
	"strings"
)

// Provider abstracts a text->embedding generator.
// Implementations return one embedding vector per input text, in input order.
type Provider interface {
	EmbedTexts(texts []string) ([][]float64, error)
	ModelName() string
}

// NewFromEnv returns an embeddings provider based on available credentials.
// Cohere is preferred when COHERE_API_KEY is set; otherwise OPENAI_API_KEY
// selects the OpenAI embeddings API.
func NewFromEnv(preferredModel string) (Provider, error) {
	if cohereKey := os.Getenv("COHERE_API_KEY"); cohereKey != "" {
		model := preferredModel
		if model == "" || !strings.HasPrefix(model, "embed-") {
			model = "embed-english-v3.0"
		}
		return NewCohereProvider(cohereKey, model), nil
	}

	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		model := preferredModel
		if model == "" {
			model = "text-embedding-3-small"
		}
		return &OpenAIProvider{apiKey: apiKey, model: model}, nil
	}

	return nil, fmt.Errorf("no embeddings provider configured: set COHERE_API_KEY or OPENAI_API_KEY")
}
