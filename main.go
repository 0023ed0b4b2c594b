package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"newsbrief/api"
	"newsbrief/common"
	"newsbrief/config"
	"newsbrief/dedup"
	"newsbrief/embeddings"
	"newsbrief/extract"
	"newsbrief/generation"
	"newsbrief/highlights"
	"newsbrief/notify"
	"newsbrief/pipeline"
	"newsbrief/ragchat"
	"newsbrief/vectorstore"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	ctx := context.Background()
	cfg := config.FromEnv()

	embedder, err := embeddings.NewFromEnv(os.Getenv("EMBEDDING_MODEL"))
	if err != nil {
		log.Fatalf("Failed to initialize embeddings provider: %v", err)
	}
	log.Printf("Using embeddings provider: %s", embedder.ModelName())

	gate := generation.NewGate(newGenerationProvider(ctx, cfg))

	var index vectorstore.Index
	if cfg.ChromaHost != "" {
		chroma, err := vectorstore.NewChroma(vectorstore.ChromaConfig{
			Host:           cfg.ChromaHost,
			Port:           cfg.ChromaPort,
			CollectionName: cfg.ChromaCollection,
		})
		if err != nil {
			log.Fatalf("Failed to connect to Chroma: %v", err)
		}
		index = chroma
		log.Printf("Using Chroma index at %s:%d", cfg.ChromaHost, cfg.ChromaPort)
	} else {
		index = vectorstore.NewMemory()
		log.Println("CHROMA_HOST not set, using in-memory vector index")
	}

	var bloom *dedup.Bloom
	if cfg.RedisAddr != "" {
		bloom, err = dedup.NewBloom(dedup.BloomConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			log.Printf("Warning: bloom filter unavailable: %v", err)
			bloom = nil
		}
	}

	var archive *common.S3
	if cfg.S3Bucket != "" {
		archive, err = common.NewS3(ctx, common.S3Config{Region: cfg.S3Region})
		if err != nil {
			log.Printf("Warning: run archive unavailable: %v", err)
			archive = nil
		}
	}

	var notifier *notify.Notifier
	if len(cfg.KafkaBrokers) > 0 {
		notifier, err = notify.NewNotifier(notify.NotifierConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
		})
		if err != nil {
			log.Printf("Warning: run notifier unavailable: %v", err)
			notifier = nil
		} else {
			defer notifier.Close()
		}
	}

	summarizer := highlights.NewSummarizer(gate)
	answerer := ragchat.NewAnswerer(embedder, gate, index)
	store := pipeline.NewStore()

	p := pipeline.New(pipeline.Config{
		Extractor:     extract.NewExtractor(config.MaxArticlesPerSource),
		Clusterer:     dedup.NewClusterer(embedder, cfg.SimilarityThreshold),
		Bloom:         bloom,
		Summarizer:    summarizer,
		Synthesizer:   highlights.NewSynthesizer(summarizer, config.PriorityKeywords),
		Answerer:      answerer,
		Store:         store,
		Notifier:      notifier,
		Archive:       archive,
		ArchiveBucket: cfg.S3Bucket,
		ArchivePrefix: cfg.S3Prefix,
		Sources:       config.NewsSources,
		Categories:    config.Categories,
	})

	news := api.NewNewsController(p, store, gate, config.Categories)
	chat := api.NewChatController(answerer)
	r := api.NewRouter(news, chat)

	addr := ":" + cfg.Port
	log.Printf("Starting API server on %s", addr)
	log.Println("API endpoints available:")
	log.Println("  GET  /api/health")
	log.Println("  POST /api/extract")
	log.Println("  GET  /api/highlights")
	log.Println("  GET  /api/articles")
	log.Println("  POST /api/chat")
	log.Println("  GET  /api/status")

	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// newGenerationProvider picks the configured LLM backend: OpenAI first, then
// Gemini. Returns nil when none is configured, which keeps the gate
// permanently on the extractive fallbacks.
func newGenerationProvider(ctx context.Context, cfg config.Config) generation.Provider {
	if !cfg.UseOpenAI {
		log.Println("Generation disabled by USE_OPENAI=false. Using extractive fallbacks.")
		return nil
	}

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		log.Println("Using OpenAI generation provider")
		return generation.NewOpenAIProvider(key, os.Getenv("OPENAI_MODEL"))
	}

	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		provider, err := generation.NewGeminiProvider(ctx, key, os.Getenv("GEMINI_MODEL"))
		if err != nil {
			log.Printf("Warning: Gemini provider unavailable: %v", err)
			return nil
		}
		log.Println("Using Gemini generation provider")
		return provider
	}

	log.Println("No generation API key provided. Using extractive fallbacks.")
	return nil
}
