package config

import (
	"os"
	"strconv"
	"strings"
)

// Default tuning values for the processing pipeline.
const (
	// SimilarityThreshold is the cosine similarity above which two articles
	// are considered coverage of the same story.
	SimilarityThreshold = 0.85

	// MaxSearchResults is the default number of documents retrieved per
	// chat query.
	MaxSearchResults = 3

	// MaxArticlesPerSource caps how many article links are followed per
	// source page.
	MaxArticlesPerSource = 10
)

// Categories lists the topic categories the system aggregates.
var Categories = []string{"sports", "lifestyle", "music", "finance"}

// PriorityKeywords boost a highlight's score when they appear in the
// underlying articles.
var PriorityKeywords = []string{
	"breaking news",
	"breaking",
	"urgent",
	"exclusive",
	"alert",
	"update",
	"developing",
}

// NewsSources maps each category to its source section pages.
var NewsSources = map[string][]string{
	"sports": {
		"https://www.abc.net.au/news/sport/",
		"https://www.smh.com.au/sport",
		"https://www.theage.com.au/sport",
	},
	"lifestyle": {
		"https://www.abc.net.au/news/lifestyle/",
		"https://www.smh.com.au/lifestyle",
		"https://www.theage.com.au/lifestyle",
	},
	"music": {
		"https://www.abc.net.au/news/entertainment/arts/",
		"https://www.smh.com.au/entertainment/music",
	},
	"finance": {
		"https://www.abc.net.au/news/business/",
		"https://www.smh.com.au/business",
		"https://www.theage.com.au/business",
		"https://www.afr.com/",
	},
}

// Config carries the environment-derived settings for one process.
type Config struct {
	Port                string
	SimilarityThreshold float64

	// Generation backend. UseOpenAI false forces extractive summaries and
	// fallback chat answers regardless of configured keys.
	UseOpenAI bool

	// Chroma vector index. Empty host selects the in-memory index.
	ChromaHost       string
	ChromaPort       int
	ChromaCollection string

	// Redis bloom prefilter for exact URL/title duplicates. Empty addr
	// disables the prefilter.
	RedisAddr     string
	RedisPassword string

	// Optional S3 archive of highlight runs.
	S3Bucket string
	S3Region string
	S3Prefix string

	// Optional Kafka run-completion events.
	KafkaBrokers []string
	KafkaTopic   string
}

// FromEnv builds a Config from environment variables, applying defaults.
func FromEnv() Config {
	cfg := Config{
		Port:                getEnvOrDefault("PORT", "8080"),
		SimilarityThreshold: getEnvFloatOrDefault("SIMILARITY_THRESHOLD", SimilarityThreshold),
		UseOpenAI:           !strings.EqualFold(os.Getenv("USE_OPENAI"), "false"),
		ChromaHost:          os.Getenv("CHROMA_HOST"),
		ChromaPort:          getEnvIntOrDefault("CHROMA_PORT", 8000),
		ChromaCollection:    getEnvOrDefault("CHROMA_COLLECTION", "news_highlights"),
		RedisAddr:           os.Getenv("REDIS_ADDR"),
		RedisPassword:       os.Getenv("REDIS_PASS"),
		S3Bucket:            strings.TrimSpace(os.Getenv("S3_BUCKET")),
		S3Region:            strings.TrimSpace(os.Getenv("S3_REGION")),
		S3Prefix:            strings.TrimSpace(os.Getenv("S3_PREFIX")),
		KafkaTopic:          getEnvOrDefault("KAFKA_TOPIC", "newsbrief.runs"),
	}

	if v := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); v != "" {
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	return cfg
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvFloatOrDefault(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil && f > 0 && f < 1 {
			return f
		}
	}
	return defaultVal
}
