package dedup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"

	"newsbrief/types"

	"github.com/redis/go-redis/v9"
)

// BloomConfig configures the RedisBloom connection and filter key.
type BloomConfig struct {
	Addr     string // e.g. localhost:6379
	Password string
	DB       int
	Key      string // redis key for the bloom filter
	TTL      time.Duration
	// Capacity sets the initial BF.RESERVE capacity (number of items)
	Capacity int
	// ErrorRate sets the desired false positive probability (e.g. 0.001)
	ErrorRate float64
}

// Bloom is a Redis-backed prefilter that drops exact re-extractions of an
// article (same normalized URL and title) before the embedding stage, so the
// semantic clusterer only pays for genuinely new content.
type Bloom struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewBloom creates the prefilter and verifies connectivity.
func NewBloom(cfg BloomConfig) (*Bloom, error) {
	if cfg.Key == "" {
		cfg.Key = "articles:bloom"
	}
	if cfg.TTL == 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.Capacity == 0 {
		cfg.Capacity = 100000
	}
	if cfg.ErrorRate == 0 {
		cfg.ErrorRate = 0.001
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	b := &Bloom{client: client, key: cfg.Key, ttl: cfg.TTL}

	// BF.RESERVE the filter if the key is new. Failure is non-fatal: BF.ADD
	// auto-creates the filter with server defaults on most RedisBloom setups.
	exists, err := client.Exists(ctx, cfg.Key).Result()
	if err == nil && exists == 0 {
		_ = client.Do(ctx, "BF.RESERVE", cfg.Key, fmt.Sprintf("%f", cfg.ErrorRate), cfg.Capacity).Err()
	}

	return b, nil
}

// Close closes the underlying Redis client.
func (b *Bloom) Close() error {
	return b.client.Close()
}

// Seen checks whether the article's normalized URL/title hash is present.
func (b *Bloom) Seen(ctx context.Context, article *types.Article) (bool, error) {
	hash, err := NormalizeAndHash(article)
	if err != nil {
		return false, err
	}

	res, err := b.client.Do(ctx, "BF.EXISTS", b.key, hash).Result()
	if err != nil {
		return false, err
	}

	switch v := res.(type) {
	case int64:
		return v == 1, nil
	case string:
		return v == "1", nil
	default:
		return false, fmt.Errorf("unexpected BF.EXISTS response type %T: %v", res, res)
	}
}

// Remember inserts the article's hash and refreshes the key TTL, keeping the
// filter alive for ttl after the most recent insertion.
func (b *Bloom) Remember(ctx context.Context, article *types.Article) error {
	hash, err := NormalizeAndHash(article)
	if err != nil {
		return err
	}
	if err := b.client.Do(ctx, "BF.ADD", b.key, hash).Err(); err != nil {
		return err
	}
	return b.client.Expire(ctx, b.key, b.ttl).Err()
}

// NormalizeAndHash normalizes the article URL and title and returns a SHA-256
// hex hash of "normalizedURL|normalizedTitle". URL normalization strips the
// fragment, common tracking query params (utm_*, fbclid, gclid) and trailing
// slashes, and lowercases scheme and host; the title is lowercased with
// whitespace collapsed.
func NormalizeAndHash(article *types.Article) (string, error) {
	if article == nil {
		return "", fmt.Errorf("nil article")
	}

	combined := normalizeURL(article.URL) + "|" + normalizeTitle(article.Title)
	h := sha256.Sum256([]byte(combined))
	return hex.EncodeToString(h[:]), nil
}

func normalizeTitle(t string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(t))), " ")
}

func normalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return strings.ToLower(raw)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") || lk == "fbclid" || lk == "gclid" {
			q.Del(k)
		}
	}
	u.RawQuery = q.Encode()

	return strings.TrimRight(u.String(), "/")
}
