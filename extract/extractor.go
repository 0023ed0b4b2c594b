package extract

import (
	"fmt"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"newsbrief/types"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

const (
	workerCount      = 5
	extractorTimeout = 30 * time.Second
	pageTimeout      = 15 * time.Second

	// maxTitleChars and maxBodyChars bound stored article size.
	maxTitleChars = 500
	maxBodyChars  = 5000

	// minBodyChars drops pages that yielded no real article text.
	minBodyChars = 100
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Extractor discovers article links on news front pages and extracts their
// full content with a worker pool.
type Extractor struct {
	client       *http.Client
	maxPerSource int
	userAgent    string
}

func NewExtractor(maxPerSource int) *Extractor {
	return &Extractor{
		client:       &http.Client{Timeout: pageTimeout},
		maxPerSource: maxPerSource,
		userAgent:    "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
	}
}

// ExtractCategory pulls articles for a category from each source URL.
// Feed URLs are parsed as RSS; everything else is scraped for article links.
// Per-source failures are logged and skipped.
func (e *Extractor) ExtractCategory(category string, sources []string) []*types.Article {
	var articles []*types.Article
	for _, source := range sources {
		log.Printf("Extracting from %s for category %s", source, category)

		var fromSource []*types.Article
		var err error
		if looksLikeFeed(source) {
			fromSource, err = FetchFeed(source, category, e.maxPerSource)
		} else {
			fromSource, err = e.extractFromPage(source, category)
		}
		if err != nil {
			log.Printf("Warning: error extracting from %s: %v", source, err)
			continue
		}
		articles = append(articles, fromSource...)
	}
	return articles
}

func looksLikeFeed(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasSuffix(lower, ".xml") ||
		strings.Contains(lower, "/rss") ||
		strings.Contains(lower, "/feed")
}

// extractFromPage scrapes a front page for article links, then extracts the
// content of each with a worker pool.
func (e *Extractor) extractFromPage(pageURL, category string) ([]*types.Article, error) {
	req, err := http.NewRequest(http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, pageURL)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	links := discoverArticleLinks(doc, pageURL)
	if len(links) > e.maxPerSource {
		links = links[:e.maxPerSource]
	}
	log.Printf("Found %d potential articles from %s", len(links), pageURL)

	sourceName := hostOf(pageURL)
	results := make([]*types.Article, len(links))

	var wg sync.WaitGroup
	linkChan := make(chan int, len(links))
	for w := 0; w < workerCount; w++ {
		go func(workerID int) {
			for i := range linkChan {
				article, err := e.extractArticle(links[i], sourceName, category)
				if err != nil {
					log.Printf("[Worker %d] Failed to extract %s: %v", workerID, links[i].URL, err)
				} else {
					results[i] = article
				}
				wg.Done()
			}
		}(w)
	}
	for i := range links {
		wg.Add(1)
		linkChan <- i
	}
	wg.Wait()
	close(linkChan)

	articles := make([]*types.Article, 0, len(links))
	for _, a := range results {
		if a != nil {
			articles = append(articles, a)
		}
	}
	log.Printf("Successfully extracted %d articles from %s", len(articles), pageURL)
	return articles, nil
}

// extractArticle pulls the readable content of a single article page.
func (e *Extractor) extractArticle(link articleLink, sourceName, category string) (*types.Article, error) {
	extracted, err := readability.FromURL(link.URL, extractorTimeout)
	if err != nil {
		return nil, fmt.Errorf("readability extraction failed: %w", err)
	}

	body := whitespaceRe.ReplaceAllString(strings.TrimSpace(extracted.TextContent), " ")
	if len(body) < minBodyChars {
		return nil, fmt.Errorf("too little content (%d chars)", len(body))
	}
	if runes := []rune(body); len(runes) > maxBodyChars {
		body = string(runes[:maxBodyChars])
	}

	title := link.Title
	if extracted.Title != "" {
		title = extracted.Title
	}
	if runes := []rune(title); len(runes) > maxTitleChars {
		title = string(runes[:maxTitleChars])
	}

	return &types.Article{
		Title:       title,
		Body:        body,
		Author:      extracted.Byline,
		Source:      sourceName,
		URL:         link.URL,
		Category:    category,
		ExtractedAt: time.Now(),
	}, nil
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}
