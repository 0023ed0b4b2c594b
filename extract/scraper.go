package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// minLinkTextChars filters out navigation and teaser links.
const minLinkTextChars = 20

// articleLink is a discovered candidate article on a category page.
type articleLink struct {
	URL   string
	Title string
}

var linkSelectors = []string{
	`a[href*="/news/"]`,
	`a[href*="/article/"]`,
	`a[href*="/story/"]`,
	`a[href*="/sport/"]`,
	`a[href*="/business/"]`,
	`a[href*="/lifestyle/"]`,
	`a[href*="/entertainment/"]`,
	"article a",
	".article a",
	".story a",
	".news-item a",
}

var excludePatterns = []string{
	"/tag/", "/category/", "/author/", "/page/", "/search",
	"mailto:", "javascript:", "#", "/about", "/contact",
}

var includePatterns = []string{
	"/news/", "/article/", "/story/", "/2026/", "/2025/",
	"/sport/", "/lifestyle/", "/business/", "/entertainment/",
}

// discoverArticleLinks finds likely article links on a front or category page,
// deduplicated by absolute URL in document order.
func discoverArticleLinks(doc *goquery.Document, baseURL string) []articleLink {
	var links []articleLink
	seen := make(map[string]bool)

	collect := func(s *goquery.Selection) {
		href, _ := s.Attr("href")
		text := strings.TrimSpace(s.Text())
		if href == "" || len(text) <= minLinkTextChars {
			return
		}
		full := makeAbsoluteURL(baseURL, href)
		if seen[full] || !isArticleLink(href, text) {
			return
		}
		seen[full] = true
		links = append(links, articleLink{URL: full, Title: text})
	}

	for _, selector := range linkSelectors {
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			collect(s)
		})
	}

	// Fallback: scan every link on the page.
	if len(links) == 0 {
		doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
			collect(s)
		})
	}

	return links
}

// isArticleLink applies URL-shape heuristics to separate articles from
// navigation, tag pages, and utility links.
func isArticleLink(href, text string) bool {
	if len(text) < minLinkTextChars {
		return false
	}

	lower := strings.ToLower(href)
	for _, pattern := range excludePatterns {
		if strings.Contains(lower, pattern) {
			return false
		}
	}
	for _, pattern := range includePatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

func makeAbsoluteURL(baseURL, href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
