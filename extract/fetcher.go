package extract

import (
	"fmt"
	"time"

	"newsbrief/types"

	"github.com/mmcdole/gofeed"
)

// FetchFeed retrieves and parses an RSS/Atom feed, returning article stubs
// for the category. Bodies are filled in later by the content extractor.
func FetchFeed(feedURL, category string, maxCount int) ([]*types.Article, error) {
	parser := gofeed.NewParser()
	feed, err := parser.ParseURL(feedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	count := len(feed.Items)
	if count > maxCount {
		count = maxCount
	}
	articles := make([]*types.Article, 0, count)

	for i := 0; i < count; i++ {
		item := feed.Items[i]
		if item.Link == "" || item.Title == "" {
			continue
		}

		var publishedAt *time.Time
		if item.PublishedParsed != nil {
			publishedAt = item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			publishedAt = item.UpdatedParsed
		}

		author := ""
		if item.Author != nil {
			author = item.Author.Name
		}

		articles = append(articles, &types.Article{
			Title:       item.Title,
			Body:        item.Description,
			Author:      author,
			Source:      feed.Title,
			URL:         item.Link,
			Category:    category,
			PublishedAt: publishedAt,
			ExtractedAt: time.Now(),
		})
	}

	return articles, nil
}
