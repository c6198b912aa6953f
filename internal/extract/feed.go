package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/zaneinthebay/vc-sentiment-podcast/internal/domain"
	"github.com/zaneinthebay/vc-sentiment-podcast/internal/source"
)

func parseFeed(src source.Descriptor, body string) ([]domain.Post, error) {
	feed, err := gofeed.NewParser().ParseString(body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	posts := make([]domain.Post, 0, len(feed.Items))
	for _, item := range feed.Items {
		title := cleanText(item.Title)
		if title == "" {
			continue
		}

		content := item.Content
		if content == "" {
			content = item.Description
		}

		post := domain.Post{
			SourceName: src.Name,
			Title:      title,
			Content:    htmlToText(content),
			URL:        item.Link,
		}

		switch {
		case item.PublishedParsed != nil:
			post.PublishedAt = *item.PublishedParsed
		case item.UpdatedParsed != nil:
			post.PublishedAt = *item.UpdatedParsed
		default:
			post.Dateless = true
		}

		posts = append(posts, post)
	}

	return posts, nil
}

// htmlToText strips markup from feed content, leaving whitespace-normalized
// plain text. Feed bodies are routinely HTML even in description fields.
func htmlToText(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return cleanText(s)
	}
	return cleanText(doc.Text())
}
