package extract

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/zaneinthebay/vc-sentiment-podcast/internal/domain"
	"github.com/zaneinthebay/vc-sentiment-podcast/internal/source"
)

// selectorSet describes one HTML layout family.
type selectorSet struct {
	item    string
	title   string
	date    string
	content string
}

var strategySelectors = map[source.Strategy]selectorSet{
	source.StrategyArticleList: {
		item:    "article",
		title:   "h2, h3",
		date:    "time",
		content: "div.post-content, div.article-content",
	},
	source.StrategyCardList: {
		item:    "div.article-item, div.card, li.article-item",
		title:   "h2, h3",
		date:    "span.date, time",
		content: "div.content, div.excerpt",
	},
	source.StrategyEntryList: {
		item:    "article",
		title:   "h1.entry-title, h1, h2.entry-title",
		date:    "time.entry-date, time",
		content: "div.entry-content, div.post-content",
	},
}

func parseHTML(src source.Descriptor, body string, selectors selectorSet) ([]domain.Post, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	base, err := url.Parse(src.URL)
	if err != nil {
		return nil, fmt.Errorf("parse source url: %w", err)
	}

	var posts []domain.Post
	doc.Find(selectors.item).Each(func(_ int, item *goquery.Selection) {
		title := cleanText(item.Find(selectors.title).First().Text())
		if title == "" {
			return
		}

		post := domain.Post{
			SourceName: src.Name,
			Title:      title,
			Content:    cleanText(item.Find(selectors.content).First().Text()),
			URL:        itemLink(item, base),
		}

		dateSel := item.Find(selectors.date).First()
		raw, hasAttr := dateSel.Attr("datetime")
		if !hasAttr {
			raw = dateSel.Text()
		}
		if parsed, ok := parseDate(raw); ok {
			post.PublishedAt = parsed
		} else {
			post.Dateless = true
		}

		posts = append(posts, post)
	})

	return posts, nil
}

// itemLink extracts the first anchor of an item, resolved against the page
// URL so relative links become canonical.
func itemLink(item *goquery.Selection, base *url.URL) string {
	href, ok := item.Find("a[href]").First().Attr("href")
	if !ok {
		return ""
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

// cleanText collapses runs of whitespace into single spaces.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
