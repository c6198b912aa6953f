package aggregate

import (
	"fmt"
	"strings"

	"github.com/zaneinthebay/vc-sentiment-podcast/internal/domain"
)

// Render turns the corpus into a single attributed markdown bundle for the
// script generator: a heading per post with title, source, and date, posts
// grouped by source. The output is a pure function of the corpus.
func Render(c *domain.Corpus) string {
	if len(c.Posts) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("# VC Blog Posts Collection\n\n")
	fmt.Fprintf(&b, "**Window:** %s to %s\n\n",
		c.Window.Start.Format("2006-01-02"), c.Window.End.Format("2006-01-02"))
	fmt.Fprintf(&b, "**Total Posts:** %d\n\n", len(c.Posts))
	fmt.Fprintf(&b, "**Sources:** %d of %d succeeded\n\n", c.SourcesSucceeded, c.SourcesAttempted)
	b.WriteString("---\n")

	for _, sourceName := range sourceOrder(c.Posts) {
		var grouped []domain.Post
		for _, p := range c.Posts {
			if p.SourceName == sourceName {
				grouped = append(grouped, p)
			}
		}

		fmt.Fprintf(&b, "\n## %s (%d posts)\n", sourceName, len(grouped))
		for _, p := range grouped {
			fmt.Fprintf(&b, "\n### %s\n", p.Title)
			fmt.Fprintf(&b, "**Source:** %s\n", p.SourceName)
			fmt.Fprintf(&b, "**Date:** %s\n", p.PublishedAt.Format("2006-01-02"))
			if p.URL != "" {
				fmt.Fprintf(&b, "**URL:** %s\n", p.URL)
			}
			fmt.Fprintf(&b, "\n%s\n\n---\n", p.Content)
		}
	}

	return b.String()
}

// sourceOrder lists source names in first-appearance order, which is itself
// deterministic because corpus ordering is.
func sourceOrder(posts []domain.Post) []string {
	var order []string
	seen := make(map[string]struct{})
	for _, p := range posts {
		if _, ok := seen[p.SourceName]; ok {
			continue
		}
		seen[p.SourceName] = struct{}{}
		order = append(order, p.SourceName)
	}
	return order
}
