// Package extract turns raw markup into posts using a closed set of
// per-layout extraction strategies.
package extract

import (
	"log/slog"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/zaneinthebay/vc-sentiment-podcast/internal/domain"
	"github.com/zaneinthebay/vc-sentiment-podcast/internal/source"
)

// Extractor parses fetched bodies into posts. Strategies are pure
// transformations; an Extractor only carries the logger.
type Extractor struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Extractor {
	return &Extractor{logger: logger.With("component", "extractor")}
}

// Posts applies the source's strategy to a fetched body. Unrecognized
// markup yields zero posts and a warning, never a failure of the run.
func (e *Extractor) Posts(src source.Descriptor, body string) []domain.Post {
	selectors, ok := strategySelectors[src.Strategy]
	if !ok {
		e.logger.Warn("no selectors for strategy", "source", src.Name, "strategy", src.Strategy)
		return nil
	}

	posts, err := parseHTML(src, body, selectors)
	if err != nil {
		e.logger.Warn("markup not parseable", "source", src.Name, "error", err)
		return nil
	}
	if len(posts) == 0 {
		e.logger.Warn("no posts extracted", "source", src.Name, "strategy", src.Strategy)
	}
	return posts
}

// FeedPosts parses a syndication feed body. Used once per source when the
// primary strategy produced nothing and a fallback URL is configured.
func (e *Extractor) FeedPosts(src source.Descriptor, body string) []domain.Post {
	posts, err := parseFeed(src, body)
	if err != nil {
		e.logger.Warn("feed not parseable", "source", src.Name, "error", err)
		return nil
	}
	return posts
}

// parseDate interprets a raw date string. An empty or unintelligible value
// leaves the post dateless rather than guessing.
func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	parsed, err := dateparse.ParseAny(raw)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}
