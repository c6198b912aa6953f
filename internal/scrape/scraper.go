// Package scrape fans fetches out across all registered sources and gathers
// their extracted posts behind a single barrier.
package scrape

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zaneinthebay/vc-sentiment-podcast/internal/domain"
	"github.com/zaneinthebay/vc-sentiment-podcast/internal/source"
)

// Fetcher retrieves one URL on behalf of a source, folding all failure
// modes into the result.
type Fetcher interface {
	Fetch(ctx context.Context, src source.Descriptor) domain.FetchResult
	FetchURL(ctx context.Context, sourceName, url string) domain.FetchResult
}

// Extractor parses fetched bodies into posts.
type Extractor interface {
	Posts(src source.Descriptor, body string) []domain.Post
	FeedPosts(src source.Descriptor, body string) []domain.Post
}

// Result is everything the gather barrier hands downstream: the unioned
// candidate posts and the per-run fetch statistics.
type Result struct {
	Posts []domain.Post
	Stats domain.ScrapeStats
}

// Scraper runs the scatter/gather fetch stage over the source registry.
type Scraper struct {
	registry    *source.Registry
	fetcher     Fetcher
	extractor   Extractor
	concurrency int
	logger      *slog.Logger
}

func New(registry *source.Registry, fetcher Fetcher, extractor Extractor, concurrency int, logger *slog.Logger) *Scraper {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Scraper{
		registry:    registry,
		fetcher:     fetcher,
		extractor:   extractor,
		concurrency: concurrency,
		logger:      logger.With("component", "scraper"),
	}
}

// sourceOutcome is the per-source gather slot. Each worker writes exactly
// one slot, so the gather step never races.
type sourceOutcome struct {
	fetch domain.FetchStatus
	posts []domain.Post
}

// Scrape fetches every source concurrently through a bounded pool and
// blocks until each has succeeded, exhausted its retries, or been skipped.
// Individual source failures are absorbed into the stats; the only error
// returned is context cancellation.
func (s *Scraper) Scrape(ctx context.Context) (*Result, error) {
	sources := s.registry.Sources()
	outcomes := make([]sourceOutcome, len(sources))
	start := time.Now()

	s.logger.Info("scraping sources", "count", len(sources), "concurrency", s.concurrency)

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, src := range sources {
		g.Go(func() error {
			outcomes[i] = s.scrapeSource(ctx, src)
			return nil
		})
	}
	// Barrier: nothing downstream may start before every slot is written.
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Result{Stats: domain.ScrapeStats{Attempted: len(sources)}}
	for i, outcome := range outcomes {
		switch outcome.fetch {
		case domain.FetchSuccess:
			result.Stats.Succeeded++
		case domain.FetchSkipped:
			result.Stats.Skipped++
		default:
			result.Stats.Failed++
		}
		result.Posts = append(result.Posts, outcome.posts...)
		s.logger.Info("source resolved",
			"source", sources[i].Name,
			"status", outcome.fetch,
			"posts", len(outcome.posts),
		)
	}
	result.Stats.Extracted = len(result.Posts)
	result.Stats.Duration = time.Since(start)

	s.logger.Info("scrape complete",
		"succeeded", result.Stats.Succeeded,
		"failed", result.Stats.Failed,
		"skipped", result.Stats.Skipped,
		"posts", result.Stats.Extracted,
		"duration", result.Stats.Duration,
	)

	return result, nil
}

func (s *Scraper) scrapeSource(ctx context.Context, src source.Descriptor) sourceOutcome {
	fetched := s.fetcher.Fetch(ctx, src)
	outcome := sourceOutcome{fetch: fetched.Status}
	if !fetched.OK() {
		return outcome
	}

	outcome.posts = s.extractor.Posts(src, fetched.Body)
	if len(outcome.posts) > 0 || src.FallbackURL == "" {
		return outcome
	}

	// The primary layout produced nothing; try the syndication feed once.
	s.logger.Info("trying feed fallback", "source", src.Name, "url", src.FallbackURL)
	fallback := s.fetcher.FetchURL(ctx, src.Name, src.FallbackURL)
	if !fallback.OK() {
		return outcome
	}
	outcome.posts = s.extractor.FeedPosts(src, fallback.Body)
	return outcome
}
