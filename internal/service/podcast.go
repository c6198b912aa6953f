package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/zaneinthebay/vc-sentiment-podcast/internal/aggregate"
	"github.com/zaneinthebay/vc-sentiment-podcast/internal/config"
	"github.com/zaneinthebay/vc-sentiment-podcast/internal/domain"
	"github.com/zaneinthebay/vc-sentiment-podcast/internal/script"
	"github.com/zaneinthebay/vc-sentiment-podcast/internal/speech"
)

// ErrInvalidWeeks rejects run requests outside the supported lookback.
var ErrInvalidWeeks = errors.New("weeks back must be between 1 and 3")

// RunRequest describes one podcast generation run.
type RunRequest struct {
	Topic     string
	WeeksBack int
}

// RunResult summarizes a completed run.
type RunResult struct {
	OutputPath    string
	Corpus        *domain.Corpus
	Stats         domain.ScrapeStats
	ScriptWords   int
	SpokenMinutes float64
	AudioBytes    int
	Duration      time.Duration
}

// PodcastService drives the pipeline end to end: scrape, filter, aggregate,
// generate, synthesize, write.
type PodcastService struct {
	scraper    Scraper
	aggregator *aggregate.Aggregator
	generator  ScriptGenerator
	speech     Synthesizer
	writer     ArtifactWriter
	logger     *slog.Logger

	minPosts      int
	voice         string
	speechRetries int

	// injectable for deterministic window tests
	now           func() time.Time
	speechBackoff time.Duration
}

func NewPodcastService(
	scraper Scraper,
	aggregator *aggregate.Aggregator,
	generator ScriptGenerator,
	synthesizer Synthesizer,
	writer ArtifactWriter,
	logger *slog.Logger,
	pipeline config.PipelineConfig,
	speechCfg config.SpeechConfig,
) *PodcastService {
	return &PodcastService{
		scraper:       scraper,
		aggregator:    aggregator,
		generator:     generator,
		speech:        synthesizer,
		writer:        writer,
		logger:        logger.With("component", "pipeline"),
		minPosts:      pipeline.MinPosts,
		voice:         speechCfg.Voice,
		speechRetries: speechCfg.MaxAttempts,
		now:           time.Now,
		speechBackoff: time.Second,
	}
}

// Collect runs the scraping half of the pipeline: scatter/gather fetch,
// time filter, aggregation. It returns the corpus and fetch stats, raising
// ErrInsufficientContent when the run cannot feed generation: zero
// succeeded sources or a corpus below the minimum is never a silent empty
// success.
func (s *PodcastService) Collect(ctx context.Context, req RunRequest) (*domain.Corpus, domain.ScrapeStats, error) {
	if req.WeeksBack < 1 || req.WeeksBack > 3 {
		return nil, domain.ScrapeStats{}, ErrInvalidWeeks
	}

	end := s.now()
	window := domain.Window{Start: end.AddDate(0, 0, -7*req.WeeksBack), End: end}

	s.logger.Info("collecting posts",
		"topic", req.Topic,
		"window_start", window.Start.Format("2006-01-02"),
		"window_end", window.End.Format("2006-01-02"),
	)

	scraped, err := s.scraper.Scrape(ctx)
	if err != nil {
		return nil, domain.ScrapeStats{}, fmt.Errorf("scrape: %w", err)
	}

	filtered := aggregate.FilterByWindow(scraped.Posts, window)
	s.logger.Info("time filter applied",
		"extracted", len(scraped.Posts),
		"in_window", len(filtered),
	)

	corpus := s.aggregator.Build(filtered, window, scraped.Stats.Attempted, scraped.Stats.Succeeded)

	if scraped.Stats.Succeeded == 0 {
		return corpus, scraped.Stats, fmt.Errorf(
			"%w: all %d sources failed", domain.ErrInsufficientContent, scraped.Stats.Attempted)
	}
	if !corpus.Sufficient(s.minPosts) {
		return corpus, scraped.Stats, fmt.Errorf(
			"%w: %d posts collected, need %d", domain.ErrInsufficientContent, len(corpus.Posts), s.minPosts)
	}

	return corpus, scraped.Stats, nil
}

// Run executes the full pipeline and returns the written artifact path with
// run statistics.
func (s *PodcastService) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	start := s.now()

	corpus, stats, err := s.Collect(ctx, req)
	if err != nil {
		return nil, err
	}

	rendered := aggregate.Render(corpus)
	windowDescription := fmt.Sprintf("%d days", 7*req.WeeksBack)

	generated, err := s.generator.Generate(ctx, rendered, req.Topic, windowDescription)
	if err != nil {
		return nil, fmt.Errorf("generate script: %w", err)
	}

	audio, err := s.synthesizeWithBackoff(ctx, generated)
	if err != nil {
		return nil, fmt.Errorf("synthesize speech: %w", err)
	}

	path, err := s.writer.Write(audio.Audio, req.Topic)
	if err != nil {
		return nil, fmt.Errorf("write artifact: %w", err)
	}

	result := &RunResult{
		OutputPath:    path,
		Corpus:        corpus,
		Stats:         stats,
		ScriptWords:   script.WordCount(generated),
		SpokenMinutes: script.EstimateSpokenMinutes(generated),
		AudioBytes:    len(audio.Audio),
		Duration:      time.Since(start),
	}

	s.logger.Info("run complete",
		"run_id", corpus.RunID,
		"path", result.OutputPath,
		"posts", len(corpus.Posts),
		"duplicates_removed", corpus.DuplicatesRemoved,
		"script_words", result.ScriptWords,
		"audio_bytes", result.AudioBytes,
		"duration", result.Duration,
	)

	return result, nil
}

// synthesizeWithBackoff retries rate-limited synthesis with exponential
// backoff. Other synthesis failures are final.
func (s *PodcastService) synthesizeWithBackoff(ctx context.Context, text string) (*speech.Result, error) {
	var lastErr error
	backoff := s.speechBackoff

	for attempt := 1; attempt <= s.speechRetries; attempt++ {
		result, err := s.speech.Synthesize(ctx, speech.Request{Text: text, Voice: s.voice})
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, speech.ErrRateLimited) {
			return nil, err
		}

		lastErr = err
		if attempt == s.speechRetries {
			break
		}
		s.logger.Warn("speech backend rate limited, backing off",
			"attempt", attempt, "backoff", backoff, "backend", s.speech.Name())

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	return nil, fmt.Errorf("after %d attempts: %w", s.speechRetries, lastErr)
}
