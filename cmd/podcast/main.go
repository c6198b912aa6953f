package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/zaneinthebay/vc-sentiment-podcast/internal/aggregate"
	"github.com/zaneinthebay/vc-sentiment-podcast/internal/artifact"
	"github.com/zaneinthebay/vc-sentiment-podcast/internal/config"
	"github.com/zaneinthebay/vc-sentiment-podcast/internal/domain"
	"github.com/zaneinthebay/vc-sentiment-podcast/internal/extract"
	"github.com/zaneinthebay/vc-sentiment-podcast/internal/fetch"
	"github.com/zaneinthebay/vc-sentiment-podcast/internal/scrape"
	"github.com/zaneinthebay/vc-sentiment-podcast/internal/script"
	"github.com/zaneinthebay/vc-sentiment-podcast/internal/service"
	"github.com/zaneinthebay/vc-sentiment-podcast/internal/source"
	"github.com/zaneinthebay/vc-sentiment-podcast/internal/speech"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	topic := flag.String("topic", "artificial intelligence", "topic of interest")
	weeks := flag.Int("weeks", 1, "weeks of posts to analyze (1-3)")
	outDir := flag.String("out", "", "output directory (overrides config)")
	dryRun := flag.Bool("dry-run", false, "stop after aggregation and print corpus stats")
	flag.Parse()

	logger := setupLogger("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *outDir != "" {
		cfg.Output.Dir = *outDir
	}

	logger = setupLogger(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	registry, err := source.FromConfig(cfg.Sources)
	if err != nil {
		logger.Error("invalid source registry", "error", err)
		os.Exit(1)
	}

	fetcher := fetch.New(cfg.Scrape, logger)
	extractor := extract.New(logger)
	scraper := scrape.New(registry, fetcher, extractor, cfg.Scrape.Concurrency, logger)
	aggregator := aggregate.New(logger)

	generator := script.NewGenerator(cfg.Script, logger)
	synthesizer, err := speech.NewFromConfig(cfg.Speech, logger)
	if err != nil {
		logger.Error("invalid speech backend", "error", err)
		os.Exit(1)
	}
	writer := artifact.NewWriter(cfg.Output.Dir, logger)

	svc := service.NewPodcastService(
		scraper,
		aggregator,
		generator,
		synthesizer,
		writer,
		logger,
		cfg.Pipeline,
		cfg.Speech,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	req := service.RunRequest{Topic: *topic, WeeksBack: *weeks}

	logger.Info("starting podcast generation",
		"topic", req.Topic,
		"weeks", req.WeeksBack,
		"sources", registry.Len(),
		"speech_backend", synthesizer.Name(),
		"output_dir", cfg.Output.Dir,
	)

	if *dryRun {
		runCollectOnly(ctx, svc, req, logger)
		return
	}

	result, err := svc.Run(ctx, req)
	if err != nil {
		exitWithRunError(err, logger)
	}

	fmt.Printf("Podcast saved to %s\n", result.OutputPath)
	fmt.Printf("  %d posts from %d sources, %d duplicates removed\n",
		len(result.Corpus.Posts), result.Corpus.SourcesSucceeded, result.Corpus.DuplicatesRemoved)
	fmt.Printf("  %d words, about %.1f minutes of audio (%d bytes)\n",
		result.ScriptWords, result.SpokenMinutes, result.AudioBytes)
}

func runCollectOnly(ctx context.Context, svc *service.PodcastService, req service.RunRequest, logger *slog.Logger) {
	corpus, stats, err := svc.Collect(ctx, req)
	if err != nil {
		exitWithRunError(err, logger)
	}

	fmt.Printf("Dry run: %d posts in corpus (window %s to %s)\n",
		len(corpus.Posts),
		corpus.Window.Start.Format("2006-01-02"),
		corpus.Window.End.Format("2006-01-02"),
	)
	fmt.Printf("  sources: %d attempted, %d succeeded, %d failed, %d skipped\n",
		stats.Attempted, stats.Succeeded, stats.Failed, stats.Skipped)
	fmt.Printf("  duplicates removed: %d\n", corpus.DuplicatesRemoved)
}

func exitWithRunError(err error, logger *slog.Logger) {
	if errors.Is(err, domain.ErrInsufficientContent) {
		logger.Error("not enough content collected", "error", err)
		fmt.Fprintln(os.Stderr, "Not enough recent posts were found to build a podcast.")
		fmt.Fprintln(os.Stderr, "Try a wider time window (-weeks 2 or 3) or a broader topic.")
		os.Exit(2)
	}
	logger.Error("podcast generation failed", "error", err)
	os.Exit(1)
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
