// Package script synthesizes a narrated podcast script from the rendered
// corpus using Anthropic's Messages API.
package script

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/zaneinthebay/vc-sentiment-podcast/internal/config"
)

// ErrGeneration wraps script generation failures, including scripts that
// never pass the quality gate.
var ErrGeneration = errors.New("script generation failed")

// Generator produces podcast scripts from aggregated corpus text.
type Generator struct {
	client anthropic.Client
	cfg    config.ScriptConfig
	logger *slog.Logger
}

func NewGenerator(cfg config.ScriptConfig, logger *slog.Logger) *Generator {
	return &Generator{
		client: anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		cfg:    cfg,
		logger: logger.With("component", "script"),
	}
}

// Generate asks the model for a narrative script over the rendered corpus
// and validates the result, retrying on API errors and quality failures up
// to the configured attempt limit.
func (g *Generator) Generate(ctx context.Context, corpusText, topic, windowDescription string) (string, error) {
	prompt := BuildPrompt(corpusText, topic, windowDescription, g.cfg.TargetWords)

	var lastErr error
	for attempt := 1; attempt <= g.cfg.MaxAttempts; attempt++ {
		g.logger.Info("generating script", "attempt", attempt, "model", g.cfg.Model)

		reqCtx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
		resp, err := g.client.Messages.New(reqCtx, anthropic.MessageNewParams{
			Model:       anthropic.Model(g.cfg.Model),
			MaxTokens:   int64(g.cfg.MaxTokens),
			Temperature: anthropic.Float(g.cfg.Temperature),
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
			},
		})
		cancel()
		if err != nil {
			lastErr = fmt.Errorf("anthropic message: %w", err)
			g.logger.Warn("script attempt failed", "attempt", attempt, "error", err)
			continue
		}

		var text strings.Builder
		for _, block := range resp.Content {
			if block.Type == "text" {
				text.WriteString(block.Text)
			}
		}
		generated := text.String()

		if err := Validate(generated, g.cfg.MinWords); err != nil {
			lastErr = err
			g.logger.Warn("script failed quality gate", "attempt", attempt, "error", err)
			continue
		}

		words := WordCount(generated)
		g.logger.Info("script generated",
			"words", words,
			"estimated_minutes", fmt.Sprintf("%.1f", EstimateSpokenMinutes(generated)),
		)
		return generated, nil
	}

	return "", fmt.Errorf("%w after %d attempts: %v", ErrGeneration, g.cfg.MaxAttempts, lastErr)
}

// WordCount counts whitespace-separated words.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// EstimateSpokenMinutes estimates speaking time at 150 words per minute.
func EstimateSpokenMinutes(s string) float64 {
	return float64(WordCount(s)) / 150
}
