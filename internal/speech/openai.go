package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/zaneinthebay/vc-sentiment-podcast/internal/config"
)

// OpenAI synthesizes speech through OpenAI's speech endpoint.
type OpenAI struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

func NewOpenAI(cfg config.SpeechConfig, logger *slog.Logger) *OpenAI {
	model := cfg.Model
	if model == "" {
		model = string(openai.TTSModel1)
	}
	return &OpenAI{
		client: openai.NewClient(cfg.APIKey),
		model:  model,
		logger: logger.With("component", "tts", "backend", "openai"),
	}
}

func (o *OpenAI) Name() string { return "openai" }

// Synthesize converts text to MP3 audio.
func (o *OpenAI) Synthesize(ctx context.Context, req Request) (*Result, error) {
	if req.Text == "" {
		return nil, ErrEmptyScript
	}

	resp, err := o.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model: openai.SpeechModel(o.model),
		Input: req.Text,
		Voice: openai.SpeechVoice(req.Voice),
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return nil, fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
		return nil, fmt.Errorf("tts request: %w", err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}

	result := &Result{Audio: audio, ContentType: "audio/mpeg"}
	if err := ValidateAudio(result.Audio, result.ContentType); err != nil {
		return nil, err
	}

	o.logger.Info("audio synthesized", "bytes", len(audio), "voice", req.Voice)
	return result, nil
}
