package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/zaneinthebay/vc-sentiment-podcast/internal/config"
)

const elevenLabsBaseURL = "https://api.elevenlabs.io/v1"

// ElevenLabs synthesizes speech through the ElevenLabs text-to-speech API.
// There is no official Go SDK, so this speaks the HTTP API directly.
type ElevenLabs struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewElevenLabs(cfg config.SpeechConfig, logger *slog.Logger) *ElevenLabs {
	model := cfg.Model
	if model == "" {
		model = "eleven_monolingual_v1"
	}
	return &ElevenLabs{
		apiKey:     cfg.APIKey,
		model:      model,
		baseURL:    elevenLabsBaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.With("component", "tts", "backend", "elevenlabs"),
	}
}

func (e *ElevenLabs) Name() string { return "elevenlabs" }

type elevenLabsPayload struct {
	Text          string             `json:"text"`
	ModelID       string             `json:"model_id"`
	VoiceSettings elevenLabsSettings `json:"voice_settings"`
}

type elevenLabsSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

// Synthesize converts text to MP3 audio. A 429 surfaces as ErrRateLimited
// so the pipeline can back off and retry.
func (e *ElevenLabs) Synthesize(ctx context.Context, req Request) (*Result, error) {
	if req.Text == "" {
		return nil, ErrEmptyScript
	}

	payload := elevenLabsPayload{
		Text:    req.Text,
		ModelID: e.model,
		VoiceSettings: elevenLabsSettings{
			Stability:       0.5,
			SimilarityBoost: 0.75,
			UseSpeakerBoost: true,
		},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/text-to-speech/%s", e.baseURL, req.Voice)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "audio/mpeg")
	httpReq.Header.Set("xi-api-key", e.apiKey)

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("tts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("tts failed (status %d): %s", resp.StatusCode, string(body))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}

	result := &Result{Audio: audio, ContentType: "audio/mpeg"}
	if err := ValidateAudio(result.Audio, result.ContentType); err != nil {
		return nil, err
	}

	e.logger.Info("audio synthesized", "bytes", len(audio), "voice", req.Voice)
	return result, nil
}
