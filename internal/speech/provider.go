// Package speech converts a finished script into audio bytes through a
// pluggable text-to-speech backend.
package speech

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/zaneinthebay/vc-sentiment-podcast/internal/config"
)

var (
	// ErrRateLimited marks a synthesis failure the caller should retry
	// with backoff.
	ErrRateLimited = errors.New("speech backend rate limited")
	// ErrInvalidAudio marks a response that is not playable audio.
	ErrInvalidAudio = errors.New("synthesized audio failed validation")
	// ErrEmptyScript rejects synthesis of a blank script.
	ErrEmptyScript = errors.New("cannot synthesize empty script")

	errUnknownBackend = errors.New("unknown speech backend")
)

// Request holds the parameters for one synthesis call.
type Request struct {
	Text  string
	Voice string
}

// Result holds the generated audio and its content type.
type Result struct {
	Audio       []byte
	ContentType string
}

// Synthesizer is the interface for text-to-speech backends.
type Synthesizer interface {
	Synthesize(ctx context.Context, req Request) (*Result, error)
	Name() string
}

// NewFromConfig selects and builds the configured backend.
func NewFromConfig(cfg config.SpeechConfig, logger *slog.Logger) (Synthesizer, error) {
	switch cfg.Backend {
	case "elevenlabs":
		return NewElevenLabs(cfg, logger), nil
	case "openai":
		return NewOpenAI(cfg, logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownBackend, cfg.Backend)
	}
}

// ValidateAudio checks that audio bytes are plausibly a playable artifact:
// non-empty, at least 1KiB, and for MP3 content carrying an ID3 tag or an
// MPEG frame sync at the front.
func ValidateAudio(audio []byte, contentType string) error {
	if len(audio) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidAudio)
	}
	if len(audio) < 1024 {
		return fmt.Errorf("%w: %d bytes", ErrInvalidAudio, len(audio))
	}
	if contentType == "audio/mpeg" {
		id3 := audio[0] == 'I' && audio[1] == 'D' && audio[2] == '3'
		frameSync := audio[0] == 0xFF && audio[1]&0xE0 == 0xE0
		if !id3 && !frameSync {
			return fmt.Errorf("%w: bad mp3 header", ErrInvalidAudio)
		}
	}
	return nil
}
