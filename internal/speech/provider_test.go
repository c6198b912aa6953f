package speech

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zaneinthebay/vc-sentiment-podcast/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// mp3Bytes builds a minimally plausible MP3 payload of at least 1KiB.
func mp3Bytes(header []byte) []byte {
	audio := make([]byte, 2048)
	copy(audio, header)
	return audio
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.SpeechConfig{APIKey: "key", Voice: "v"}

	cfg.Backend = "elevenlabs"
	s, err := NewFromConfig(cfg, testLogger())
	require.NoError(t, err)
	assert.Equal(t, "elevenlabs", s.Name())

	cfg.Backend = "openai"
	s, err = NewFromConfig(cfg, testLogger())
	require.NoError(t, err)
	assert.Equal(t, "openai", s.Name())

	cfg.Backend = "espeak"
	_, err = NewFromConfig(cfg, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown speech backend")
}

func TestValidateAudio(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.ErrorIs(t, ValidateAudio(nil, "audio/mpeg"), ErrInvalidAudio)
	})

	t.Run("too small", func(t *testing.T) {
		assert.ErrorIs(t, ValidateAudio([]byte("tiny"), "audio/mpeg"), ErrInvalidAudio)
	})

	t.Run("id3 header", func(t *testing.T) {
		assert.NoError(t, ValidateAudio(mp3Bytes([]byte("ID3")), "audio/mpeg"))
	})

	t.Run("frame sync header", func(t *testing.T) {
		assert.NoError(t, ValidateAudio(mp3Bytes([]byte{0xFF, 0xFB}), "audio/mpeg"))
	})

	t.Run("bad mp3 header", func(t *testing.T) {
		err := ValidateAudio(mp3Bytes([]byte("<html>rate limit page</html>")), "audio/mpeg")
		require.ErrorIs(t, err, ErrInvalidAudio)
		assert.Contains(t, err.Error(), "bad mp3 header")
	})

	t.Run("non-mpeg skips header check", func(t *testing.T) {
		assert.NoError(t, ValidateAudio(mp3Bytes([]byte("RIFF")), "audio/wav"))
	})
}
