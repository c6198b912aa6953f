package artifact

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func fixedWriter(dir string) *Writer {
	w := NewWriter(dir, testLogger())
	w.now = func() time.Time {
		return time.Date(2026, 8, 28, 14, 30, 0, 0, time.UTC)
	}
	return w
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	w := fixedWriter(dir)

	path, err := w.Write([]byte("audio-bytes"), "AI & Machine Learning")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "vc_podcast_20260828_1430_ai_machine_learning.mp3"), path)

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("audio-bytes"), written)
}

func TestWriteEmptyAudio(t *testing.T) {
	w := fixedWriter(t.TempDir())

	_, err := w.Write(nil, "ai")
	assert.ErrorIs(t, err, ErrEmptyAudio)
}

func TestWriteCollisionSuffix(t *testing.T) {
	dir := t.TempDir()
	w := fixedWriter(dir)

	first, err := w.Write([]byte("first"), "ai")
	require.NoError(t, err)
	second, err := w.Write([]byte("second"), "ai")
	require.NoError(t, err)
	third, err := w.Write([]byte("third"), "ai")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "vc_podcast_20260828_1430_ai.mp3"), first)
	assert.Equal(t, filepath.Join(dir, "vc_podcast_20260828_1430_ai_2.mp3"), second)
	assert.Equal(t, filepath.Join(dir, "vc_podcast_20260828_1430_ai_3.mp3"), third)

	written, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), written, "collision must not overwrite the earlier artifact")
}

func TestWriteFallsBackToWorkingDirectory(t *testing.T) {
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer func() { _ = os.Chdir(orig) }()

	w := fixedWriter(filepath.Join(string(os.PathSeparator), "nonexistent", "output", "dir"))

	path, err := w.Write([]byte("audio"), "ai")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(".", "vc_podcast_20260828_1430_ai.mp3"), path)
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"artificial intelligence", "artificial_intelligence"},
		{"AI & Machine Learning", "ai_machine_learning"},
		{"  fintech!!  ", "fintech"},
		{"a---b___c", "a_b_c"},
		{"", "general"},
		{"!!!", "general"},
		{"Über Markets", "über_markets"},
		{"this topic name is far too long to fit in a filename", "this_topic_name_is_far_too_lon"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Slugify(tc.in), "in=%q", tc.in)
	}
}

func TestResolveCollisionExhausted(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "clip.mp3")
	require.NoError(t, os.WriteFile(base, []byte("x"), 0o644))
	for i := 2; i <= 1000; i++ {
		name := filepath.Join(dir, "clip_"+strconv.Itoa(i)+".mp3")
		require.NoError(t, os.WriteFile(name, []byte("x"), 0o644))
	}

	_, err := resolveCollision(base)
	assert.ErrorIs(t, err, ErrTooManyCollisions)
}
