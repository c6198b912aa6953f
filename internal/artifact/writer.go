// Package artifact persists synthesized audio to disk with descriptive,
// collision-safe filenames.
package artifact

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

var (
	ErrEmptyAudio        = errors.New("cannot write empty audio data")
	ErrTooManyCollisions = errors.New("too many filename collisions")
)

// maxSlugLen caps the topic portion of a filename.
const maxSlugLen = 30

// Writer saves audio artifacts under a primary directory, falling back to
// the working directory when the primary is not writable.
type Writer struct {
	dir    string
	now    func() time.Time
	logger *slog.Logger
}

func NewWriter(dir string, logger *slog.Logger) *Writer {
	return &Writer{
		dir:    dir,
		now:    time.Now,
		logger: logger.With("component", "artifact"),
	}
}

// Write persists audio bytes under a filename derived from the current
// timestamp and topic, resolving name collisions with a numeric suffix.
// Returns the final written path.
func (w *Writer) Write(audio []byte, topic string) (string, error) {
	if len(audio) == 0 {
		return "", ErrEmptyAudio
	}

	filename := w.filename(topic)

	path, err := w.writeTo(w.dir, filename, audio)
	if err == nil {
		w.logger.Info("audio saved", "path", path, "bytes", len(audio))
		return path, nil
	}

	w.logger.Warn("primary output dir failed, trying working directory",
		"dir", w.dir, "error", err)
	path, fallbackErr := w.writeTo(".", filename, audio)
	if fallbackErr != nil {
		return "", fmt.Errorf("write audio: %w (fallback: %v)", err, fallbackErr)
	}
	w.logger.Info("audio saved to fallback location", "path", path, "bytes", len(audio))
	return path, nil
}

func (w *Writer) writeTo(dir, filename string, audio []byte) (string, error) {
	path, err := resolveCollision(filepath.Join(dir, filename))
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (w *Writer) filename(topic string) string {
	stamp := w.now().Format("20060102_1504")
	return fmt.Sprintf("vc_podcast_%s_%s.mp3", stamp, Slugify(topic))
}

// Slugify lowers the topic and collapses every non-alphanumeric run into a
// single underscore, capped at 30 runes.
func Slugify(topic string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(topic) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastUnderscore = false
		} else if !lastUnderscore {
			b.WriteRune('_')
			lastUnderscore = true
		}
	}
	slug := strings.Trim(b.String(), "_")
	runes := []rune(slug)
	if len(runes) > maxSlugLen {
		slug = strings.Trim(string(runes[:maxSlugLen]), "_")
	}
	if slug == "" {
		slug = "general"
	}
	return slug
}

// resolveCollision appends _2, _3, ... until the path is free.
func resolveCollision(path string) (string, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return path, nil
	}

	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for counter := 2; counter <= 1000; counter++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, counter, ext)
		if _, err := os.Stat(candidate); errors.Is(err, os.ErrNotExist) {
			return candidate, nil
		}
	}
	return "", ErrTooManyCollisions
}
