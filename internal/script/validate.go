package script

import (
	"errors"
	"fmt"
	"strings"
)

// Quality gate errors.
var (
	ErrEmptyScript      = errors.New("script is empty")
	ErrTooShort         = errors.New("script below minimum word count")
	ErrTooManyBullets   = errors.New("script is mostly bullet points")
	ErrTooFewParagraphs = errors.New("script lacks paragraph structure")
	ErrTooFewSentences  = errors.New("script lacks sentence structure")
)

// Validate checks that a generated script reads as spoken narrative: long
// enough, paragraph-structured, and not a disguised bullet list.
func Validate(s string, minWords int) error {
	if strings.TrimSpace(s) == "" {
		return ErrEmptyScript
	}

	words := WordCount(s)
	if words < minWords {
		return fmt.Errorf("%w: %d words, need %d", ErrTooShort, words, minWords)
	}

	lines := strings.Split(s, "\n")
	bullets := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "-") || strings.HasPrefix(trimmed, "*") ||
			strings.HasPrefix(trimmed, "•") || startsNumbered(trimmed) {
			bullets++
		}
	}
	if bullets > len(lines)*3/10 {
		return fmt.Errorf("%w: %d of %d lines", ErrTooManyBullets, bullets, len(lines))
	}

	paragraphs := 0
	for _, p := range strings.Split(s, "\n\n") {
		if strings.TrimSpace(p) != "" {
			paragraphs++
		}
	}
	if paragraphs < 3 {
		return fmt.Errorf("%w: %d paragraphs", ErrTooFewParagraphs, paragraphs)
	}

	// Roughly one sentence boundary per 30 words of narration.
	if strings.Count(s, ". ") < words/30 {
		return ErrTooFewSentences
	}

	return nil
}

func startsNumbered(line string) bool {
	if len(line) < 2 {
		return false
	}
	return line[0] >= '1' && line[0] <= '9' && (line[1] == '.' || line[1] == ')')
}
