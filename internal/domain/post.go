package domain

import "time"

// Post is a single blog post extracted from a VC source. Immutable after
// extraction; uniqueness across sources is not guaranteed, syndication
// produces near-duplicates with different SourceName/URL.
type Post struct {
	SourceName  string
	Title       string
	Content     string
	URL         string
	PublishedAt time.Time
	// Dateless marks posts whose publication date could not be parsed.
	// They survive extraction but are dropped by the time filter instead
	// of being assigned a guessed date.
	Dateless bool
}

// Window is an inclusive [Start, End] publication date range.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window, boundaries included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}
