package domain

import "errors"

// ErrInsufficientContent is the single hard-stop condition the scraping core
// raises: the run produced too little content to generate a script from.
// Individual source failures are absorbed as counts and never surface here.
var ErrInsufficientContent = errors.New("insufficient content for the requested window")

// Corpus is the deduplicated, deterministically ordered result of one
// pipeline run. Created once by the aggregator, immutable afterwards and
// owned exclusively by the caller that requested the run.
type Corpus struct {
	RunID             string
	Posts             []Post
	Window            Window
	SourcesAttempted  int
	SourcesSucceeded  int
	DuplicatesRemoved int
}

// Sufficient reports whether the corpus carries at least minPosts posts.
func (c *Corpus) Sufficient(minPosts int) bool {
	return len(c.Posts) >= minPosts
}

// SourcesRepresented counts the distinct sources that contributed posts.
func (c *Corpus) SourcesRepresented() int {
	seen := make(map[string]struct{}, len(c.Posts))
	for _, p := range c.Posts {
		seen[p.SourceName] = struct{}{}
	}
	return len(seen)
}
