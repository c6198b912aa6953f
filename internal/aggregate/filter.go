// Package aggregate merges time-filtered posts from all sources into a
// deduplicated, deterministically ordered corpus.
package aggregate

import (
	"github.com/zaneinthebay/vc-sentiment-podcast/internal/domain"
)

// FilterByWindow keeps posts published inside the inclusive window.
// Dateless posts are dropped rather than assigned a guessed date. Pure and
// idempotent: filtering a filtered set is a no-op.
func FilterByWindow(posts []domain.Post, w domain.Window) []domain.Post {
	filtered := make([]domain.Post, 0, len(posts))
	for _, p := range posts {
		if p.Dateless {
			continue
		}
		if w.Contains(p.PublishedAt) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}
