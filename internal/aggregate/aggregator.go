package aggregate

import (
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/zaneinthebay/vc-sentiment-podcast/internal/domain"
)

// DuplicateThreshold is the similarity above which a candidate post is
// considered a duplicate of an accepted one. The boundary is exclusive:
// exactly this value is kept.
const DuplicateThreshold = 0.85

// Aggregator collapses near-duplicate posts into a corpus.
type Aggregator struct {
	threshold float64
	logger    *slog.Logger
}

func New(logger *slog.Logger) *Aggregator {
	return &Aggregator{
		threshold: DuplicateThreshold,
		logger:    logger.With("component", "aggregator"),
	}
}

// Build produces the corpus for one run. The input is the unioned,
// time-filtered post set from all sources; ordering of the input is
// irrelevant because the first step fixes a deterministic base order.
//
// Duplicate policy: first accepted wins. Each candidate is compared only
// against posts already accepted, so a chain A~B, B~C above the threshold
// with A~C below it keeps A and drops both B and C.
func (a *Aggregator) Build(posts []domain.Post, w domain.Window, attempted, succeeded int) *domain.Corpus {
	ordered := make([]domain.Post, len(posts))
	copy(ordered, posts)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].PublishedAt.Equal(ordered[j].PublishedAt) {
			return ordered[i].PublishedAt.Before(ordered[j].PublishedAt)
		}
		if ordered[i].SourceName != ordered[j].SourceName {
			return ordered[i].SourceName < ordered[j].SourceName
		}
		return ordered[i].URL < ordered[j].URL
	})

	accepted := make([]domain.Post, 0, len(ordered))
	normalized := make([]string, 0, len(ordered))
	removed := 0

	for _, candidate := range ordered {
		key := a.compareKey(candidate)
		duplicate := false
		for i := range accepted {
			if similarity(key, normalized[i]) > a.threshold {
				a.logger.Debug("duplicate dropped",
					"title", candidate.Title,
					"source", candidate.SourceName,
					"kept_source", accepted[i].SourceName,
				)
				duplicate = true
				break
			}
		}
		if duplicate {
			removed++
			continue
		}
		accepted = append(accepted, candidate)
		normalized = append(normalized, key)
	}

	a.logger.Info("corpus built",
		"candidates", len(posts),
		"accepted", len(accepted),
		"duplicates_removed", removed,
	)

	return &domain.Corpus{
		RunID:             uuid.NewString(),
		Posts:             accepted,
		Window:            w,
		SourcesAttempted:  attempted,
		SourcesSucceeded:  succeeded,
		DuplicatesRemoved: removed,
	}
}

// compareKey picks the text the pairwise scan runs over. Posts without
// body content fall back to their titles so syndicated headline-only items
// still collapse.
func (a *Aggregator) compareKey(p domain.Post) string {
	if key := normalize(p.Content); key != "" {
		return key
	}
	return normalize(p.Title)
}
