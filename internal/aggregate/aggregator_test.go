package aggregate

import (
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zaneinthebay/vc-sentiment-podcast/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func day(n int) time.Time {
	return time.Date(2026, 8, n, 12, 0, 0, 0, time.UTC)
}

func testWindow() domain.Window {
	return domain.Window{Start: day(1), End: day(28)}
}

func post(source, title, content string, published time.Time) domain.Post {
	return domain.Post{
		SourceName:  source,
		Title:       title,
		Content:     content,
		URL:         "https://" + strings.ReplaceAll(strings.ToLower(source), " ", "") + ".example.com/post",
		PublishedAt: published,
	}
}

func TestBuildExactDuplicateAcrossSources(t *testing.T) {
	content := "Founders should treat runway as a strategic asset, not a countdown clock."
	posts := []domain.Post{
		post("a16z", "On Runway", content, day(10)),
		post("AVC", "Runway Thinking", content, day(11)),
	}

	corpus := New(testLogger()).Build(posts, testWindow(), 5, 2)

	require.Len(t, corpus.Posts, 1)
	assert.Equal(t, 1, corpus.DuplicatesRemoved)
	assert.Equal(t, "a16z", corpus.Posts[0].SourceName)
}

func TestBuildNearDuplicateAboveThreshold(t *testing.T) {
	base := "The AI infrastructure buildout is entering a new phase. Capital is shifting " +
		"from model training toward inference, and the winners will be companies that " +
		"own distribution rather than raw compute."
	posts := []domain.Post{
		post("a16z", "AI Infra", base, day(10)),
		post("Sequoia Capital", "AI Infra (syndicated)", base+" Originally published on the a16z blog.", day(12)),
	}

	corpus := New(testLogger()).Build(posts, testWindow(), 5, 2)

	require.Len(t, corpus.Posts, 1)
	assert.Equal(t, 1, corpus.DuplicatesRemoved)
}

func TestBuildNearDuplicateBelowThresholdKeepsBoth(t *testing.T) {
	opening := "Venture funding slowed again this quarter."
	posts := []domain.Post{
		post("a16z", "Funding Slowdown", opening+" Our data shows seed rounds holding steady while growth rounds compress sharply, a pattern we last saw in 2016.", day(10)),
		post("AVC", "A Different Take", opening+" But the interesting story is what happens to the companies that raised at peak prices and now face flat rounds at best.", day(12)),
	}

	corpus := New(testLogger()).Build(posts, testWindow(), 5, 2)

	require.Len(t, corpus.Posts, 2)
	assert.Equal(t, 0, corpus.DuplicatesRemoved)
}

func TestBuildThresholdBoundaryIsExclusive(t *testing.T) {
	// 20-rune contents with an LCS of exactly 17: ratio 2*17/40 = 0.85,
	// which must NOT be deduplicated.
	a := "abcdefghijklmnopqrst"
	b := "abcdefghijklmnopq123"
	require.InDelta(t, 0.85, similarity(a, b), 1e-9)

	posts := []domain.Post{
		post("a16z", "Post A", a, day(10)),
		post("AVC", "Post B", b, day(11)),
	}
	corpus := New(testLogger()).Build(posts, testWindow(), 5, 2)

	assert.Len(t, corpus.Posts, 2)
	assert.Equal(t, 0, corpus.DuplicatesRemoved)
}

func TestBuildDeterministicAcrossInputOrder(t *testing.T) {
	content := func(i byte) string {
		return strings.Repeat(string([]byte{'a' + i}), 40) + " unique content block for post"
	}
	var posts []domain.Post
	for i := byte(0); i < 8; i++ {
		posts = append(posts, post("Source "+string([]byte{'A' + i}), "Post", content(i), day(int(i)+2)))
	}
	// One syndicated duplicate thrown in.
	posts = append(posts, post("Source Z", "Copy", content(3), day(20)))

	agg := New(testLogger())
	reference := agg.Build(posts, testWindow(), 9, 9)

	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 5; trial++ {
		shuffled := make([]domain.Post, len(posts))
		copy(shuffled, posts)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		corpus := agg.Build(shuffled, testWindow(), 9, 9)
		require.Equal(t, len(reference.Posts), len(corpus.Posts), "trial %d", trial)
		assert.Equal(t, reference.DuplicatesRemoved, corpus.DuplicatesRemoved)
		for i := range reference.Posts {
			assert.Equal(t, reference.Posts[i].Title, corpus.Posts[i].Title)
			assert.Equal(t, reference.Posts[i].SourceName, corpus.Posts[i].SourceName)
		}
	}
}

func TestBuildOrdersByDateThenSource(t *testing.T) {
	posts := []domain.Post{
		post("Tomasz Tunguz", "Third", strings.Repeat("c", 60), day(15)),
		post("AVC", "Second", strings.Repeat("b", 60), day(10)),
		post("a16z", "First tie", strings.Repeat("a", 60), day(10)),
	}

	corpus := New(testLogger()).Build(posts, testWindow(), 3, 3)

	require.Len(t, corpus.Posts, 3)
	assert.Equal(t, "AVC", corpus.Posts[0].SourceName)
	assert.Equal(t, "a16z", corpus.Posts[1].SourceName)
	assert.Equal(t, "Tomasz Tunguz", corpus.Posts[2].SourceName)
}

func TestBuildEmptyInput(t *testing.T) {
	corpus := New(testLogger()).Build(nil, testWindow(), 5, 0)

	assert.Empty(t, corpus.Posts)
	assert.Equal(t, 0, corpus.DuplicatesRemoved)
	assert.Equal(t, 5, corpus.SourcesAttempted)
	assert.NotEmpty(t, corpus.RunID)
}

func TestBuildDuplicateChainFirstAcceptedWins(t *testing.T) {
	// A~B is above the threshold, B~C is above it, A~C is below it.
	// Candidates compare only against already-accepted posts, so B is
	// dropped against A and C is then judged against A alone and kept.
	a := strings.Repeat("alpha beta gamma delta ", 6)
	b := a + "tail one"
	c := b + strings.Repeat(" epsilon zeta eta theta", 2)

	require.Greater(t, similarity(normalize(a), normalize(b)), 0.85)
	require.Greater(t, similarity(normalize(b), normalize(c)), 0.85)
	require.Less(t, similarity(normalize(a), normalize(c)), 0.85)

	posts := []domain.Post{
		post("a16z", "A", a, day(5)),
		post("AVC", "B", b, day(6)),
		post("Sequoia Capital", "C", c, day(7)),
	}

	corpus := New(testLogger()).Build(posts, testWindow(), 3, 3)

	require.Len(t, corpus.Posts, 2)
	assert.Equal(t, "A", corpus.Posts[0].Title)
	assert.Equal(t, "C", corpus.Posts[1].Title)
	assert.Equal(t, 1, corpus.DuplicatesRemoved)
}
