// Package source holds the static registry of scrapeable VC blog origins.
package source

import (
	"errors"
	"fmt"

	"github.com/zaneinthebay/vc-sentiment-podcast/internal/config"
)

// Strategy tags the extraction method for a source. The set is closed: one
// tag per distinct HTML layout family.
type Strategy string

const (
	// StrategyArticleList covers layouts listing posts as <article> blocks
	// with an h2 title and a time element (a16z, Sequoia).
	StrategyArticleList Strategy = "article-list"
	// StrategyCardList covers card grids using div items with an h2/h3
	// title and a date span (First Round Review).
	StrategyCardList Strategy = "card-list"
	// StrategyEntryList covers WordPress-style entry markup with
	// h1.entry-title and time.entry-date (AVC, Tomasz Tunguz).
	StrategyEntryList Strategy = "entry-list"
)

var (
	ErrUnknownStrategy = errors.New("unknown extraction strategy")
	ErrEmptyRegistry   = errors.New("at least one source is required")
)

// Descriptor identifies a scrapeable origin. Immutable, defined at process
// start for the lifetime of the process.
type Descriptor struct {
	Name        string
	URL         string
	Strategy    Strategy
	FallbackURL string
}

// Registry is the process-wide constant set of sources for a run.
type Registry struct {
	sources []Descriptor
}

// Default returns the built-in VC source set used when the configuration
// names no sources of its own.
func Default() *Registry {
	return &Registry{sources: []Descriptor{
		{
			Name:        "a16z",
			URL:         "https://a16z.com/blog/",
			Strategy:    StrategyArticleList,
			FallbackURL: "https://a16z.com/feed/",
		},
		{
			Name:     "Sequoia Capital",
			URL:      "https://www.sequoiacap.com/articles/",
			Strategy: StrategyArticleList,
		},
		{
			Name:        "First Round Review",
			URL:         "https://review.firstround.com/latest",
			Strategy:    StrategyCardList,
			FallbackURL: "https://review.firstround.com/feed.xml",
		},
		{
			Name:        "AVC",
			URL:         "https://avc.com/",
			Strategy:    StrategyEntryList,
			FallbackURL: "https://avc.com/feed/",
		},
		{
			Name:        "Tomasz Tunguz",
			URL:         "https://tomtunguz.com/",
			Strategy:    StrategyEntryList,
			FallbackURL: "https://tomtunguz.com/index.xml",
		},
	}}
}

// FromConfig builds a registry from configured sources, falling back to the
// built-in set when none are configured. Descriptor violations are fatal
// here, before any fetch begins.
func FromConfig(configured []config.SourceConfig) (*Registry, error) {
	if len(configured) == 0 {
		return Default(), nil
	}

	sources := make([]Descriptor, 0, len(configured))
	for _, sc := range configured {
		strategy, err := ParseStrategy(sc.Strategy)
		if err != nil {
			return nil, fmt.Errorf("source %q: %w", sc.Name, err)
		}
		sources = append(sources, Descriptor{
			Name:        sc.Name,
			URL:         sc.URL,
			Strategy:    strategy,
			FallbackURL: sc.FallbackURL,
		})
	}

	r := &Registry{sources: sources}
	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// ParseStrategy maps a config tag to a Strategy. An empty tag defaults to
// the article-list family.
func ParseStrategy(tag string) (Strategy, error) {
	switch Strategy(tag) {
	case StrategyArticleList, StrategyCardList, StrategyEntryList:
		return Strategy(tag), nil
	case "":
		return StrategyArticleList, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, tag)
	}
}

func (r *Registry) validate() error {
	if len(r.sources) == 0 {
		return ErrEmptyRegistry
	}
	seen := make(map[string]struct{}, len(r.sources))
	for _, s := range r.sources {
		if s.Name == "" {
			return config.ErrSourceMissingName
		}
		if s.URL == "" {
			return fmt.Errorf("source %q: %w", s.Name, config.ErrSourceMissingURL)
		}
		if _, dup := seen[s.Name]; dup {
			return fmt.Errorf("source %q: %w", s.Name, config.ErrDuplicateSource)
		}
		seen[s.Name] = struct{}{}
	}
	return nil
}

// Sources returns the descriptor set in registration order.
func (r *Registry) Sources() []Descriptor {
	return r.sources
}

// Len returns the number of registered sources.
func (r *Registry) Len() int {
	return len(r.sources)
}
