package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/zaneinthebay/vc-sentiment-podcast/internal/scrape"
	"github.com/zaneinthebay/vc-sentiment-podcast/internal/speech"
)

// Scraper runs the scatter/gather fetch stage and returns the unioned
// candidate posts with fetch statistics.
type Scraper interface {
	Scrape(ctx context.Context) (*scrape.Result, error)
}

// ScriptGenerator synthesizes a narrative script from rendered corpus text.
type ScriptGenerator interface {
	Generate(ctx context.Context, corpusText, topic, windowDescription string) (string, error)
}

// Synthesizer converts a script into audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, req speech.Request) (*speech.Result, error)
	Name() string
}

// ArtifactWriter persists audio bytes and returns the written path.
type ArtifactWriter interface {
	Write(audio []byte, topic string) (string, error)
}
