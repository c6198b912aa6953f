package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Startup validation errors. A malformed configuration is fatal before any
// fetch begins.
var (
	ErrSourceMissingName = errors.New("source name is required")
	ErrSourceMissingURL  = errors.New("source url is required")
	ErrDuplicateSource   = errors.New("duplicate source name")
	ErrMissingAnthropic  = errors.New("anthropic api key is required")
	ErrMissingSpeechKey  = errors.New("speech synthesis api key is required")
	ErrInvalidMinPosts   = errors.New("pipeline.min_posts must be at least 1")
)

type Config struct {
	Scrape   ScrapeConfig   `yaml:"scrape"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Script   ScriptConfig   `yaml:"script"`
	Speech   SpeechConfig   `yaml:"speech"`
	Output   OutputConfig   `yaml:"output"`
	Sources  []SourceConfig `yaml:"sources"`
	LogLevel string         `yaml:"log_level"`
}

// SourceConfig describes one scrapeable origin. Strategy selects the
// extraction method; FallbackURL points at a syndication feed tried when the
// primary strategy yields nothing.
type SourceConfig struct {
	Name        string `yaml:"name"`
	URL         string `yaml:"url"`
	Strategy    string `yaml:"strategy"`
	FallbackURL string `yaml:"fallback_url"`
}

type ScrapeConfig struct {
	Timeout        time.Duration `yaml:"timeout"`
	Concurrency    int           `yaml:"concurrency"`
	UserAgent      string        `yaml:"user_agent"`
	RequestsPerSec float64       `yaml:"requests_per_sec"`
	Retry          RetryConfig   `yaml:"retry"`
}

type RetryConfig struct {
	MaxAttempts    int           `yaml:"max_attempts"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff"`
}

type PipelineConfig struct {
	// MinPosts is the minimum corpus size below which the run aborts with
	// an insufficient-content error instead of invoking generation.
	MinPosts int `yaml:"min_posts"`
}

type ScriptConfig struct {
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
	TargetWords int           `yaml:"target_words"`
	MinWords    int           `yaml:"min_words"`
	MaxAttempts int           `yaml:"max_attempts"`
	Timeout     time.Duration `yaml:"timeout"`
}

type SpeechConfig struct {
	// Backend is "elevenlabs" or "openai".
	Backend     string        `yaml:"backend"`
	APIKey      string        `yaml:"api_key"`
	Voice       string        `yaml:"voice"`
	Model       string        `yaml:"model"`
	MaxAttempts int           `yaml:"max_attempts"`
	Timeout     time.Duration `yaml:"timeout"`
}

type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// Load reads the YAML config at path, expanding ${VAR} references from the
// environment (.env is honoured when present), and applies defaults. A
// missing file is not an error: defaults plus environment cover a full run.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// run on defaults plus environment
	default:
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg.setDefaults()

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Scrape.Timeout == 0 {
		c.Scrape.Timeout = 20 * time.Second
	}
	if c.Scrape.Concurrency == 0 {
		c.Scrape.Concurrency = 5
	}
	if c.Scrape.Concurrency > 8 {
		c.Scrape.Concurrency = 8
	}
	if c.Scrape.UserAgent == "" {
		c.Scrape.UserAgent = "VC-Sentiment-Podcast-Bot/1.0"
	}
	if c.Scrape.RequestsPerSec == 0 {
		c.Scrape.RequestsPerSec = 4
	}
	if c.Scrape.Retry.MaxAttempts == 0 {
		c.Scrape.Retry.MaxAttempts = 3
	}
	if c.Scrape.Retry.InitialBackoff == 0 {
		c.Scrape.Retry.InitialBackoff = 1 * time.Second
	}
	if c.Scrape.Retry.MaxBackoff == 0 {
		c.Scrape.Retry.MaxBackoff = 30 * time.Second
	}
	if c.Pipeline.MinPosts == 0 {
		c.Pipeline.MinPosts = 3
	}
	if c.Script.APIKey == "" {
		c.Script.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if c.Script.Model == "" {
		c.Script.Model = "claude-3-5-sonnet-20241022"
	}
	if c.Script.MaxTokens == 0 {
		c.Script.MaxTokens = 4096
	}
	if c.Script.Temperature == 0 {
		c.Script.Temperature = 0.7
	}
	if c.Script.TargetWords == 0 {
		c.Script.TargetWords = 2000
	}
	if c.Script.MinWords == 0 {
		c.Script.MinWords = 100
	}
	if c.Script.MaxAttempts == 0 {
		c.Script.MaxAttempts = 3
	}
	if c.Script.Timeout == 0 {
		c.Script.Timeout = 5 * time.Minute
	}
	if c.Speech.Backend == "" {
		c.Speech.Backend = "elevenlabs"
	}
	if c.Speech.APIKey == "" {
		switch c.Speech.Backend {
		case "openai":
			c.Speech.APIKey = os.Getenv("OPENAI_API_KEY")
		default:
			c.Speech.APIKey = os.Getenv("ELEVENLABS_API_KEY")
		}
	}
	if c.Speech.Voice == "" {
		c.Speech.Voice = defaultVoice(c.Speech.Backend)
	}
	if c.Speech.MaxAttempts == 0 {
		c.Speech.MaxAttempts = 3
	}
	if c.Speech.Timeout == 0 {
		c.Speech.Timeout = 2 * time.Minute
	}
	if c.Output.Dir == "" {
		if dir := os.Getenv("PODCAST_OUTPUT_DIR"); dir != "" {
			c.Output.Dir = dir
		} else if home, err := os.UserHomeDir(); err == nil {
			c.Output.Dir = home + "/Desktop"
		} else {
			c.Output.Dir = "."
		}
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func defaultVoice(backend string) string {
	if backend == "openai" {
		return "alloy"
	}
	// ElevenLabs voice ID for "Rachel"
	return "21m00Tcm4TlvDq8ikWAM"
}

// Validate reports startup contract violations: malformed sources and
// missing API keys.
func (c *Config) Validate() error {
	seen := make(map[string]struct{}, len(c.Sources))
	for i, s := range c.Sources {
		if s.Name == "" {
			return fmt.Errorf("source %d: %w", i, ErrSourceMissingName)
		}
		if s.URL == "" {
			return fmt.Errorf("source %q: %w", s.Name, ErrSourceMissingURL)
		}
		if _, dup := seen[s.Name]; dup {
			return fmt.Errorf("source %q: %w", s.Name, ErrDuplicateSource)
		}
		seen[s.Name] = struct{}{}
	}
	if c.Pipeline.MinPosts < 1 {
		return ErrInvalidMinPosts
	}
	if c.Script.APIKey == "" {
		return ErrMissingAnthropic
	}
	if c.Speech.APIKey == "" {
		return ErrMissingSpeechKey
	}
	return nil
}
