package config

import (
	"fmt"
	"sort"
	"time"

	"inversebias/internal/entity"
	"inversebias/pkg/config"
)

// SourceConfig describes one configured news source.
type SourceConfig struct {
	Name       string         `mapstructure:"name"`
	BaseURL    string         `mapstructure:"base_url"`
	SitemapURL string         `mapstructure:"sitemap_url"`
	FeedURL    string         `mapstructure:"feed_url"`
	Leaning    entity.Leaning `mapstructure:"leaning"`
}

// Analysis holds subject analysis and bias settings. ExpectedDirection maps
// a source leaning to the sentiment each subject is expected to receive
// from sources of that leaning; a missing entry means no expectation.
type Analysis struct {
	BiasThreshold       float64                                        `mapstructure:"bias_threshold"`
	SentimentCategories []string                                       `mapstructure:"sentiment_categories"`
	ExpectedDirection   map[entity.Leaning]map[string]entity.Sentiment `mapstructure:"expected_direction"`
}

// Crawler holds discovery and fetch settings.
type Crawler struct {
	RequestTimeout       time.Duration `mapstructure:"request_timeout"`
	MaxRetries           int           `mapstructure:"max_retries"`
	RetryBackoff         time.Duration `mapstructure:"retry_backoff"`
	MaxConcurrentSources int           `mapstructure:"max_concurrent_sources"`
	MaxConcurrentFetches int           `mapstructure:"max_concurrent_fetches"`
	PerSourceRPS         float64       `mapstructure:"per_source_rps"`
	RewriteWindow        time.Duration `mapstructure:"rewrite_window"`
	UserAgent            string        `mapstructure:"user_agent"`
}

// Sentiment holds orchestration settings for the sentiment capability.
type Sentiment struct {
	Provider         string        `mapstructure:"provider"`
	Timeout          time.Duration `mapstructure:"timeout"`
	BreakerThreshold int           `mapstructure:"breaker_threshold"`
}

// Gemini holds the configuration for the Gemini API.
type Gemini struct {
	APIKey              string `mapstructure:"api_key"`
	BaseURL             string `mapstructure:"base_url"`
	Model               string `mapstructure:"model"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
	MaxTokenPerMinute   int    `mapstructure:"max_token_per_minute"`
}

// Sync holds storage synchronization settings.
type Sync struct {
	Store       string        `mapstructure:"store"` // redis or file
	SnapshotKey string        `mapstructure:"snapshot_key"`
	FilePath    string        `mapstructure:"file_path"`
	UploadGrace time.Duration `mapstructure:"upload_grace"`
}

// Telegram holds configuration for the run-summary notifier.
type Telegram struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Schedule holds the cron cadence for the schedule command.
type Schedule struct {
	Cron string `mapstructure:"cron"`
}

// Config holds the full configuration for the pipeline service.
type Config struct {
	App       config.App              `mapstructure:"app"`
	Logger    config.Logger           `mapstructure:"logger"`
	Database  config.Database         `mapstructure:"database"`
	Redis     config.Redis            `mapstructure:"redis"`
	Sources   map[string]SourceConfig `mapstructure:"sources"`
	Subjects  []string                `mapstructure:"subjects"`
	Analysis  Analysis                `mapstructure:"analysis"`
	Crawler   Crawler                 `mapstructure:"crawler"`
	Sentiment Sentiment               `mapstructure:"sentiment"`
	Gemini    Gemini                  `mapstructure:"gemini"`
	Sync      Sync                    `mapstructure:"sync"`
	Telegram  Telegram                `mapstructure:"telegram"`
	Schedule  Schedule                `mapstructure:"schedule"`
}

// Load loads the pipeline configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Crawler.RequestTimeout == 0 {
		c.Crawler.RequestTimeout = 30 * time.Second
	}
	if c.Crawler.MaxRetries == 0 {
		c.Crawler.MaxRetries = 3
	}
	if c.Crawler.RetryBackoff == 0 {
		c.Crawler.RetryBackoff = 2 * time.Second
	}
	if c.Crawler.MaxConcurrentSources == 0 {
		c.Crawler.MaxConcurrentSources = 4
	}
	if c.Crawler.MaxConcurrentFetches == 0 {
		c.Crawler.MaxConcurrentFetches = 8
	}
	if c.Crawler.PerSourceRPS == 0 {
		c.Crawler.PerSourceRPS = 1
	}
	if c.Crawler.RewriteWindow == 0 {
		c.Crawler.RewriteWindow = 72 * time.Hour
	}
	if c.Sentiment.Timeout == 0 {
		c.Sentiment.Timeout = 60 * time.Second
	}
	if c.Sentiment.BreakerThreshold == 0 {
		c.Sentiment.BreakerThreshold = 5
	}
	if len(c.Analysis.SentimentCategories) == 0 {
		c.Analysis.SentimentCategories = []string{
			string(entity.SentimentPositive),
			string(entity.SentimentNeutral),
			string(entity.SentimentNegative),
		}
	}
	if c.Sync.UploadGrace == 0 {
		c.Sync.UploadGrace = 2 * time.Minute
	}
	if c.Sync.SnapshotKey == "" {
		c.Sync.SnapshotKey = "inversebias:snapshot:latest"
	}
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return fmt.Errorf("no sources configured")
	}
	for id, src := range c.Sources {
		if !src.Leaning.Valid() {
			return fmt.Errorf("source %q has unknown leaning %q", id, src.Leaning)
		}
		if src.SitemapURL == "" && src.FeedURL == "" {
			return fmt.Errorf("source %q has neither sitemap_url nor feed_url", id)
		}
	}
	if c.Analysis.BiasThreshold <= 0 || c.Analysis.BiasThreshold > 1 {
		return fmt.Errorf("bias_threshold must be in (0,1], got %v", c.Analysis.BiasThreshold)
	}
	for leaning, subjects := range c.Analysis.ExpectedDirection {
		if !leaning.Valid() {
			return fmt.Errorf("expected_direction has unknown leaning %q", leaning)
		}
		for subject, sentiment := range subjects {
			if !sentiment.Valid() {
				return fmt.Errorf("expected_direction[%s][%s] has unknown sentiment %q", leaning, subject, sentiment)
			}
		}
	}
	return nil
}

// SourceList converts the configured sources into entities, ordered by ID
// for deterministic scheduling.
func (c *Config) SourceList() []entity.Source {
	sources := make([]entity.Source, 0, len(c.Sources))
	for id, src := range c.Sources {
		sources = append(sources, entity.Source{
			ID:         id,
			Name:       src.Name,
			BaseURL:    src.BaseURL,
			SitemapURL: src.SitemapURL,
			FeedURL:    src.FeedURL,
			Leaning:    src.Leaning,
		})
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i].ID < sources[j].ID })
	return sources
}
