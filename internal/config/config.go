package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the job search platform.
type Config struct {
	ScrapeInterval time.Duration
	LimitPerCell   int // max postings fetched per source × query cell
	DatabasePath   string
	ResumePath     string
	Search         SearchConfig
	Sources        SourcesConfig
	Notification   NotificationConfig
	RateLimit      RateLimitConfig
	AI             AIConfig
}

// SearchConfig holds the queries every enabled source is asked to fetch.
// The ingestion run covers the full job_titles × locations cross product.
type SearchConfig struct {
	JobTitles   []string
	Locations   []string
	Description string // free-text search goals, fed to cover-letter prompts
}

// Queries expands the configured titles and locations into the full list
// of search cells. With no locations configured, each title is searched
// without a location constraint.
func (s SearchConfig) Queries() []Query {
	var queries []Query
	for _, title := range s.JobTitles {
		if len(s.Locations) == 0 {
			queries = append(queries, Query{Keywords: title})
			continue
		}
		for _, loc := range s.Locations {
			queries = append(queries, Query{Keywords: title, Location: loc})
		}
	}
	return queries
}

// Query is one keywords/location search cell.
type Query struct {
	Keywords string
	Location string
}

// SourcesConfig enables individual posting sources and carries their
// credentials.
type SourcesConfig struct {
	Adzuna       AdzunaConfig `yaml:"adzuna"`
	Indeed       ToggleConfig `yaml:"indeed"`
	ZipRecruiter ToggleConfig `yaml:"ziprecruiter"`
	LinkedIn     ToggleConfig `yaml:"linkedin"`
}

// AdzunaConfig holds the Adzuna API credentials.
type AdzunaConfig struct {
	Enabled bool   `yaml:"enabled"`
	AppID   string `yaml:"app_id"`
	AppKey  string `yaml:"app_key"`
}

// ToggleConfig enables a source that needs no credentials.
type ToggleConfig struct {
	Enabled bool `yaml:"enabled"`
}

// EnabledCount returns how many sources are switched on.
func (s SourcesConfig) EnabledCount() int {
	n := 0
	for _, enabled := range []bool{s.Adzuna.Enabled, s.Indeed.Enabled, s.ZipRecruiter.Enabled, s.LinkedIn.Enabled} {
		if enabled {
			n++
		}
	}
	return n
}

// AIConfig controls the optional LLM scoring and cover-letter layer.
type AIConfig struct {
	Enabled     bool
	BaseURL     string        // defaults to https://api.anthropic.com
	Model       string        // scoring model
	LetterModel string        // cover-letter model, defaults to Model
	APIKey      string        // expanded from env var by Load
	Timeout     time.Duration // per-request timeout
}

// RateLimitConfig controls per-source request spacing.
type RateLimitConfig struct {
	MinDelay time.Duration // minimum gap between requests to the same source
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type     string `yaml:"type"`      // "log" or "telegram"
	BotToken string `yaml:"bot_token"` // required if type is "telegram"
	ChatID   string `yaml:"chat_id"`   // required if type is "telegram"
}

const defaultAnthropicBaseURL = "https://api.anthropic.com"

// rawConfig is used for YAML unmarshaling (snake_case fields and duration as string).
type rawConfig struct {
	ScrapeInterval string             `yaml:"scrape_interval"`
	LimitPerCell   int                `yaml:"limit_per_cell"`
	DatabasePath   string             `yaml:"database_path"`
	ResumePath     string             `yaml:"resume_path"`
	Search         rawSearchConfig    `yaml:"search"`
	Sources        SourcesConfig      `yaml:"sources"`
	Notification   NotificationConfig `yaml:"notification"`
	RateLimit      rawRateLimitConfig `yaml:"rate_limit"`
	AI             rawAIConfig        `yaml:"ai"`
}

type rawSearchConfig struct {
	JobTitles   []string `yaml:"job_titles"`
	Locations   []string `yaml:"locations"`
	Description string   `yaml:"description"`
}

type rawAIConfig struct {
	Enabled     bool   `yaml:"enabled"`
	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"`
	LetterModel string `yaml:"letter_model"`
	APIKey      string `yaml:"api_key"`
	Timeout     string `yaml:"timeout"`
}

type rawRateLimitConfig struct {
	MinDelay string `yaml:"min_delay"`
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	interval, err := time.ParseDuration(raw.ScrapeInterval)
	if err != nil {
		return nil, fmt.Errorf("parse scrape_interval %q: %w", raw.ScrapeInterval, err)
	}

	limit := raw.LimitPerCell
	if limit == 0 {
		limit = 25
	}

	dbPath := raw.DatabasePath
	if dbPath == "" {
		dbPath = "jobs.db"
	}

	rateLimitDelay := 2 * time.Second
	if raw.RateLimit.MinDelay != "" {
		rateLimitDelay, err = time.ParseDuration(raw.RateLimit.MinDelay)
		if err != nil {
			return nil, fmt.Errorf("parse rate_limit.min_delay %q: %w", raw.RateLimit.MinDelay, err)
		}
	}

	aiTimeout := 30 * time.Second
	if raw.AI.Timeout != "" {
		aiTimeout, err = time.ParseDuration(raw.AI.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse ai.timeout %q: %w", raw.AI.Timeout, err)
		}
	}

	aiBaseURL := raw.AI.BaseURL
	if aiBaseURL == "" {
		aiBaseURL = defaultAnthropicBaseURL
	}

	letterModel := raw.AI.LetterModel
	if letterModel == "" {
		letterModel = raw.AI.Model
	}

	cfg := &Config{
		ScrapeInterval: interval,
		LimitPerCell:   limit,
		DatabasePath:   dbPath,
		ResumePath:     raw.ResumePath,
		Search: SearchConfig{
			JobTitles:   raw.Search.JobTitles,
			Locations:   raw.Search.Locations,
			Description: raw.Search.Description,
		},
		Sources:      raw.Sources,
		Notification: raw.Notification,
		RateLimit: RateLimitConfig{
			MinDelay: rateLimitDelay,
		},
		AI: AIConfig{
			Enabled:     raw.AI.Enabled,
			BaseURL:     aiBaseURL,
			Model:       raw.AI.Model,
			LetterModel: letterModel,
			APIKey:      raw.AI.APIKey,
			Timeout:     aiTimeout,
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.ScrapeInterval <= 0 {
		return fmt.Errorf("scrape_interval must be positive, got %v", cfg.ScrapeInterval)
	}
	if cfg.LimitPerCell < 1 {
		return fmt.Errorf("limit_per_cell must be at least 1, got %d", cfg.LimitPerCell)
	}

	if len(cfg.Search.JobTitles) == 0 {
		return fmt.Errorf("search.job_titles must list at least one title")
	}
	for _, title := range cfg.Search.JobTitles {
		if strings.TrimSpace(title) == "" {
			return fmt.Errorf("search.job_titles must not contain blank entries")
		}
	}

	if cfg.Sources.EnabledCount() == 0 {
		return fmt.Errorf("at least one source must be enabled")
	}
	if cfg.Sources.Adzuna.Enabled && (cfg.Sources.Adzuna.AppID == "" || cfg.Sources.Adzuna.AppKey == "") {
		return fmt.Errorf("sources.adzuna.app_id and app_key are required when adzuna is enabled")
	}

	switch cfg.Notification.Type {
	case "", "log":
	case "telegram":
		if cfg.Notification.BotToken == "" || cfg.Notification.ChatID == "" {
			return fmt.Errorf("notification.bot_token and chat_id are required when type is \"telegram\"")
		}
	default:
		return fmt.Errorf("notification.type must be \"log\" or \"telegram\", got %q", cfg.Notification.Type)
	}

	if cfg.AI.Enabled {
		if cfg.AI.APIKey == "" {
			return fmt.Errorf("ai.api_key is required when ai.enabled is true")
		}
		if cfg.AI.Model == "" {
			return fmt.Errorf("ai.model is required when ai.enabled is true")
		}
	}

	return nil
}
