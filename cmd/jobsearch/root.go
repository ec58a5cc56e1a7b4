package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/DanWarner00/ai-job-search-platform/internal/adapter"
	"github.com/DanWarner00/ai-job-search-platform/internal/ai"
	"github.com/DanWarner00/ai-job-search-platform/internal/config"
	"github.com/DanWarner00/ai-job-search-platform/internal/ingest"
	"github.com/DanWarner00/ai-job-search-platform/internal/model"
	"github.com/DanWarner00/ai-job-search-platform/internal/notifier"
	"github.com/DanWarner00/ai-job-search-platform/internal/ratelimit"
	"github.com/DanWarner00/ai-job-search-platform/internal/resume"
	"github.com/DanWarner00/ai-job-search-platform/internal/retry"
	"github.com/DanWarner00/ai-job-search-platform/internal/scoring"
	"github.com/DanWarner00/ai-job-search-platform/internal/store"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "jobsearch",
	Short: "AI-assisted job search pipeline",
	Long:  "jobsearch ingests postings from multiple boards, dedups them into SQLite, scores them against your resume, and tracks your applications.",
	// Default to `start` so that `jobsearch` with no args runs the daemon.
	RunE: runStart,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBSEARCH_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > JOBSEARCH_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("JOBSEARCH_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.Notifier {
	switch cfg.Notification.Type {
	case "telegram":
		logger.Info("using telegram notifier")
		return notifier.NewTelegramNotifier(cfg.Notification.BotToken, cfg.Notification.ChatID, httpClient, logger)
	default:
		return notifier.NewLogNotifier(logger)
	}
}

// buildSources constructs the enabled source adapters, each wrapped with
// retry and per-source rate limiting.
func buildSources(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) []model.Source {
	limiter := ratelimit.NewSourceRateLimiter(cfg.RateLimit.MinDelay)
	logger.Info("rate limiter configured", "min_delay", cfg.RateLimit.MinDelay.String())

	var raw []model.Source
	if cfg.Sources.Adzuna.Enabled {
		raw = append(raw, adapter.NewAdzunaAdapter(cfg.Sources.Adzuna.AppID, cfg.Sources.Adzuna.AppKey, httpClient, logger))
	}
	if cfg.Sources.Indeed.Enabled {
		raw = append(raw, adapter.NewIndeedAdapter(httpClient, logger))
	}
	if cfg.Sources.ZipRecruiter.Enabled {
		raw = append(raw, adapter.NewZipRecruiterAdapter(httpClient, logger))
	}
	if cfg.Sources.LinkedIn.Enabled {
		raw = append(raw, adapter.NewLinkedInAdapter(httpClient, logger))
	}

	sources := make([]model.Source, 0, len(raw))
	for _, src := range raw {
		wrapped := retry.NewRetrySource(src, 2, 5*time.Second, logger)
		sources = append(sources, ratelimit.NewRateLimitedSource(wrapped, limiter))
		logger.Info("registered source", "name", src.Name())
	}
	return sources
}

// loadProfile extracts the resume text. A missing or unreadable resume is
// not fatal; scoring degrades to the placeholder.
func loadProfile(cfg *config.Config, logger *slog.Logger) model.Profile {
	profile := model.Profile{Preferences: cfg.Search.Description}

	text, err := resume.ExtractText(cfg.ResumePath)
	if err != nil {
		logger.Warn("resume unavailable, postings will get placeholder scores", "error", err)
		return profile
	}
	logger.Info("resume loaded", "path", cfg.ResumePath, "chars", len(text))
	profile.ResumeText = text
	return profile
}

// buildScorer constructs the scoring orchestrator. With AI disabled the
// orchestrator still runs so every posting gets the placeholder committed.
func buildScorer(cfg *config.Config, st *store.SQLiteStore, logger *slog.Logger) *scoring.Orchestrator {
	var matcher scoring.Matcher
	if cfg.AI.Enabled {
		httpClient := &http.Client{Timeout: cfg.AI.Timeout}
		provider := ai.NewAnthropicProvider(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Model, httpClient)
		matcher = ai.NewResumeMatcher(provider)
		logger.Info("ai scoring enabled", "model", cfg.AI.Model)
	}
	return scoring.NewOrchestrator(matcher, st, logger)
}

func buildRunner(cfg *config.Config, st *store.SQLiteStore, logger *slog.Logger) *ingest.Runner {
	httpClient := &http.Client{Timeout: 30 * time.Second}
	sources := buildSources(cfg, httpClient, logger)
	reconciler := ingest.NewReconciler(st, logger)
	scorer := buildScorer(cfg, st, logger)
	return ingest.NewRunner(sources, reconciler, scorer, cfg.LimitPerCell, logger)
}

// searchQueries converts the configured search cells to model queries.
func searchQueries(cfg *config.Config) []model.Query {
	raw := cfg.Search.Queries()
	queries := make([]model.Query, len(raw))
	for i, q := range raw {
		queries[i] = model.Query{Keywords: q.Keywords, Location: q.Location}
	}
	return queries
}
