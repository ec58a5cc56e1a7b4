package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/DanWarner00/ai-job-search-platform/internal/scheduler"
	"github.com/DanWarner00/ai-job-search-platform/internal/store"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the ingestion daemon",
	Long:  "Runs a full ingestion immediately, then repeats on the configured interval; blocks until SIGINT/SIGTERM.",
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"interval", cfg.ScrapeInterval.String(),
		"sources", cfg.Sources.EnabledCount(),
		"job_titles", len(cfg.Search.JobTitles),
		"locations", len(cfg.Search.Locations),
		"limit_per_cell", cfg.LimitPerCell,
	)

	st, err := store.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	runner := buildRunner(cfg, st, logger)
	queries := searchQueries(cfg)
	profile := loadProfile(cfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := scheduler.NewScheduler(func(ctx context.Context) error {
		_, err := runner.Run(ctx, queries, profile)
		return err
	}, cfg.ScrapeInterval, logger)

	if err := sched.Run(ctx); err != nil {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}

	logger.Info("goodbye")
	return nil
}
