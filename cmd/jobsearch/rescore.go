package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/DanWarner00/ai-job-search-platform/internal/store"
)

var rescoreCmd = &cobra.Command{
	Use:   "rescore",
	Short: "Score postings that never got a genuine match score",
	Long:  "Sweeps the store for postings with no score or the bare placeholder and scores them against the configured resume. Requires ai.enabled.",
	RunE:  runRescore,
}

func init() {
	rootCmd.AddCommand(rescoreCmd)
}

func runRescore(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if !cfg.AI.Enabled {
		logger.Error("rescore requires ai.enabled: true")
		os.Exit(1)
	}

	st, err := store.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	profile := loadProfile(cfg, logger)
	if profile.ResumeText == "" {
		logger.Error("rescore needs a readable resume", "path", cfg.ResumePath)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scorer := buildScorer(cfg, st, logger)
	n, err := scorer.Rescore(ctx, profile)
	if err != nil {
		logger.Error("rescore failed", "error", err, "rescored", n)
		os.Exit(1)
	}

	fmt.Printf("rescored %d postings\n", n)
	return nil
}
