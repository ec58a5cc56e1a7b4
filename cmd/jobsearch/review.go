package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/DanWarner00/ai-job-search-platform/internal/review"
	"github.com/DanWarner00/ai-job-search-platform/internal/store"
	"github.com/DanWarner00/ai-job-search-platform/internal/track"
)

// reviewBatchSize caps one review session; anything left shows up next time.
const reviewBatchSize = 100

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Triage unreviewed postings interactively",
	Long:  "Opens a terminal UI over postings without an application, best match first. Decisions are written to the tracker immediately.",
	RunE:  runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	st, err := store.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	postings, err := st.PostingsWithoutApplication(reviewBatchSize)
	if err != nil {
		logger.Error("loading unreviewed postings", "error", err)
		os.Exit(1)
	}
	if len(postings) == 0 {
		logger.Info("nothing to review")
		return nil
	}

	svc := track.NewService(st, logger)
	return review.RunReviewTUI(postings, svc)
}
