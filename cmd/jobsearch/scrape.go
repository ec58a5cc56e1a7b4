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

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Run one ingestion pass and exit",
	Long:  "Fetches every configured source × query cell once, reconciles into the store, scores new postings, and prints a summary.",
	RunE:  runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
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

	runner := buildRunner(cfg, st, logger)
	profile := loadProfile(cfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := runner.Run(ctx, searchQueries(cfg), profile)
	if err != nil {
		logger.Error("ingestion run failed", "error", err)
		os.Exit(1)
	}

	total, err := st.CountPostings()
	if err != nil {
		logger.Error("counting postings", "error", err)
		os.Exit(1)
	}

	fmt.Printf("inserted:    %d\n", summary.Inserted)
	fmt.Printf("duplicates:  %d\n", summary.Duplicates)
	fmt.Printf("total:       %d\n", total)
	if len(summary.CellErrors) > 0 {
		fmt.Printf("cell errors: %d\n", len(summary.CellErrors))
		for _, ce := range summary.CellErrors {
			fmt.Printf("  %s (%s): %v\n", ce.Source, ce.Query.Keywords, ce.Err)
		}
	}
	return nil
}
