package main

import (
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/DanWarner00/ai-job-search-platform/internal/store"
)

// digestSize is how many unreviewed postings one digest carries.
const digestSize = 5

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Send a digest of the best unreviewed postings",
	Long:  "Picks the top unreviewed postings by match score and sends them through the configured notifier.",
	RunE:  runNotify,
}

func init() {
	rootCmd.AddCommand(notifyCmd)
}

func runNotify(cmd *cobra.Command, args []string) error {
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

	postings, err := st.PostingsWithoutApplication(digestSize)
	if err != nil {
		logger.Error("loading unreviewed postings", "error", err)
		os.Exit(1)
	}
	if len(postings) == 0 {
		logger.Info("no unreviewed postings to send")
		return nil
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	n := setupNotifier(cfg, httpClient, logger)

	if err := n.Notify(postings); err != nil {
		logger.Error("notification failed", "error", err)
		os.Exit(1)
	}
	logger.Info("digest sent", "postings", len(postings))
	return nil
}
