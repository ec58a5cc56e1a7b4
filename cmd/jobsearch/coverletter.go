package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/DanWarner00/ai-job-search-platform/internal/ai"
	"github.com/DanWarner00/ai-job-search-platform/internal/store"
	"github.com/DanWarner00/ai-job-search-platform/internal/track"
)

var coverLetterCmd = &cobra.Command{
	Use:   "coverletter <posting-id>",
	Short: "Generate a cover letter for a posting",
	Long:  "Drafts a cover letter for the given posting from your resume, stores it on the posting's application, and prints it. Requires ai.enabled.",
	Args:  cobra.ExactArgs(1),
	RunE:  runCoverLetter,
}

func init() {
	rootCmd.AddCommand(coverLetterCmd)
}

func runCoverLetter(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	postingID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid posting id %q", args[0])
	}

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if !cfg.AI.Enabled {
		logger.Error("coverletter requires ai.enabled: true")
		os.Exit(1)
	}

	st, err := store.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	posting, err := st.GetPosting(postingID)
	if err != nil {
		logger.Error("loading posting", "posting_id", postingID, "error", err)
		os.Exit(1)
	}

	profile := loadProfile(cfg, logger)
	if profile.ResumeText == "" {
		logger.Error("coverletter needs a readable resume", "path", cfg.ResumePath)
		os.Exit(1)
	}

	httpClient := &http.Client{Timeout: cfg.AI.Timeout}
	provider := ai.NewAnthropicProvider(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.LetterModel, httpClient)
	writer := ai.NewLetterWriter(provider)

	letter, err := writer.GenerateCoverLetter(context.Background(), posting, profile)
	if err != nil {
		logger.Error("generating cover letter", "error", err)
		os.Exit(1)
	}

	svc := track.NewService(st, logger.With(slog.String("component", "track")))
	if _, err := svc.AttachCoverLetter(postingID, letter); err != nil {
		logger.Error("storing cover letter", "error", err)
		os.Exit(1)
	}

	fmt.Printf("--- %s at %s ---\n\n%s\n", posting.Title, posting.Company, letter)
	return nil
}
