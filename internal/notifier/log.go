package notifier

import (
	"log/slog"

	"github.com/DanWarner00/ai-job-search-platform/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes matched postings to the given logger as structured
// messages. Used when no external channel is configured.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each posting via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs each posting with company, title, location, score, and URL.
// Returns nil (stdout logging does not fail).
func (n *LogNotifier) Notify(postings []model.Posting) error {
	for _, p := range postings {
		args := []any{"company", p.Company, "title", p.Title, "location", p.Location, "url", p.URL}
		if p.MatchScore != nil {
			args = append(args, "match_score", *p.MatchScore)
		}
		n.logger.Info("new posting", args...)
	}
	return nil
}
