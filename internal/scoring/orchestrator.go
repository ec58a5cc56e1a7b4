package scoring

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/DanWarner00/ai-job-search-platform/internal/model"
)

// PlaceholderScore is committed when a posting cannot be genuinely scored.
// A placeholder row is distinguishable from a real score of 75 because its
// explanation is absent; real scores always carry one.
const PlaceholderScore = 75

// Matcher produces a resume-vs-posting fit score with an explanation.
type Matcher interface {
	ScoreMatch(ctx context.Context, p model.Posting, resume string) (int, string, error)
}

// ScoreStore is the storage surface the orchestrator needs.
type ScoreStore interface {
	SetMatchScore(id int64, score int, explanation *string) error
	UnscoredPostings(placeholder int) ([]model.Posting, error)
}

// Orchestrator decides between a genuine match score and the placeholder,
// and commits the result. It never lets a scoring failure surface as an
// ingestion failure.
type Orchestrator struct {
	matcher Matcher
	store   ScoreStore
	logger  *slog.Logger
}

// NewOrchestrator builds an orchestrator. matcher may be nil when AI
// scoring is disabled; every posting then receives the placeholder.
func NewOrchestrator(matcher Matcher, store ScoreStore, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{matcher: matcher, store: store, logger: logger}
}

// ScorePosting computes the score and explanation for a posting without
// persisting anything. It falls back to the placeholder with an absent
// explanation when no matcher is configured, the resume is empty, or the
// matcher fails. Genuine scores are clamped to [0, 100].
func (o *Orchestrator) ScorePosting(ctx context.Context, p model.Posting, profile model.Profile) (int, *string) {
	if o.matcher == nil {
		return PlaceholderScore, nil
	}
	if profile.ResumeText == "" {
		o.logger.Debug("no resume text, using placeholder score", "posting_id", p.ID)
		return PlaceholderScore, nil
	}

	score, explanation, err := o.matcher.ScoreMatch(ctx, p, profile.ResumeText)
	if err != nil {
		o.logger.Warn("match scoring failed, using placeholder",
			"posting_id", p.ID,
			"title", p.Title,
			"error", err,
		)
		return PlaceholderScore, nil
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score, &explanation
}

// ScoreAndCommit scores a posting and persists the result. Only the store
// write can fail; scoring failures degrade to the placeholder.
func (o *Orchestrator) ScoreAndCommit(ctx context.Context, p *model.Posting, profile model.Profile) error {
	score, explanation := o.ScorePosting(ctx, *p, profile)
	if err := o.store.SetMatchScore(p.ID, score, explanation); err != nil {
		return fmt.Errorf("committing match score: %w", err)
	}
	p.MatchScore = &score
	p.MatchExplanation = explanation
	return nil
}

// Rescore sweeps the store for postings that were never genuinely scored,
// i.e. those with no score at all or carrying the bare placeholder, and
// scores them now. Returns how many postings received a genuine score.
func (o *Orchestrator) Rescore(ctx context.Context, profile model.Profile) (int, error) {
	postings, err := o.store.UnscoredPostings(PlaceholderScore)
	if err != nil {
		return 0, fmt.Errorf("listing unscored postings: %w", err)
	}
	if len(postings) == 0 {
		return 0, nil
	}
	o.logger.Info("rescore sweep starting", "candidates", len(postings))

	rescored := 0
	for i := range postings {
		if err := ctx.Err(); err != nil {
			return rescored, err
		}
		p := &postings[i]
		score, explanation := o.ScorePosting(ctx, *p, profile)
		if explanation == nil {
			// Still unscoreable, leave the row as is for a later sweep.
			continue
		}
		if err := o.store.SetMatchScore(p.ID, score, explanation); err != nil {
			return rescored, fmt.Errorf("committing rescore for posting %d: %w", p.ID, err)
		}
		rescored++
		if rescored%5 == 0 {
			o.logger.Info("rescore progress", "done", rescored, "total", len(postings))
		}
	}

	o.logger.Info("rescore sweep complete", "rescored", rescored, "candidates", len(postings))
	return rescored, nil
}
