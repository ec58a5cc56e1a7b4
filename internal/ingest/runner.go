package ingest

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/DanWarner00/ai-job-search-platform/internal/model"
)

// defaultCellTimeout bounds a single source × query cell so one stalled
// upstream cannot block the whole run.
const defaultCellTimeout = 60 * time.Second

// Scorer scores a freshly inserted posting and persists the result.
type Scorer interface {
	ScoreAndCommit(ctx context.Context, p *model.Posting, profile model.Profile) error
}

// CellError records a failure in one source × query cell.
type CellError struct {
	Source string
	Query  model.Query
	Err    error
}

// Summary reports what one ingestion run accomplished.
type Summary struct {
	Inserted   int
	Duplicates int
	CellErrors []CellError
}

// Runner drives one ingestion run across the cross product of configured
// sources and queries. Cells execute sequentially; a cell failure is
// recorded and the run moves on, so one bad source never starves the rest.
type Runner struct {
	sources     []model.Source
	reconciler  *Reconciler
	scorer      Scorer
	limit       int
	cellTimeout time.Duration
	logger      *slog.Logger
}

// NewRunner builds a runner. scorer may be nil, in which case postings are
// ingested unscored and picked up later by a rescore sweep. limit caps the
// postings fetched per cell.
func NewRunner(sources []model.Source, reconciler *Reconciler, scorer Scorer, limit int, logger *slog.Logger) *Runner {
	return &Runner{
		sources:     sources,
		reconciler:  reconciler,
		scorer:      scorer,
		limit:       limit,
		cellTimeout: defaultCellTimeout,
		logger:      logger,
	}
}

// Run executes every source × query cell and always returns a summary,
// even when every cell failed. The run as a whole errors only on invalid
// input or context cancellation.
func (r *Runner) Run(ctx context.Context, queries []model.Query, profile model.Profile) (*Summary, error) {
	if len(queries) == 0 {
		return nil, &model.ConfigError{Reason: "no search queries configured"}
	}
	for _, q := range queries {
		if strings.TrimSpace(q.Keywords) == "" {
			return nil, &model.ConfigError{Reason: "search query with empty keywords"}
		}
	}

	summary := &Summary{}
	start := time.Now()

	for _, src := range r.sources {
		for _, q := range queries {
			if err := ctx.Err(); err != nil {
				return summary, err
			}
			r.runCell(ctx, src, q, profile, summary)
		}
	}

	r.logger.Info("ingestion run complete",
		"inserted", summary.Inserted,
		"duplicates", summary.Duplicates,
		"cell_errors", len(summary.CellErrors),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return summary, nil
}

func (r *Runner) runCell(ctx context.Context, src model.Source, q model.Query, profile model.Profile, summary *Summary) {
	cellCtx, cancel := context.WithTimeout(ctx, r.cellTimeout)
	defer cancel()

	candidates, err := src.Fetch(cellCtx, q, r.limit)
	if err != nil {
		r.logger.Error("cell fetch failed",
			"source", src.Name(),
			"keywords", q.Keywords,
			"location", q.Location,
			"error", err,
		)
		summary.CellErrors = append(summary.CellErrors, CellError{Source: src.Name(), Query: q, Err: err})
		// Partial results from a failed fetch are still worth keeping.
		if len(candidates) == 0 {
			return
		}
	}

	inserted, duplicates, err := r.reconciler.Reconcile(candidates)
	summary.Inserted += len(inserted)
	summary.Duplicates += duplicates
	if err != nil {
		r.logger.Error("cell reconcile failed",
			"source", src.Name(),
			"keywords", q.Keywords,
			"error", err,
		)
		summary.CellErrors = append(summary.CellErrors, CellError{Source: src.Name(), Query: q, Err: err})
		return
	}

	r.logger.Info("cell complete",
		"source", src.Name(),
		"keywords", q.Keywords,
		"location", q.Location,
		"fetched", len(candidates),
		"inserted", len(inserted),
		"duplicates", duplicates,
	)

	if r.scorer == nil {
		return
	}
	for i := range inserted {
		if err := r.scorer.ScoreAndCommit(cellCtx, &inserted[i], profile); err != nil {
			r.logger.Warn("scoring failed for posting",
				"source", inserted[i].Source,
				"external_id", inserted[i].ExternalID,
				"error", err,
			)
		}
	}
}
