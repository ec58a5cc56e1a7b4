package ingest

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/DanWarner00/ai-job-search-platform/internal/model"
	"github.com/DanWarner00/ai-job-search-platform/internal/store"
)

// PostingStore is the storage surface the reconciler needs.
type PostingStore interface {
	InsertPosting(p *model.Posting) error
}

// Reconciler merges fetched candidates into the store. Each posting is
// committed individually, so a failure partway through never rolls back
// postings already persisted.
type Reconciler struct {
	store  PostingStore
	logger *slog.Logger
}

func NewReconciler(store PostingStore, logger *slog.Logger) *Reconciler {
	return &Reconciler{store: store, logger: logger}
}

// Reconcile inserts candidates one at a time. A candidate whose
// (source, external_id) key already exists is counted as a duplicate and
// skipped; the stored posting is never modified. First write wins.
func (r *Reconciler) Reconcile(candidates []model.Posting) (inserted []model.Posting, duplicates int, err error) {
	for i := range candidates {
		p := &candidates[i]
		if insertErr := r.store.InsertPosting(p); insertErr != nil {
			if errors.Is(insertErr, store.ErrDuplicate) {
				duplicates++
				continue
			}
			return inserted, duplicates, fmt.Errorf("inserting posting %s/%s: %w", p.Source, p.ExternalID, insertErr)
		}
		r.logger.Debug("inserted posting",
			"source", p.Source,
			"external_id", p.ExternalID,
			"title", p.Title,
		)
		inserted = append(inserted, *p)
	}
	return inserted, duplicates, nil
}
