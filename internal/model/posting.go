package model

import (
	"context"
	"time"
)

// UnknownCompany is the sentinel stored when a source omits the company name.
const UnknownCompany = "Unknown"

// Posting is the canonical, source-normalized representation of a job
// listing. Every adapter must produce this shape regardless of how the
// upstream encodes its data.
type Posting struct {
	ID               int64      // database row ID, zero until inserted
	Source           string     // origin identifier, e.g. "adzuna", "indeed"
	ExternalID       string     // source-scoped listing ID; (Source, ExternalID) is the dedup key
	URL              string     // canonical link to the listing
	Title            string
	Company          string // UnknownCompany when the source omits it
	Location         string // empty when the source omits it
	SalaryMin        *int   // annual, both set or both nil
	SalaryMax        *int
	Description      string
	Requirements     string
	PostedDate       *time.Time // nil when the source gives only an unparseable string
	ScrapedDate      time.Time  // our clock, set at ingestion
	MatchScore       *int       // 0-100, set by the scoring orchestrator
	MatchExplanation *string    // set together with a real MatchScore, nil for the placeholder
}

// Key returns the dedup identity of the posting.
func (p Posting) Key() PostingKey {
	return PostingKey{Source: p.Source, ExternalID: p.ExternalID}
}

// PostingKey identifies one logical listing across runs and sources.
type PostingKey struct {
	Source     string
	ExternalID string
}

// Query is one search term a source is asked to fetch.
type Query struct {
	Keywords string
	Location string
}

// Profile carries the candidate's scoring inputs. It is threaded through
// the pipeline explicitly so tests can supply fixtures without shared state.
type Profile struct {
	ResumeText  string // empty means "cannot score this run"
	Preferences string // free-text search goals, used for cover letters
}

// Source fetches postings for a query from one external origin.
type Source interface {
	Name() string
	Fetch(ctx context.Context, query Query, limit int) ([]Posting, error)
}

// Notifier pushes a batch of postings to an external sink. Failures are
// logged by implementations, never retried by the pipeline.
type Notifier interface {
	Notify(postings []Posting) error
}
