package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/DanWarner00/ai-job-search-platform/internal/model"
	"github.com/DanWarner00/ai-job-search-platform/internal/store"
)

// memStore is an in-memory PostingStore keyed like the real one.
type memStore struct {
	postings map[model.PostingKey]model.Posting
	nextID   int64
	failOn   string // external ID that triggers a storage error
}

func newMemStore() *memStore {
	return &memStore{postings: make(map[model.PostingKey]model.Posting)}
}

func (s *memStore) InsertPosting(p *model.Posting) error {
	if p.ExternalID == s.failOn && s.failOn != "" {
		return errors.New("disk full")
	}
	key := p.Key()
	if _, ok := s.postings[key]; ok {
		return store.ErrDuplicate
	}
	s.nextID++
	p.ID = s.nextID
	s.postings[key] = *p
	return nil
}

// fakeSource returns a fixed batch of postings, or an error.
type fakeSource struct {
	name     string
	postings []model.Posting
	err      error
	calls    int
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Fetch(_ context.Context, _ model.Query, _ int) ([]model.Posting, error) {
	f.calls++
	return f.postings, f.err
}

// recordingScorer tracks which postings were scored.
type recordingScorer struct {
	scored []string
}

func (r *recordingScorer) ScoreAndCommit(_ context.Context, p *model.Posting, _ model.Profile) error {
	r.scored = append(r.scored, p.ExternalID)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func makePostings(source string, ids ...string) []model.Posting {
	var out []model.Posting
	for _, id := range ids {
		out = append(out, model.Posting{
			Source:     source,
			ExternalID: id,
			URL:        fmt.Sprintf("https://%s.test/%s", source, id),
			Title:      "Engineer " + id,
			Company:    "Acme",
		})
	}
	return out
}

func TestRun_InsertsAndScores(t *testing.T) {
	st := newMemStore()
	src := &fakeSource{name: "alpha", postings: makePostings("alpha", "1", "2")}
	scorer := &recordingScorer{}
	runner := NewRunner([]model.Source{src}, NewReconciler(st, testLogger()), scorer, 25, testLogger())

	summary, err := runner.Run(context.Background(), []model.Query{{Keywords: "go"}}, model.Profile{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Inserted != 2 {
		t.Errorf("expected 2 inserted, got %d", summary.Inserted)
	}
	if summary.Duplicates != 0 {
		t.Errorf("expected 0 duplicates, got %d", summary.Duplicates)
	}
	if len(summary.CellErrors) != 0 {
		t.Errorf("expected no cell errors, got %v", summary.CellErrors)
	}
	if len(scorer.scored) != 2 {
		t.Errorf("expected 2 postings scored, got %d", len(scorer.scored))
	}
}

func TestRun_Idempotent(t *testing.T) {
	st := newMemStore()
	src := &fakeSource{name: "alpha", postings: makePostings("alpha", "1", "2")}
	runner := NewRunner([]model.Source{src}, NewReconciler(st, testLogger()), nil, 25, testLogger())
	queries := []model.Query{{Keywords: "go"}}

	if _, err := runner.Run(context.Background(), queries, model.Profile{}); err != nil {
		t.Fatalf("first run: %v", err)
	}
	summary, err := runner.Run(context.Background(), queries, model.Profile{})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if summary.Inserted != 0 {
		t.Errorf("expected 0 inserted on rerun, got %d", summary.Inserted)
	}
	if summary.Duplicates != 2 {
		t.Errorf("expected 2 duplicates on rerun, got %d", summary.Duplicates)
	}
	if len(st.postings) != 2 {
		t.Errorf("expected 2 stored postings, got %d", len(st.postings))
	}
}

func TestRun_CellFailureIsolated(t *testing.T) {
	st := newMemStore()
	broken := &fakeSource{name: "broken", err: errors.New("connection refused")}
	healthy := &fakeSource{name: "healthy", postings: makePostings("healthy", "1")}
	runner := NewRunner([]model.Source{broken, healthy}, NewReconciler(st, testLogger()), nil, 25, testLogger())

	summary, err := runner.Run(context.Background(), []model.Query{{Keywords: "go"}}, model.Profile{})
	if err != nil {
		t.Fatalf("run should absorb cell errors, got: %v", err)
	}
	if summary.Inserted != 1 {
		t.Errorf("expected healthy cell to insert 1, got %d", summary.Inserted)
	}
	if len(summary.CellErrors) != 1 {
		t.Fatalf("expected 1 cell error, got %d", len(summary.CellErrors))
	}
	if summary.CellErrors[0].Source != "broken" {
		t.Errorf("expected error from broken source, got %s", summary.CellErrors[0].Source)
	}
}

func TestRun_CrossProduct(t *testing.T) {
	st := newMemStore()
	a := &fakeSource{name: "a"}
	b := &fakeSource{name: "b"}
	runner := NewRunner([]model.Source{a, b}, NewReconciler(st, testLogger()), nil, 25, testLogger())

	queries := []model.Query{
		{Keywords: "go engineer", Location: "Austin, TX"},
		{Keywords: "backend engineer", Location: "Remote"},
		{Keywords: "platform engineer"},
	}
	if _, err := runner.Run(context.Background(), queries, model.Profile{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.calls != 3 || b.calls != 3 {
		t.Errorf("expected 3 fetches per source, got a=%d b=%d", a.calls, b.calls)
	}
}

func TestRun_InvalidQueries(t *testing.T) {
	runner := NewRunner(nil, NewReconciler(newMemStore(), testLogger()), nil, 25, testLogger())

	for _, queries := range [][]model.Query{
		nil,
		{{Keywords: "   "}},
	} {
		_, err := runner.Run(context.Background(), queries, model.Profile{})
		var cfgErr *model.ConfigError
		if !errors.As(err, &cfgErr) {
			t.Errorf("expected ConfigError for queries %v, got %v", queries, err)
		}
	}
}

func TestReconcile_PartialCommit(t *testing.T) {
	st := newMemStore()
	st.failOn = "2"
	rec := NewReconciler(st, testLogger())

	inserted, dups, err := rec.Reconcile(makePostings("alpha", "1", "2", "3"))
	if err == nil {
		t.Fatal("expected storage error")
	}
	if len(inserted) != 1 {
		t.Errorf("expected posting 1 committed before the failure, got %d", len(inserted))
	}
	if dups != 0 {
		t.Errorf("expected 0 duplicates, got %d", dups)
	}
	if _, ok := st.postings[model.PostingKey{Source: "alpha", ExternalID: "1"}]; !ok {
		t.Error("posting inserted before the failure should remain stored")
	}
}
