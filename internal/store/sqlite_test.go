package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DanWarner00/ai-job-search-platform/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testPosting(source, externalID string) model.Posting {
	return model.Posting{
		Source:      source,
		ExternalID:  externalID,
		URL:         "https://example.com/" + externalID,
		Title:       "Software Engineer",
		Company:     "Acme Corp",
		Location:    "Portland, OR",
		ScrapedDate: time.Now().UTC(),
	}
}

func TestInsertPostingThenHasPosting(t *testing.T) {
	s := newTestStore(t)

	p := testPosting("adzuna", "job-123")
	if err := s.InsertPosting(&p); err != nil {
		t.Fatalf("InsertPosting: %v", err)
	}
	if p.ID == 0 {
		t.Error("expected InsertPosting to set the row ID")
	}

	found, err := s.HasPosting("adzuna", "job-123")
	if err != nil {
		t.Fatalf("HasPosting: %v", err)
	}
	if !found {
		t.Error("expected HasPosting to return true after insert")
	}
}

func TestInsertPostingDuplicateKey(t *testing.T) {
	s := newTestStore(t)

	first := testPosting("adzuna", "job-123")
	first.Title = "Original Title"
	if err := s.InsertPosting(&first); err != nil {
		t.Fatalf("first InsertPosting: %v", err)
	}

	second := testPosting("adzuna", "job-123")
	second.Title = "Overwriting Title"
	err := s.InsertPosting(&second)
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	// First write wins: the stored row keeps the original title.
	got, err := s.GetPosting(first.ID)
	if err != nil {
		t.Fatalf("GetPosting: %v", err)
	}
	if got.Title != "Original Title" {
		t.Errorf("title = %q, want Original Title", got.Title)
	}

	count, err := s.CountPostings()
	if err != nil {
		t.Fatalf("CountPostings: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestSameExternalIDDifferentSource(t *testing.T) {
	s := newTestStore(t)

	a := testPosting("adzuna", "job-123")
	b := testPosting("indeed", "job-123")

	if err := s.InsertPosting(&a); err != nil {
		t.Fatalf("InsertPosting adzuna: %v", err)
	}
	if err := s.InsertPosting(&b); err != nil {
		t.Fatalf("InsertPosting indeed: %v", err)
	}

	count, _ := s.CountPostings()
	if count != 2 {
		t.Errorf("count = %d, want 2 (dedup key is source-scoped)", count)
	}
}

func TestPostingRoundTripNullableFields(t *testing.T) {
	s := newTestStore(t)

	min, max := 80000, 100000
	posted := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	p := testPosting("adzuna", "job-full")
	p.SalaryMin = &min
	p.SalaryMax = &max
	p.PostedDate = &posted
	p.Description = "Build things."

	if err := s.InsertPosting(&p); err != nil {
		t.Fatalf("InsertPosting: %v", err)
	}

	got, err := s.GetPosting(p.ID)
	if err != nil {
		t.Fatalf("GetPosting: %v", err)
	}
	if got.SalaryMin == nil || *got.SalaryMin != 80000 {
		t.Errorf("SalaryMin = %v, want 80000", got.SalaryMin)
	}
	if got.SalaryMax == nil || *got.SalaryMax != 100000 {
		t.Errorf("SalaryMax = %v, want 100000", got.SalaryMax)
	}
	if got.PostedDate == nil || !got.PostedDate.Equal(posted) {
		t.Errorf("PostedDate = %v, want %v", got.PostedDate, posted)
	}
	if got.MatchScore != nil {
		t.Errorf("MatchScore = %v, want nil before scoring", got.MatchScore)
	}

	bare := testPosting("adzuna", "job-bare")
	if err := s.InsertPosting(&bare); err != nil {
		t.Fatalf("InsertPosting bare: %v", err)
	}
	got, err = s.GetPosting(bare.ID)
	if err != nil {
		t.Fatalf("GetPosting bare: %v", err)
	}
	if got.SalaryMin != nil || got.SalaryMax != nil || got.PostedDate != nil {
		t.Error("expected absent salary and posted date to round-trip as nil")
	}
}

func TestUnscoredPostingsSelection(t *testing.T) {
	s := newTestStore(t)

	unscored := testPosting("adzuna", "unscored")
	if err := s.InsertPosting(&unscored); err != nil {
		t.Fatalf("InsertPosting: %v", err)
	}

	placeholder := testPosting("adzuna", "placeholder")
	if err := s.InsertPosting(&placeholder); err != nil {
		t.Fatalf("InsertPosting: %v", err)
	}
	if err := s.SetMatchScore(placeholder.ID, 75, nil); err != nil {
		t.Fatalf("SetMatchScore: %v", err)
	}

	// A genuine score of 75 with an explanation must not be re-scored.
	genuine := testPosting("adzuna", "genuine-75")
	if err := s.InsertPosting(&genuine); err != nil {
		t.Fatalf("InsertPosting: %v", err)
	}
	expl := "Solid skills overlap with minor gaps."
	if err := s.SetMatchScore(genuine.ID, 75, &expl); err != nil {
		t.Fatalf("SetMatchScore: %v", err)
	}

	scored := testPosting("adzuna", "scored")
	if err := s.InsertPosting(&scored); err != nil {
		t.Fatalf("InsertPosting: %v", err)
	}
	expl2 := "Great match."
	if err := s.SetMatchScore(scored.ID, 92, &expl2); err != nil {
		t.Fatalf("SetMatchScore: %v", err)
	}

	got, err := s.UnscoredPostings(75)
	if err != nil {
		t.Fatalf("UnscoredPostings: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("unscored = %d postings, want 2", len(got))
	}
	ids := map[string]bool{}
	for _, p := range got {
		ids[p.ExternalID] = true
	}
	if !ids["unscored"] || !ids["placeholder"] {
		t.Errorf("unexpected unscored set: %v", ids)
	}
}

func TestApplicationLifecycle(t *testing.T) {
	s := newTestStore(t)

	p := testPosting("adzuna", "job-app")
	if err := s.InsertPosting(&p); err != nil {
		t.Fatalf("InsertPosting: %v", err)
	}

	_, err := s.GetApplicationByPosting(p.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound before creation, got %v", err)
	}

	app := model.Application{PostingID: p.ID, Status: model.StatusApplied}
	if err := s.CreateApplication(&app); err != nil {
		t.Fatalf("CreateApplication: %v", err)
	}

	app.Status = model.StatusInterview
	app.Notes = "Recruiter call went well"
	if err := s.UpdateApplication(app); err != nil {
		t.Fatalf("UpdateApplication: %v", err)
	}

	got, err := s.GetApplicationByPosting(p.ID)
	if err != nil {
		t.Fatalf("GetApplicationByPosting: %v", err)
	}
	if got.Status != model.StatusInterview {
		t.Errorf("status = %s, want interview", got.Status)
	}
	if got.Notes != "Recruiter call went well" {
		t.Errorf("notes = %q", got.Notes)
	}
}

func TestDeletePostingCascades(t *testing.T) {
	s := newTestStore(t)

	p := testPosting("adzuna", "job-cascade")
	if err := s.InsertPosting(&p); err != nil {
		t.Fatalf("InsertPosting: %v", err)
	}
	app := model.Application{PostingID: p.ID, Status: model.StatusInterview}
	if err := s.CreateApplication(&app); err != nil {
		t.Fatalf("CreateApplication: %v", err)
	}
	iv := model.Interview{ApplicationID: app.ID, ScheduledDate: time.Now().Add(48 * time.Hour), Type: "phone"}
	if err := s.InsertInterview(&iv); err != nil {
		t.Fatalf("InsertInterview: %v", err)
	}

	if err := s.DeletePosting(p.ID); err != nil {
		t.Fatalf("DeletePosting: %v", err)
	}

	if _, err := s.GetApplicationByPosting(p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected application to cascade on posting delete, got %v", err)
	}
	interviews, err := s.ListInterviews(app.ID)
	if err != nil {
		t.Fatalf("ListInterviews: %v", err)
	}
	if len(interviews) != 0 {
		t.Errorf("interviews = %d, want 0 after cascade", len(interviews))
	}
}

func TestPostingsWithoutApplication(t *testing.T) {
	s := newTestStore(t)

	reviewed := testPosting("adzuna", "reviewed")
	if err := s.InsertPosting(&reviewed); err != nil {
		t.Fatalf("InsertPosting: %v", err)
	}
	if err := s.SetMatchScore(reviewed.ID, 95, nil); err != nil {
		t.Fatalf("SetMatchScore: %v", err)
	}
	app := model.Application{PostingID: reviewed.ID, Status: model.StatusApplied}
	if err := s.CreateApplication(&app); err != nil {
		t.Fatalf("CreateApplication: %v", err)
	}

	fresh := testPosting("adzuna", "fresh")
	if err := s.InsertPosting(&fresh); err != nil {
		t.Fatalf("InsertPosting: %v", err)
	}
	if err := s.SetMatchScore(fresh.ID, 80, nil); err != nil {
		t.Fatalf("SetMatchScore: %v", err)
	}

	got, err := s.PostingsWithoutApplication(5)
	if err != nil {
		t.Fatalf("PostingsWithoutApplication: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d postings, want 1", len(got))
	}
	if got[0].ExternalID != "fresh" {
		t.Errorf("posting = %s, want fresh", got[0].ExternalID)
	}
}
