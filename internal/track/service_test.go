package track

import (
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/DanWarner00/ai-job-search-platform/internal/model"
	"github.com/DanWarner00/ai-job-search-platform/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.SQLiteStore) {
	t.Helper()
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return NewService(st, slog.New(slog.DiscardHandler)), st
}

func insertPosting(t *testing.T, st *store.SQLiteStore) int64 {
	t.Helper()
	p := model.Posting{
		Source:      "adzuna",
		ExternalID:  "ext-" + t.Name(),
		URL:         "https://example.com/" + t.Name(),
		Title:       "Engineer",
		Company:     "Acme",
		ScrapedDate: time.Now().UTC(),
	}
	if err := st.InsertPosting(&p); err != nil {
		t.Fatalf("inserting posting: %v", err)
	}
	return p.ID
}

func TestSetStatus_CreatesApplication(t *testing.T) {
	svc, st := newTestService(t)
	postingID := insertPosting(t, st)

	app, err := svc.SetStatus(postingID, model.StatusApplied, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if app.ID == 0 {
		t.Error("expected application ID to be set")
	}
	if app.Status != model.StatusApplied {
		t.Errorf("expected status applied, got %s", app.Status)
	}
	if app.AppliedDate == nil {
		t.Error("moving to applied must stamp the applied date")
	}
}

func TestSetStatus_UpdatesExisting(t *testing.T) {
	svc, st := newTestService(t)
	postingID := insertPosting(t, st)

	first, err := svc.SetStatus(postingID, model.StatusApplied, "")
	if err != nil {
		t.Fatalf("first set: %v", err)
	}
	second, err := svc.SetStatus(postingID, model.StatusRejected, "position filled")
	if err != nil {
		t.Fatalf("second set: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("expected the same application row, got %d then %d", first.ID, second.ID)
	}
	if second.Status != model.StatusRejected {
		t.Errorf("expected status rejected, got %s", second.Status)
	}
	if second.RejectionReason != "position filled" {
		t.Errorf("unexpected rejection reason: %q", second.RejectionReason)
	}
	if second.AppliedDate == nil {
		t.Error("applied date must survive later transitions")
	}
}

func TestSetStatus_UnknownStatus(t *testing.T) {
	svc, st := newTestService(t)
	postingID := insertPosting(t, st)

	if _, err := svc.SetStatus(postingID, model.Status("ghosted"), ""); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestSetStatus_MissingPosting(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.SetStatus(9999, model.StatusApplied, ""); err == nil {
		t.Fatal("expected error for missing posting")
	}
}

func TestScheduleInterview_CreatesAndAdvances(t *testing.T) {
	svc, st := newTestService(t)
	postingID := insertPosting(t, st)

	iv, err := svc.ScheduleInterview(postingID, model.Interview{
		ScheduledDate: time.Now().Add(48 * time.Hour).UTC(),
		Type:          "video",
		Interviewer:   "Jordan",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if iv.ID == 0 {
		t.Error("expected interview ID to be set")
	}

	app, err := st.GetApplicationByPosting(postingID)
	if err != nil {
		t.Fatalf("getting application: %v", err)
	}
	if app.Status != model.StatusInterview {
		t.Errorf("expected application advanced to interview, got %s", app.Status)
	}
}

func TestScheduleInterview_DoesNotRegressOffer(t *testing.T) {
	svc, st := newTestService(t)
	postingID := insertPosting(t, st)

	if _, err := svc.SetStatus(postingID, model.StatusOffer, ""); err != nil {
		t.Fatalf("setting offer: %v", err)
	}
	if _, err := svc.ScheduleInterview(postingID, model.Interview{
		ScheduledDate: time.Now().Add(24 * time.Hour).UTC(),
	}); err != nil {
		t.Fatalf("scheduling: %v", err)
	}

	app, err := st.GetApplicationByPosting(postingID)
	if err != nil {
		t.Fatalf("getting application: %v", err)
	}
	if app.Status != model.StatusOffer {
		t.Errorf("scheduling an interview must not regress offer, got %s", app.Status)
	}
}

func TestScheduleInterview_AdvancesApplied(t *testing.T) {
	svc, st := newTestService(t)
	postingID := insertPosting(t, st)

	if _, err := svc.SetStatus(postingID, model.StatusApplied, ""); err != nil {
		t.Fatalf("setting applied: %v", err)
	}
	if _, err := svc.ScheduleInterview(postingID, model.Interview{
		ScheduledDate: time.Now().Add(24 * time.Hour).UTC(),
	}); err != nil {
		t.Fatalf("scheduling: %v", err)
	}

	app, _ := st.GetApplicationByPosting(postingID)
	if app.Status != model.StatusInterview {
		t.Errorf("expected applied to advance to interview, got %s", app.Status)
	}
}

func TestScheduleInterview_RequiresDate(t *testing.T) {
	svc, st := newTestService(t)
	postingID := insertPosting(t, st)

	if _, err := svc.ScheduleInterview(postingID, model.Interview{}); err == nil {
		t.Fatal("expected error for missing scheduled date")
	}
}

func TestInterviews_ListsOldestFirst(t *testing.T) {
	svc, st := newTestService(t)
	postingID := insertPosting(t, st)

	later := time.Now().Add(72 * time.Hour).UTC().Truncate(time.Second)
	sooner := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	for _, d := range []time.Time{later, sooner} {
		if _, err := svc.ScheduleInterview(postingID, model.Interview{ScheduledDate: d, Type: "phone"}); err != nil {
			t.Fatalf("scheduling: %v", err)
		}
	}

	interviews, err := svc.Interviews(postingID)
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	if len(interviews) != 2 {
		t.Fatalf("expected 2 interviews, got %d", len(interviews))
	}
	if !interviews[0].ScheduledDate.Before(interviews[1].ScheduledDate) {
		t.Error("expected interviews ordered oldest first")
	}
}

func TestInterviews_NoApplication(t *testing.T) {
	svc, st := newTestService(t)
	postingID := insertPosting(t, st)

	interviews, err := svc.Interviews(postingID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(interviews) != 0 {
		t.Errorf("expected no interviews, got %d", len(interviews))
	}
}

func TestAttachCoverLetter(t *testing.T) {
	svc, st := newTestService(t)
	postingID := insertPosting(t, st)

	app, err := svc.AttachCoverLetter(postingID, "I am excited to apply.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if app.CoverLetter != "I am excited to apply." {
		t.Errorf("unexpected cover letter: %q", app.CoverLetter)
	}
	if app.Status != model.StatusNotApplied {
		t.Errorf("attaching a letter must not change status, got %s", app.Status)
	}

	stored, err := st.GetApplicationByPosting(postingID)
	if err != nil {
		t.Fatalf("getting application: %v", err)
	}
	if stored.CoverLetter != "I am excited to apply." {
		t.Error("cover letter not persisted")
	}
}
