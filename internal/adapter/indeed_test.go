package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DanWarner00/ai-job-search-platform/internal/model"
)

const indeedSearchPage = `<html><body>
<div class="job_seen_beacon">
	<h2 class="jobTitle"><a class="jcs-JobTitle" href="/rc/clk?jk=abc123">Senior Go Engineer</a></h2>
	<span class="companyName">Acme Corp</span>
	<div class="companyLocation">Austin, TX</div>
	<div class="salary-snippet">$120,000 - $150,000 a year</div>
	<span class="date">Posted 2 days ago</span>
	<div class="job-snippet">Build and operate backend services.</div>
</div>
<div class="job_seen_beacon">
	<h2 class="jobTitle"><a class="jcs-JobTitle" href="/rc/clk?jk=def456">Platform Engineer</a></h2>
	<div class="companyLocation">Remote</div>
	<span class="date">Just posted</span>
</div>
<div class="job_seen_beacon">
	<h2 class="jobTitle">Broken card without a link</h2>
</div>
</body></html>`

func TestIndeedFetch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "go engineer" {
			t.Errorf("expected q=go engineer, got %s", got)
		}
		w.Write([]byte(indeedSearchPage))
	}))
	defer srv.Close()

	adapter := NewIndeedAdapter(srv.Client(), discardLogger())
	adapter.baseURL = srv.URL

	postings, err := adapter.Fetch(context.Background(), model.Query{Keywords: "go engineer", Location: "Austin, TX"}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(postings) != 2 {
		t.Fatalf("expected 2 postings (broken card skipped), got %d", len(postings))
	}

	p := postings[0]
	if p.Source != "indeed" {
		t.Errorf("expected source indeed, got %s", p.Source)
	}
	if p.ExternalID != "abc123" {
		t.Errorf("expected external ID abc123 from jk param, got %s", p.ExternalID)
	}
	if p.Title != "Senior Go Engineer" {
		t.Errorf("unexpected title: %s", p.Title)
	}
	if p.Company != "Acme Corp" {
		t.Errorf("unexpected company: %s", p.Company)
	}
	if p.SalaryMin == nil || *p.SalaryMin != 120000 {
		t.Errorf("expected salary min 120000, got %v", p.SalaryMin)
	}
	if p.SalaryMax == nil || *p.SalaryMax != 150000 {
		t.Errorf("expected salary max 150000, got %v", p.SalaryMax)
	}
	if p.PostedDate == nil {
		t.Error("expected posted date from relative text")
	}

	// Card without a company falls back to the placeholder, and its
	// external ID is derived from the URL hash.
	if postings[1].Company != model.UnknownCompany {
		t.Errorf("expected %s company, got %s", model.UnknownCompany, postings[1].Company)
	}
	if postings[1].ExternalID != "def456" {
		t.Errorf("expected external ID def456, got %s", postings[1].ExternalID)
	}
}

func TestIndeedFetch_EmptyPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>No jobs found</p></body></html>`))
	}))
	defer srv.Close()

	adapter := NewIndeedAdapter(srv.Client(), discardLogger())
	adapter.baseURL = srv.URL

	postings, err := adapter.Fetch(context.Background(), model.Query{Keywords: "go"}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(postings) != 0 {
		t.Fatalf("expected 0 postings, got %d", len(postings))
	}
}

func TestIndeedFetch_RespectsLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(indeedSearchPage))
	}))
	defer srv.Close()

	adapter := NewIndeedAdapter(srv.Client(), discardLogger())
	adapter.baseURL = srv.URL

	postings, err := adapter.Fetch(context.Background(), model.Query{Keywords: "go"}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(postings) != 1 {
		t.Fatalf("expected exactly 1 posting, got %d", len(postings))
	}
}
