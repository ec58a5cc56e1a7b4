package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/DanWarner00/ai-job-search-platform/internal/model"
)

const (
	adzunaBaseURL  = "https://api.adzuna.com/v1/api/jobs/us/search"
	adzunaPageSize = 50
)

// adzunaResponse is the top-level Adzuna search API response.
type adzunaResponse struct {
	Results []adzunaResult `json:"results"`
}

// adzunaResult mirrors a single listing in the Adzuna API response.
type adzunaResult struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Company     adzunaCompany  `json:"company"`
	Location    adzunaLocation `json:"location"`
	SalaryMin   float64        `json:"salary_min"`
	SalaryMax   float64        `json:"salary_max"`
	RedirectURL string         `json:"redirect_url"`
	Created     string         `json:"created"`
}

type adzunaCompany struct {
	DisplayName string `json:"display_name"`
}

type adzunaLocation struct {
	DisplayName string `json:"display_name"`
}

// AdzunaAdapter fetches postings from the Adzuna search API, an aggregator
// over Indeed, Monster, CareerBuilder and others.
type AdzunaAdapter struct {
	appID   string
	appKey  string
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewAdzunaAdapter creates an adapter for the Adzuna API. Credentials come
// from developer.adzuna.com; if either is empty, Fetch reports a
// configuration error without making any requests.
func NewAdzunaAdapter(appID, appKey string, client *http.Client, logger *slog.Logger) *AdzunaAdapter {
	return &AdzunaAdapter{
		appID:   appID,
		appKey:  appKey,
		baseURL: adzunaBaseURL,
		client:  client,
		logger:  logger,
	}
}

// Name returns the source identifier stored on every posting.
func (a *AdzunaAdapter) Name() string { return "adzuna" }

// Fetch pages through /search/{page} until limit postings are collected or
// the API returns a short page. A single malformed listing is skipped with
// a warning; the rest of the batch proceeds.
func (a *AdzunaAdapter) Fetch(ctx context.Context, query model.Query, limit int) ([]model.Posting, error) {
	if a.appID == "" || a.appKey == "" {
		return nil, &model.ConfigError{Reason: "adzuna credentials not set (ADZUNA_APP_ID / ADZUNA_APP_KEY)"}
	}

	// Adzuna prefers a bare city over "City, ST".
	location := query.Location
	if i := strings.Index(location, ","); i >= 0 {
		location = strings.TrimSpace(location[:i])
	}

	now := time.Now().UTC()
	var postings []model.Posting

	for page := 1; len(postings) < limit; page++ {
		perPage := adzunaPageSize
		if remaining := limit - len(postings); remaining < perPage {
			perPage = remaining
		}

		results, err := a.fetchPage(ctx, query.Keywords, location, page, perPage)
		if err != nil {
			return postings, err
		}
		if len(results) == 0 {
			break
		}

		for _, r := range results {
			p, err := a.normalize(r, now)
			if err != nil {
				a.logger.Warn("skipping malformed adzuna listing", "error", err)
				continue
			}
			postings = append(postings, p)
		}

		if len(results) < perPage {
			break // short page: upstream exhausted
		}
	}

	if len(postings) > limit {
		postings = postings[:limit]
	}
	return postings, nil
}

func (a *AdzunaAdapter) fetchPage(ctx context.Context, keywords, location string, page, perPage int) ([]adzunaResult, error) {
	params := url.Values{}
	params.Set("app_id", a.appID)
	params.Set("app_key", a.appKey)
	params.Set("results_per_page", strconv.Itoa(perPage))
	if keywords != "" {
		params.Set("what", keywords)
	}
	if location != "" {
		params.Set("where", location)
	}

	reqURL := fmt.Sprintf("%s/%d?%s", a.baseURL, page, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("adzuna request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, &model.TransientError{Op: "adzuna fetch", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("adzuna fetch: unexpected status %d", resp.StatusCode),
		}
	}

	var apiResp adzunaResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, &model.AdapterError{Source: "adzuna", Err: fmt.Errorf("decoding response: %w", err)}
	}
	return apiResp.Results, nil
}

// normalize maps one API result into the canonical posting shape.
func (a *AdzunaAdapter) normalize(r adzunaResult, now time.Time) (model.Posting, error) {
	if r.ID == "" || r.RedirectURL == "" || r.Title == "" {
		return model.Posting{}, fmt.Errorf("listing missing id, url, or title")
	}

	company := r.Company.DisplayName
	if company == "" {
		company = model.UnknownCompany
	}

	p := model.Posting{
		Source:      "adzuna",
		ExternalID:  r.ID,
		URL:         r.RedirectURL,
		Title:       r.Title,
		Company:     company,
		Location:    r.Location.DisplayName,
		Description: r.Description,
		ScrapedDate: now,
	}

	if r.SalaryMin > 0 && r.SalaryMax > 0 {
		min, max := int(r.SalaryMin), int(r.SalaryMax)
		p.SalaryMin = &min
		p.SalaryMax = &max
	}

	if r.Created != "" {
		if t, err := time.Parse(time.RFC3339, r.Created); err == nil {
			p.PostedDate = &t
		}
	}

	return p, nil
}
