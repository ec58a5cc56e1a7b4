package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/DanWarner00/ai-job-search-platform/internal/model"
)

const (
	indeedBaseURL  = "https://www.indeed.com"
	indeedPageSize = 15
)

// IndeedAdapter scrapes the Indeed search results page. Selectors follow
// the current markup and are inherently brittle; a card that no longer
// parses is skipped, never fatal.
type IndeedAdapter struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewIndeedAdapter creates an adapter that scrapes Indeed search results.
func NewIndeedAdapter(client *http.Client, logger *slog.Logger) *IndeedAdapter {
	return &IndeedAdapter{
		baseURL: indeedBaseURL,
		client:  client,
		logger:  logger,
	}
}

// Name returns the source identifier stored on every posting.
func (a *IndeedAdapter) Name() string { return "indeed" }

// Fetch pages through search results (via the start offset) until limit
// postings are collected or a page comes back short or empty.
func (a *IndeedAdapter) Fetch(ctx context.Context, query model.Query, limit int) ([]model.Posting, error) {
	now := time.Now().UTC()
	var postings []model.Posting

	for start := 0; len(postings) < limit; start += indeedPageSize {
		params := url.Values{}
		params.Set("q", query.Keywords)
		params.Set("l", query.Location)
		if start > 0 {
			params.Set("start", strconv.Itoa(start))
		}

		doc, err := fetchDocument(ctx, a.client, "indeed", a.baseURL+"/jobs?"+params.Encode())
		if err != nil {
			return postings, err
		}

		cards := doc.Find("div.job_seen_beacon")
		if cards.Length() == 0 {
			// Markup variant without the beacon wrapper.
			cards = doc.Find("a.jcs-JobTitle")
		}
		if cards.Length() == 0 {
			break
		}

		cards.EachWithBreak(func(_ int, card *goquery.Selection) bool {
			p, err := a.parseCard(card, now)
			if err != nil {
				a.logger.Warn("skipping unparseable indeed card", "error", err)
				return true
			}
			postings = append(postings, p)
			return len(postings) < limit
		})

		if cards.Length() < indeedPageSize {
			break // short page: upstream exhausted
		}
	}

	return postings, nil
}

// parseCard extracts one posting from a search-result card.
func (a *IndeedAdapter) parseCard(card *goquery.Selection, now time.Time) (model.Posting, error) {
	titleSel := card.Find("h2.jobTitle").First()
	if titleSel.Length() == 0 {
		titleSel = card.Find("a.jcs-JobTitle").First()
	}
	if titleSel.Length() == 0 {
		return model.Posting{}, fmt.Errorf("card has no title element")
	}
	title := cleanText(titleSel.Text())

	linkSel := card.Find("a.jcs-JobTitle").First()
	if linkSel.Length() == 0 {
		linkSel = titleSel.Find("a").First()
	}
	href, ok := linkSel.Attr("href")
	if !ok || href == "" {
		return model.Posting{}, fmt.Errorf("card has no job link")
	}
	jobURL := absoluteURL(a.baseURL, href)

	p := model.Posting{
		Source:      "indeed",
		ExternalID:  indeedJobKey(jobURL),
		URL:         jobURL,
		Title:       title,
		Company:     model.UnknownCompany,
		ScrapedDate: now,
	}

	if company := cleanText(card.Find("span.companyName").Text()); company != "" {
		p.Company = company
	}
	p.Location = cleanText(card.Find("div.companyLocation").Text())

	if salaryText := cleanText(card.Find("div.salary-snippet").Text()); salaryText != "" {
		p.SalaryMin, p.SalaryMax = parseSalaryRange(salaryText)
	}

	if dateText := cleanText(card.Find("span.date").Text()); dateText != "" {
		p.PostedDate = parseRelativeDate(dateText, now)
	}

	p.Description = cleanText(card.Find("div.job-snippet").Text())

	return p, nil
}

// indeedJobKey extracts the jk query parameter (Indeed's listing key) from
// a job URL, falling back to a hash of the URL so the ID stays stable
// across runs.
func indeedJobKey(jobURL string) string {
	if u, err := url.Parse(jobURL); err == nil {
		if jk := u.Query().Get("jk"); jk != "" {
			return jk
		}
	}
	return hashExternalID(jobURL)
}
