package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/DanWarner00/ai-job-search-platform/internal/model"
)

const (
	linkedinBaseURL  = "https://www.linkedin.com"
	linkedinPageSize = 25
)

// LinkedInAdapter scrapes the public (logged-out) job search page. Cards
// there carry no salary information, so those fields stay absent.
type LinkedInAdapter struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewLinkedInAdapter creates an adapter that scrapes LinkedIn's public
// job search results.
func NewLinkedInAdapter(client *http.Client, logger *slog.Logger) *LinkedInAdapter {
	return &LinkedInAdapter{
		baseURL: linkedinBaseURL,
		client:  client,
		logger:  logger,
	}
}

// Name returns the source identifier stored on every posting.
func (a *LinkedInAdapter) Name() string { return "linkedin" }

// Fetch pages through search results (via the start offset) until limit
// postings are collected or a page comes back short or empty.
func (a *LinkedInAdapter) Fetch(ctx context.Context, query model.Query, limit int) ([]model.Posting, error) {
	now := time.Now().UTC()
	var postings []model.Posting

	for start := 0; len(postings) < limit; start += linkedinPageSize {
		params := url.Values{}
		params.Set("keywords", query.Keywords)
		params.Set("location", query.Location)
		params.Set("f_TPR", "r604800") // past week
		if start > 0 {
			params.Set("start", strconv.Itoa(start))
		}

		doc, err := fetchDocument(ctx, a.client, "linkedin", a.baseURL+"/jobs/search?"+params.Encode())
		if err != nil {
			return postings, err
		}

		cards := doc.Find("div.base-card")
		if cards.Length() == 0 {
			break
		}

		cards.EachWithBreak(func(_ int, card *goquery.Selection) bool {
			p, err := a.parseCard(card, now)
			if err != nil {
				a.logger.Warn("skipping unparseable linkedin card", "error", err)
				return true
			}
			postings = append(postings, p)
			return len(postings) < limit
		})

		if cards.Length() < linkedinPageSize {
			break // short page: upstream exhausted
		}
	}

	return postings, nil
}

func (a *LinkedInAdapter) parseCard(card *goquery.Selection, now time.Time) (model.Posting, error) {
	title := cleanText(card.Find("h3.base-search-card__title").First().Text())
	if title == "" {
		return model.Posting{}, fmt.Errorf("card has no title element")
	}

	href, ok := card.Find("a.base-card__full-link").First().Attr("href")
	if !ok || href == "" {
		return model.Posting{}, fmt.Errorf("card has no job link")
	}
	jobURL := absoluteURL(a.baseURL, href)

	p := model.Posting{
		Source:      "linkedin",
		ExternalID:  linkedinJobID(jobURL),
		URL:         jobURL,
		Title:       title,
		Company:     model.UnknownCompany,
		ScrapedDate: now,
	}

	if company := cleanText(card.Find("h4.base-search-card__subtitle").First().Text()); company != "" {
		p.Company = company
	}
	p.Location = cleanText(card.Find("span.job-search-card__location").First().Text())

	dateSel := card.Find("time.job-search-card__listdate").First()
	if datetime, ok := dateSel.Attr("datetime"); ok {
		if t, err := time.Parse("2006-01-02", datetime); err == nil {
			p.PostedDate = &t
		}
	}
	if p.PostedDate == nil {
		if dateText := cleanText(dateSel.Text()); dateText != "" {
			p.PostedDate = parseRelativeDate(dateText, now)
		}
	}

	return p, nil
}

// linkedinJobID extracts the numeric listing ID from the last path segment
// ("...-at-acme-4012345678"), falling back to a hash of the URL.
func linkedinJobID(jobURL string) string {
	u, err := url.Parse(jobURL)
	if err != nil {
		return hashExternalID(jobURL)
	}
	path := strings.TrimSuffix(u.Path, "/")
	if i := strings.LastIndexAny(path, "-/"); i >= 0 {
		id := path[i+1:]
		if id != "" && isDigits(id) {
			return id
		}
	}
	return hashExternalID(jobURL)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
