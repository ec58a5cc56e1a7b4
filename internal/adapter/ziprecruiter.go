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
	zipBaseURL  = "https://www.ziprecruiter.com"
	zipPageSize = 20
)

// ZipRecruiterAdapter scrapes ZipRecruiter search results.
type ZipRecruiterAdapter struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewZipRecruiterAdapter creates an adapter that scrapes ZipRecruiter.
func NewZipRecruiterAdapter(client *http.Client, logger *slog.Logger) *ZipRecruiterAdapter {
	return &ZipRecruiterAdapter{
		baseURL: zipBaseURL,
		client:  client,
		logger:  logger,
	}
}

// Name returns the source identifier stored on every posting.
func (a *ZipRecruiterAdapter) Name() string { return "ziprecruiter" }

// Fetch pages through search results until limit postings are collected or
// a page comes back short or empty.
func (a *ZipRecruiterAdapter) Fetch(ctx context.Context, query model.Query, limit int) ([]model.Posting, error) {
	now := time.Now().UTC()
	var postings []model.Posting

	for page := 1; len(postings) < limit; page++ {
		params := url.Values{}
		params.Set("search", query.Keywords)
		params.Set("location", query.Location)
		params.Set("days", "7")
		if page > 1 {
			params.Set("page", strconv.Itoa(page))
		}

		doc, err := fetchDocument(ctx, a.client, "ziprecruiter", a.baseURL+"/jobs-search?"+params.Encode())
		if err != nil {
			return postings, err
		}

		cards := doc.Find("article.job_result")
		if cards.Length() == 0 {
			cards = doc.Find("div[data-job-id]")
		}
		if cards.Length() == 0 {
			break
		}

		cards.EachWithBreak(func(_ int, card *goquery.Selection) bool {
			p, err := a.parseCard(card, now)
			if err != nil {
				a.logger.Warn("skipping unparseable ziprecruiter card", "error", err)
				return true
			}
			postings = append(postings, p)
			return len(postings) < limit
		})

		if cards.Length() < zipPageSize {
			break
		}
	}

	return postings, nil
}

func (a *ZipRecruiterAdapter) parseCard(card *goquery.Selection, now time.Time) (model.Posting, error) {
	titleSel := card.Find("h2.title").First()
	if titleSel.Length() == 0 {
		titleSel = card.Find("a[data-job-title]").First()
	}
	if titleSel.Length() == 0 {
		return model.Posting{}, fmt.Errorf("card has no title element")
	}
	title := cleanText(titleSel.Text())

	linkSel := titleSel
	if !titleSel.Is("a") {
		linkSel = titleSel.Find("a").First()
	}
	href, ok := linkSel.Attr("href")
	if !ok || href == "" {
		return model.Posting{}, fmt.Errorf("card has no job link")
	}
	jobURL := absoluteURL(a.baseURL, href)

	externalID, _ := card.Attr("data-job-id")
	if externalID == "" {
		externalID, _ = card.Attr("id")
	}
	if externalID == "" {
		externalID = hashExternalID(jobURL)
	}

	p := model.Posting{
		Source:      "ziprecruiter",
		ExternalID:  externalID,
		URL:         jobURL,
		Title:       title,
		Company:     model.UnknownCompany,
		ScrapedDate: now,
	}

	if company := cleanText(card.Find("a.company_name, span.company").First().Text()); company != "" {
		p.Company = company
	}
	p.Location = cleanText(card.Find("span.location, div.location").First().Text())

	if salaryText := cleanText(card.Find("span.salary, div.payout").First().Text()); salaryText != "" {
		p.SalaryMin, p.SalaryMax = parseSalaryRange(salaryText)
	}

	if dateText := cleanText(card.Find("time, span.days").First().Text()); dateText != "" {
		p.PostedDate = parseRelativeDate(dateText, now)
	}

	p.Description = cleanText(card.Find("p.job_snippet, div.summary").First().Text())

	return p, nil
}
