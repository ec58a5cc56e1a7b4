package ai

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/DanWarner00/ai-job-search-platform/internal/model"
)

// Truncation budgets keep prompts inside a predictable token envelope.
const (
	resumeBudget       = 3000
	descriptionBudget  = 1000
	requirementsBudget = 500
	scoreMaxTokens     = 200
)

// ResumeMatcher scores resume-vs-posting fit via an LLM.
type ResumeMatcher struct {
	provider Provider
}

// NewResumeMatcher creates a matcher backed by the given provider.
func NewResumeMatcher(provider Provider) *ResumeMatcher {
	return &ResumeMatcher{provider: provider}
}

// ScoreMatch asks the model for a 0-100 fit score and an explanation.
// The caller decides what to do on error; this never fabricates a score.
func (m *ResumeMatcher) ScoreMatch(ctx context.Context, p model.Posting, resume string) (int, string, error) {
	prompt := buildScorePrompt(p, resume)

	raw, err := m.provider.Complete(ctx, prompt, scoreMaxTokens)
	if err != nil {
		return 0, "", fmt.Errorf("match scoring: %w", err)
	}

	score, explanation, err := parseScoreResponse(raw)
	if err != nil {
		return 0, "", fmt.Errorf("match scoring: %w", err)
	}
	return score, explanation, nil
}

func buildScorePrompt(p model.Posting, resume string) string {
	var b strings.Builder
	b.WriteString("Analyze this job posting against the candidate's resume and provide a match score and explanation.\n\n")
	b.WriteString("RESUME:\n")
	b.WriteString(truncate(resume, resumeBudget))
	b.WriteString("\n\nJOB POSTING:\n")
	b.WriteString(postingDetails(p, descriptionBudget, requirementsBudget))
	b.WriteString(`
Evaluate based on:
- Skills match (technical skills, tools, languages)
- Experience level fit
- Industry/domain alignment
- Location preferences
- Role responsibilities match

Respond in this EXACT format:
SCORE: [number 0-100]
EXPLANATION: [2-3 sentence explanation of why this score, highlighting key matches or gaps]`)
	return b.String()
}

// postingDetails renders the posting fields shared by the scoring and
// cover-letter prompts, with per-prompt truncation budgets.
func postingDetails(p model.Posting, descBudget, reqBudget int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Job Title: %s\n", p.Title)
	fmt.Fprintf(&b, "Company: %s\n", p.Company)
	fmt.Fprintf(&b, "Location: %s\n", orDefault(p.Location, "Not specified"))
	if p.SalaryMin != nil && p.SalaryMax != nil {
		fmt.Fprintf(&b, "Salary: $%d - $%d\n", *p.SalaryMin, *p.SalaryMax)
	} else {
		b.WriteString("Salary: Not specified\n")
	}
	fmt.Fprintf(&b, "Description: %s\n", orDefault(truncate(p.Description, descBudget), "Not provided"))
	fmt.Fprintf(&b, "Requirements: %s\n", orDefault(truncate(p.Requirements, reqBudget), "Not provided"))
	return b.String()
}

// parseScoreResponse extracts the score and explanation from the model's
// SCORE:/EXPLANATION: reply. The explanation may continue over multiple
// lines. A reply without a parseable SCORE line is an error.
func parseScoreResponse(raw string) (int, string, error) {
	score := 0
	found := false
	var explanation strings.Builder
	inExplanation := false

	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "SCORE:"):
			inExplanation = false
			value := strings.TrimSpace(strings.TrimPrefix(trimmed, "SCORE:"))
			n, err := strconv.Atoi(value)
			if err != nil {
				return 0, "", fmt.Errorf("unparseable score %q", value)
			}
			score = n
			found = true
		case strings.HasPrefix(trimmed, "EXPLANATION:"):
			inExplanation = true
			explanation.WriteString(strings.TrimSpace(strings.TrimPrefix(trimmed, "EXPLANATION:")))
		case inExplanation && trimmed != "":
			explanation.WriteString(" ")
			explanation.WriteString(trimmed)
		}
	}

	if !found {
		return 0, "", fmt.Errorf("response has no SCORE line: %q", raw)
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score, explanation.String(), nil
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
