package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/DanWarner00/ai-job-search-platform/internal/model"
)

// Cover letters get a richer posting rendering than scoring does.
const (
	letterDescriptionBudget  = 2000
	letterRequirementsBudget = 1000
	letterMaxTokens          = 800
)

// LetterWriter drafts cover letters via an LLM. It is typically backed by
// a stronger model than the matcher.
type LetterWriter struct {
	provider Provider
}

// NewLetterWriter creates a writer backed by the given provider.
func NewLetterWriter(provider Provider) *LetterWriter {
	return &LetterWriter{provider: provider}
}

// GenerateCoverLetter drafts a letter body for the posting. The resume is
// required; preferences are optional context.
func (w *LetterWriter) GenerateCoverLetter(ctx context.Context, p model.Posting, profile model.Profile) (string, error) {
	if profile.ResumeText == "" {
		return "", fmt.Errorf("cover letter requires resume text")
	}

	var b strings.Builder
	b.WriteString("Write a professional cover letter for this job application.\n\n")
	b.WriteString("CANDIDATE'S RESUME:\n")
	b.WriteString(truncate(profile.ResumeText, resumeBudget))
	b.WriteString("\n")
	if profile.Preferences != "" {
		fmt.Fprintf(&b, "\nCandidate's Job Search Goals: %s\n", profile.Preferences)
	}
	b.WriteString("\nJOB POSTING:\n")
	b.WriteString(postingDetails(p, letterDescriptionBudget, letterRequirementsBudget))
	b.WriteString(`
Instructions:
- Professional but conversational tone
- 3-4 paragraphs maximum
- Highlight relevant skills and experience from the resume
- Show enthusiasm for the specific role and company
- Explain why they're a good fit
- Include a strong opening and closing
- DO NOT make up experience or skills not in the resume
- Format with proper paragraphs (no "Dear Hiring Manager" salutation)

Write the cover letter body only (starting with the opening paragraph):`)

	letter, err := w.provider.Complete(ctx, b.String(), letterMaxTokens)
	if err != nil {
		return "", fmt.Errorf("generating cover letter: %w", err)
	}
	return strings.TrimSpace(letter), nil
}
