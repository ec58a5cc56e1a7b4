package ai

import "context"

// Provider sends a prompt to an LLM and returns the raw text response.
// maxTokens bounds the completion; scoring needs far fewer tokens than
// cover letters.
type Provider interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}
