package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/DanWarner00/ai-job-search-platform/internal/model"
)

func TestWait_SameSource_EnforcesMinDelay(t *testing.T) {
	limiter := NewSourceRateLimiter(100 * time.Millisecond)
	ctx := context.Background()

	// First call should return immediately.
	if err := limiter.Wait(ctx, "indeed"); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	start := time.Now()
	if err := limiter.Wait(ctx, "indeed"); err != nil {
		t.Fatalf("second wait: %v", err)
	}
	elapsed := time.Since(start)

	// Should have waited at least ~100ms (allow 80ms for timer jitter).
	if elapsed < 80*time.Millisecond {
		t.Errorf("expected >= 80ms wait, got %v", elapsed)
	}
}

func TestWait_DifferentSources_NoCrossBlocking(t *testing.T) {
	limiter := NewSourceRateLimiter(200 * time.Millisecond)
	ctx := context.Background()

	// Call for indeed.
	if err := limiter.Wait(ctx, "indeed"); err != nil {
		t.Fatalf("indeed wait: %v", err)
	}

	// Immediately call for linkedin — should NOT block.
	start := time.Now()
	if err := limiter.Wait(ctx, "linkedin"); err != nil {
		t.Fatalf("linkedin wait: %v", err)
	}
	elapsed := time.Since(start)

	if elapsed > 50*time.Millisecond {
		t.Errorf("expected linkedin wait to be near-instant, got %v", elapsed)
	}
}

func TestWait_ContextCancellation(t *testing.T) {
	limiter := NewSourceRateLimiter(5 * time.Second) // long delay
	ctx := context.Background()

	// First call to seed the last-call time.
	if err := limiter.Wait(ctx, "indeed"); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	// Cancel the context before the wait completes.
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately

	err := limiter.Wait(ctx, "indeed")
	if err == nil {
		t.Fatal("expected error from cancelled context, got nil")
	}
}

// --- Mock for RateLimitedSource test ---

type recordingSource struct {
	called bool
}

func (s *recordingSource) Name() string { return "indeed" }

func (s *recordingSource) Fetch(_ context.Context, _ model.Query, _ int) ([]model.Posting, error) {
	s.called = true
	return nil, nil
}

func TestRateLimitedSource_WaitsBeforeDelegating(t *testing.T) {
	limiter := NewSourceRateLimiter(100 * time.Millisecond)
	inner := &recordingSource{}
	src := NewRateLimitedSource(inner, limiter)
	ctx := context.Background()
	query := model.Query{Keywords: "go"}

	// First call — seeds limiter, then delegates.
	if _, err := src.Fetch(ctx, query, 10); err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	if !inner.called {
		t.Fatal("inner source was not called on first fetch")
	}

	// Reset.
	inner.called = false

	// Second call — should wait for the rate limiter.
	start := time.Now()
	if _, err := src.Fetch(ctx, query, 10); err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	elapsed := time.Since(start)

	if !inner.called {
		t.Fatal("inner source was not called on second fetch")
	}
	if elapsed < 80*time.Millisecond {
		t.Errorf("expected >= 80ms wait on second fetch, got %v", elapsed)
	}
}
