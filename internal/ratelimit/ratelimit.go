package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/DanWarner00/ai-job-search-platform/internal/model"
)

// SourceRateLimiter enforces a minimum delay between requests to the same
// upstream source. Boards ban aggressive scrapers quickly.
type SourceRateLimiter struct {
	mu       sync.Mutex
	lastCall map[string]time.Time // key: source name
	minDelay time.Duration
}

// NewSourceRateLimiter creates a rate limiter that enforces minDelay
// between consecutive requests to the same source.
func NewSourceRateLimiter(minDelay time.Duration) *SourceRateLimiter {
	return &SourceRateLimiter{
		lastCall: make(map[string]time.Time),
		minDelay: minDelay,
	}
}

// Wait blocks until enough time has passed since the last request to the
// given source. Returns an error if the context is cancelled while waiting.
func (r *SourceRateLimiter) Wait(ctx context.Context, source string) error {
	r.mu.Lock()
	last, ok := r.lastCall[source]
	now := time.Now()

	if !ok {
		// First request for this source — no wait needed.
		r.lastCall[source] = now
		r.mu.Unlock()
		return nil
	}

	elapsed := now.Sub(last)
	if elapsed >= r.minDelay {
		// Enough time has passed — proceed immediately.
		r.lastCall[source] = now
		r.mu.Unlock()
		return nil
	}

	// Need to wait for the remainder.
	remaining := r.minDelay - elapsed
	r.mu.Unlock()

	select {
	case <-ctx.Done():
		return fmt.Errorf("rate limiter wait for %s: %w", source, ctx.Err())
	case <-time.After(remaining):
	}

	// Record the actual time after waiting.
	r.mu.Lock()
	r.lastCall[source] = time.Now()
	r.mu.Unlock()

	return nil
}

// RateLimitedSource is a decorator that enforces per-source rate limiting
// before delegating to the wrapped Source.
type RateLimitedSource struct {
	inner   model.Source
	limiter *SourceRateLimiter
}

// NewRateLimitedSource wraps a Source with rate limiting. All sources
// should share the same limiter instance so spacing is enforced globally
// per source name.
func NewRateLimitedSource(inner model.Source, limiter *SourceRateLimiter) *RateLimitedSource {
	return &RateLimitedSource{
		inner:   inner,
		limiter: limiter,
	}
}

// Name returns the wrapped source's name.
func (s *RateLimitedSource) Name() string { return s.inner.Name() }

// Fetch waits for the rate limiter to allow a request, then delegates to
// the wrapped source.
func (s *RateLimitedSource) Fetch(ctx context.Context, query model.Query, limit int) ([]model.Posting, error) {
	if err := s.limiter.Wait(ctx, s.inner.Name()); err != nil {
		return nil, err
	}
	return s.inner.Fetch(ctx, query, limit)
}
