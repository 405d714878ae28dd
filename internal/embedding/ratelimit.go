package embedding

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimited wraps a Provider so that Embed calls do not exceed a fixed rate.
type RateLimited struct {
	inner   Provider
	limiter *rate.Limiter
}

// NewRateLimited limits inner to rps requests per second with a burst of one.
func NewRateLimited(inner Provider, rps float64) *RateLimited {
	return &RateLimited{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// Embed waits for the limiter, then delegates.
func (r *RateLimited) Embed(ctx context.Context, text string) (Embedding, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return Embedding{}, fmt.Errorf("rate limiter: %w", err)
	}
	return r.inner.Embed(ctx, text)
}

// ModelName returns the wrapped provider's model.
func (r *RateLimited) ModelName() string {
	return r.inner.ModelName()
}

// Dimensions returns the wrapped provider's dimensions.
func (r *RateLimited) Dimensions() int {
	return r.inner.Dimensions()
}

// IsAvailable forwards to the wrapped provider when it supports health checks.
func (r *RateLimited) IsAvailable(ctx context.Context) error {
	if c, ok := r.inner.(Checker); ok {
		return c.IsAvailable(ctx)
	}
	return nil
}

// Unwrap returns the wrapped provider.
func (r *RateLimited) Unwrap() Provider {
	return r.inner
}
