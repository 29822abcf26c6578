package announce

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter is a token bucket shared by every send of an announcer.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter allows burst sends immediately, then requestsPerSecond.
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	return &RateLimiter{limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst)}
}

// Wait blocks until a send is allowed or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}
