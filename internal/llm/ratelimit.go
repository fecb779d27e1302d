package llm

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimited throttles calls to the wrapped extractor. It never queues: when no
// token is available it fails fast so the caller can fall back to local extraction.
type RateLimited struct {
	next    FieldExtractor
	limiter *rate.Limiter
}

// NewRateLimited allows perMinute calls per minute with the given burst.
// A non-positive perMinute disables throttling.
func NewRateLimited(next FieldExtractor, perMinute, burst int) FieldExtractor {
	if perMinute <= 0 {
		return next
	}
	if burst <= 0 {
		burst = 1
	}
	every := time.Minute / time.Duration(perMinute)
	return &RateLimited{next: next, limiter: rate.NewLimiter(rate.Every(every), burst)}
}

func (r *RateLimited) ExtractFields(ctx context.Context, req ExtractRequest) (ExpenseFields, []byte, error) {
	res := r.limiter.Reserve()
	if !res.OK() {
		return ExpenseFields{}, nil, ErrRateLimited
	}
	if d := res.Delay(); d > 0 {
		res.Cancel()
		return ExpenseFields{}, nil, &ThrottledError{RetryAfter: d}
	}
	return r.next.ExtractFields(ctx, req)
}
