package ratelimit

import "context"

// RateLimiter bounds outbound fetch throughput per feed family.
type RateLimiter interface {
	Allow(ctx context.Context, family string) (bool, error)
	Wait(ctx context.Context, family string) error
}

// Unlimited is a pass-through limiter for single-feed or test setups.
type Unlimited struct{}

func (Unlimited) Allow(ctx context.Context, family string) (bool, error) { return true, nil }

func (Unlimited) Wait(ctx context.Context, family string) error { return nil }
