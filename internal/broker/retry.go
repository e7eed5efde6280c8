package broker

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/csprime/csprime/internal/llm"
)

// RetryPolicy bounds repeated attempts against a single candidate.
// Only errors accepted by Retryable are retried; everything else fails the
// candidate on the spot. Sleep is injectable so tests run without waiting.
type RetryPolicy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	AttemptTimeout  time.Duration
	Retryable       func(error) bool
	Sleep           func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy returns the production policy: three attempts with
// exponential backoff from 500ms capped at 10s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     10 * time.Second,
		AttemptTimeout:  30 * time.Second,
		Retryable:       llm.IsTransient,
	}
}

// Do runs fn until it succeeds, returns a non-retryable error, or the
// attempt budget is spent. The error of the final attempt is returned.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxInterval = p.MaxInterval
	b.Multiplier = 2
	b.RandomizationFactor = 0 // deterministic, monotonically non-decreasing delays
	b.MaxElapsedTime = 0
	b.Reset()

	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		lastErr = p.attempt(ctx, fn)
		if lastErr == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(lastErr) {
			return lastErr
		}
		if attempt == p.MaxAttempts {
			break
		}
		if err := p.sleep(ctx, b.NextBackOff()); err != nil {
			return lastErr
		}
	}
	return lastErr
}

func (p RetryPolicy) attempt(ctx context.Context, fn func(ctx context.Context) error) error {
	if p.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.AttemptTimeout)
		defer cancel()
	}
	return fn(ctx)
}

func (p RetryPolicy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
