package broker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/csprime/csprime/internal/llm"
)

func TestRetryPolicySucceedsFirstAttempt(t *testing.T) {
	t.Parallel()

	p := testPolicy()
	calls := 0
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestRetryPolicyStopsAtMaxAttempts(t *testing.T) {
	t.Parallel()

	p := testPolicy()
	calls := 0
	wantErr := transientErr("p")
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("Do error = %v, want the last attempt's error", err)
	}
	if calls != p.MaxAttempts {
		t.Errorf("expected %d attempts, got %d", p.MaxAttempts, calls)
	}
}

func TestRetryPolicyDoesNotRetryNonTransient(t *testing.T) {
	t.Parallel()

	p := testPolicy()
	calls := 0
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return authErr("p")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("non-transient error retried: %d attempts", calls)
	}
}

func TestRetryBackoffIsMonotonicAndCapped(t *testing.T) {
	t.Parallel()

	var delays []time.Duration
	p := RetryPolicy{
		MaxAttempts:     6,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		Retryable:       llm.IsTransient,
		Sleep: func(_ context.Context, d time.Duration) error {
			delays = append(delays, d)
			return nil
		},
	}

	_ = p.Do(context.Background(), func(context.Context) error {
		return transientErr("p")
	})

	if len(delays) != p.MaxAttempts-1 {
		t.Fatalf("expected %d sleeps, got %d", p.MaxAttempts-1, len(delays))
	}
	for i := 1; i < len(delays); i++ {
		if delays[i] < delays[i-1] {
			t.Errorf("backoff decreased: %v after %v", delays[i], delays[i-1])
		}
	}
	for _, d := range delays {
		if d > p.MaxInterval {
			t.Errorf("delay %v exceeds cap %v", d, p.MaxInterval)
		}
	}
	if delays[0] != p.InitialInterval {
		t.Errorf("first delay = %v, want %v", delays[0], p.InitialInterval)
	}
	if last := delays[len(delays)-1]; last != p.MaxInterval {
		t.Errorf("backoff should reach the cap, last delay = %v", last)
	}
}

func TestRetryPolicyAbortsWhenSleepFails(t *testing.T) {
	t.Parallel()

	attemptErr := transientErr("p")
	p := testPolicy()
	p.Sleep = func(context.Context, time.Duration) error { return context.Canceled }

	calls := 0
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return attemptErr
	})
	if calls != 1 {
		t.Errorf("expected a single attempt when sleep is interrupted, got %d", calls)
	}
	if !errors.Is(err, attemptErr) {
		t.Errorf("Do should surface the attempt error, got %v", err)
	}
}

func TestRetryPolicyAttemptTimeout(t *testing.T) {
	t.Parallel()

	p := testPolicy()
	p.MaxAttempts = 1
	p.AttemptTimeout = 10 * time.Millisecond

	err := p.Do(context.Background(), func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return llm.Classify("p", ctx.Err())
		case <-time.After(time.Second):
			return nil
		}
	})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !llm.IsTransient(err) {
		t.Errorf("deadline errors should classify as transient, got %v", err)
	}
}
