package store

import (
	"context"
	"time"

	perr "buzzwatch/internal/platform/errors"
)

// RunInRun wraps ctx with the run id and calls fn inside the provided TxRunner
func RunInRun(ctx context.Context, tx TxRunner, runID string, fn func(ctx context.Context, q RowQuerier) error) error {
	ctx = WithRunID(ctx, runID)
	return tx.Tx(ctx, func(q RowQuerier) error {
		return fn(ctx, q)
	})
}

// RetryPolicy bounds a persist retry loop
type RetryPolicy struct {
	Attempts int           // total tries including the first; <=0 means 1
	Backoff  time.Duration // initial sleep, doubled per retry
	Ceiling  time.Duration // backoff cap; 0 means no cap
}

// DefaultRetry matches the sink contract: a small fixed number of tries
var DefaultRetry = RetryPolicy{Attempts: 3, Backoff: 200 * time.Millisecond, Ceiling: 2 * time.Second}

// Retry runs fn under the policy, retrying only retryable errors.
// OnRetry, when set, observes each retry before the sleep.
// The last error comes back unwrapped so callers can classify it
func Retry(ctx context.Context, pol RetryPolicy, fn func(ctx context.Context) error, onRetry func(attempt int, err error)) error {
	attempts := pol.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	backoff := pol.Backoff

	var last error
	for i := 0; i < attempts; i++ {
		last = fn(ctx)
		if last == nil {
			return nil
		}
		if !perr.Retryable(last) || i == attempts-1 {
			return last
		}
		if onRetry != nil {
			onRetry(i+1, last)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if pol.Ceiling > 0 && backoff > pol.Ceiling {
			backoff = pol.Ceiling
		}
	}
	return last
}
