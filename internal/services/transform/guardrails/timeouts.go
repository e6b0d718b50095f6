// Package guardrails holds cross cutting safety helpers for the window pass
package guardrails

import (
	"context"
	"time"
)

// Timeouts is an optional budget bundle for a single window pass.
// Zero values mean no extra timeout at that level
type Timeouts struct {
	// Pass is the overall time budget for one window
	Pass time.Duration

	// Read caps the posts paging step
	Read time.Duration

	// DB caps one persist step
	DB time.Duration
}

// WithPass returns a context limited by the pass budget without extending any parent deadline
func WithPass(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.Pass)
}

// ForRead returns a sub context for the posts read phase
func ForRead(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.Read)
}

// ForDB returns a sub context for one persist phase
func ForDB(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.DB)
}

// Remaining returns the time until the deadline on ctx or zero when none is set or already expired
func Remaining(ctx context.Context) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		d := time.Until(dl)
		if d > 0 {
			return d
		}
	}
	return 0
}

// withChildTimeout chooses the tighter of the requested duration and any
// parent remainder. Never extends the parent deadline
func withChildTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(parent)
	}
	if rem := Remaining(parent); rem > 0 && rem < d {
		return context.WithTimeout(parent, rem)
	}
	return context.WithTimeout(parent, d)
}
