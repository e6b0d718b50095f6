package domain

import (
	"context"
	"time"
)

// RunnerPort drives window passes
type RunnerPort interface {
	// RunWindow processes one window end to end. A held lease or an
	// already-ok window is a clean skip, not an error
	RunWindow(ctx context.Context, window time.Time) (Summary, error)
	// RunRange processes [since, until) oldest window first
	RunRange(ctx context.Context, since, until time.Time) ([]Summary, error)
	// RunResume processes windows that have posts but no finished pass
	RunResume(ctx context.Context) ([]Summary, error)
}

// ReaderPort serves run bookkeeping reads
type ReaderPort interface {
	// ListRuns returns runs newest window first
	ListRuns(ctx context.Context, in ListInput) ([]Run, error)
}
