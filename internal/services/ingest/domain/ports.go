package domain

import (
	"context"
	"time"

	postdom "buzzwatch/internal/services/posts/domain"
)

// RunnerPort drives ingest passes
type RunnerPort interface {
	// RunWindow ingests every configured feed's batch for one window
	RunWindow(ctx context.Context, window time.Time) (Summary, error)
	// RunRange ingests every window in [since, until)
	RunRange(ctx context.Context, since, until time.Time) (Summary, error)
}

// Ports are dependencies injected into the ingest module
type Ports struct {
	Posts postdom.WriterPort // required
}
