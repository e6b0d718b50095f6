// Package domain defines core types and interfaces for the window pass engine
package domain

import (
	"time"

	alertdom "buzzwatch/internal/services/alerts/domain"
	countdom "buzzwatch/internal/services/counts/domain"
	metricdom "buzzwatch/internal/services/metrics/domain"
	postdom "buzzwatch/internal/services/posts/domain"
)

// RunStatus is the lifecycle state of one window pass
type RunStatus string

// Run lifecycle states
const (
	RunRunning RunStatus = "running"
	RunOK      RunStatus = "ok"
	RunFailed  RunStatus = "failed"
	RunPartial RunStatus = "partial"
)

// Run is one recorded pass over a window
type Run struct {
	ID         string // uuid
	Window     time.Time
	Status     RunStatus
	StartedAt  time.Time
	FinishedAt *time.Time

	PostsRead    int64
	PostsSkipped int64
	Categories   int64
	Alerts       int64
	ElapsedMS    int64
	Error        string
}

// RunFinish carries the terminal counters for one pass
type RunFinish struct {
	Status       RunStatus
	PostsRead    int64
	PostsSkipped int64
	Categories   int64
	Alerts       int64
	ElapsedMS    int64
	ErrText      string
}

// Summary reports one RunWindow call
type Summary struct {
	Window  time.Time
	Status  RunStatus
	Skipped bool // lease held or window already ok; nothing ran

	PostsRead    int64
	PostsSkipped int64
	Categories   int64 // distinct (channel, query, category) keys aggregated
	Alerts       int64 // alert rows handed to the sink
	Degraded     int64 // keys scored cold after a history read failure
	Excluded     int64 // non-finite vectors dropped from both sinks
	FailedKeys   int64 // rows still failing after persist retries
	ElapsedMS    int64
}

// ListInput filters the run listing
type ListInput struct {
	Status RunStatus // empty = all
	Since  time.Time // inclusive; zero = unbounded
	Until  time.Time // exclusive; zero = unbounded
	Limit  int       // hard-capped in service
}

// Ports bundles the sibling module ports the engine reads and writes through
type Ports struct {
	Posts   postdom.ReaderPort   // required
	History countdom.HistoryPort // required
	Counts  countdom.AppendPort  // required
	Metrics metricdom.WriterPort // required
	Alerts  alertdom.SinkPort    // required
}
