package domain

import "context"

// SinkPort persists flagged rows
type SinkPort interface {
	// InsertAlerts writes alerts; re-running a window is a no-op per keyword
	InsertAlerts(ctx context.Context, xs []Alert) error
}

// ReaderPort serves the alert read surface
type ReaderPort interface {
	// List returns alerts matching in, newest window first then highest score
	List(ctx context.Context, in ListInput) ([]Alert, error)
}

// DispatchPort drains pending alerts to the configured publisher
type DispatchPort interface {
	// DispatchOnce publishes one batch of pending alerts, returning rows marked
	DispatchOnce(ctx context.Context) (int, error)
}

// WorkerPort runs the dispatch loop
type WorkerPort interface {
	Run(ctx context.Context) error
}
