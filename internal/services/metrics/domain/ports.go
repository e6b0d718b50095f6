package domain

import "context"

// WriterPort persists scored records to the warehouse
type WriterPort interface {
	// InsertMetrics writes records; re-running a window is a no-op
	InsertMetrics(ctx context.Context, recs []Record) error
}

// ReaderPort serves the warehouse read surface
type ReaderPort interface {
	// List returns records matching in, newest window first then highest score
	List(ctx context.Context, in ListInput) ([]Record, error)
	// Summary returns the latest record per (channel, query, category) series
	Summary(ctx context.Context, channel, query string) ([]Record, error)
}
