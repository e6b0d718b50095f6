package domain

import "context"

// ReaderPort defines the read interface for posts
type ReaderPort interface {
	// ListWindow returns up to Limit rows for one window ordered by (collected_time, id)
	ListWindow(ctx context.Context, in ListInput) (rows []Post, next AfterKey, err error)
}

// WriterPort defines the write interface for posts
type WriterPort interface {
	// InsertBatch writes posts, deduplicating on (channel, query, window_time, text_hash)
	InsertBatch(ctx context.Context, posts []Post) (InsertStats, error)
}
