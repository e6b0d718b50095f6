package domain

import (
	"context"
	"time"
)

// AppendPort writes aggregated counts for a processed window
type AppendPort interface {
	// AppendCategoryCounts writes category rows; re-running a window is a no-op
	AppendCategoryCounts(ctx context.Context, rows []CategoryRow) error
	// AppendKeywordCounts writes keyword rows to the analytical store
	AppendKeywordCounts(ctx context.Context, rows []KeywordRow) error
}

// HistoryPort reads prior window counts for the metric engine
type HistoryPort interface {
	// History returns up to limit points strictly before the given window, oldest first
	History(ctx context.Context, key SeriesKey, before time.Time, limit int) ([]HistoryPoint, error)
}

// KeywordReaderPort serves keyword drill-downs from the analytical store
type KeywordReaderPort interface {
	// TopKeywords returns keyword totals over the queried range, largest first
	TopKeywords(ctx context.Context, q KeywordQuery) ([]KeywordAgg, error)
}
