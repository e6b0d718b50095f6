// Package domain defines core types and interfaces for windowed counts
package domain

import "time"

// SeriesKey addresses one (channel, query, category) count series
type SeriesKey struct {
	Channel  string
	Query    string
	Category string
}

// CategoryRow is one (window, channel, query, category) aggregate
type CategoryRow struct {
	Window   time.Time
	Channel  string
	Query    string
	Category string
	N        int64
}

// KeywordRow is one keyword drill-down aggregate under a category
type KeywordRow struct {
	Window   time.Time
	Channel  string
	Query    string
	Category string
	Keyword  string
	N        int64
}

// HistoryPoint is one prior window count for a series
type HistoryPoint struct {
	Window time.Time
	N      int64
}

// KeywordQuery filters the keyword drill-down listing
type KeywordQuery struct {
	Channel  string
	Query    string
	Category string
	Since    time.Time // inclusive
	Until    time.Time // exclusive
	Limit    int       // hard-capped in service
}

// KeywordAgg is one keyword total over the queried range
type KeywordAgg struct {
	Keyword string
	N       int64
}
