// Package domain defines core types and interfaces for alerts
package domain

import "time"

// Alert is one flagged (series, window, keyword) row with its metric snapshot
type Alert struct {
	ID       string // uuid
	Channel  string
	Query    string
	Category string
	CurTime  time.Time
	PrevTime *time.Time

	CurCount  int64
	PrevCount *int64

	Keyword      string
	KeywordCount int64

	ShortTermGrowth float64
	LongTermRatio   float64
	RatioToTotal    float64
	Score           float64

	DispatchedAt *time.Time
	CreatedAt    time.Time
}

// Group is one dispatch unit: every keyword row of a flagged series window
type Group struct {
	Channel  string
	Query    string
	Category string
	CurTime  time.Time
	Alerts   []Alert
}

// ListInput filters the alert listing
type ListInput struct {
	Channel  string
	Query    string
	Category string
	Since    time.Time // inclusive; zero = unbounded
	Until    time.Time // exclusive; zero = unbounded
	Limit    int       // hard-capped in service
}
