// Package domain defines core types and interfaces for trend metric records
package domain

import "time"

// Record is one scored metric row for a (channel, query, category) series window
type Record struct {
	Channel  string
	Query    string
	Category string
	CurTime  time.Time
	PrevTime *time.Time

	CurCount  int64
	PrevCount *int64

	ShortTermGrowth float64
	LongTermRatio   float64
	Volatility      float64
	StreakGrowth    int
	StreakDuration  int
	RatioToTotal    float64
	Acceleration    float64
	Score           float64

	// Degraded marks a record scored cold after a history-store failure
	Degraded bool
}

// ListInput filters the metric listing
type ListInput struct {
	Channel  string
	Query    string
	Category string
	Since    time.Time // inclusive; zero = unbounded
	Until    time.Time // exclusive; zero = unbounded
	MinScore *float64
	Limit    int // hard-capped in service
}
