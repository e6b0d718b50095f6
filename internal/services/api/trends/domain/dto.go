// Package domain holds DTOs for the trends HTTP and service contracts
package domain

// Query times are RFC3339 UTC; windows are bucket starts

// RangeOpts bounds a query window; both ends optional, until exclusive
type RangeOpts struct {
	Since string `json:"since,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00" example:"2025-08-25T00:00:00Z"`
	Until string `json:"until,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00" example:"2025-08-26T00:00:00Z"`
}

// MetricsInput filters the scored record listing
type MetricsInput struct {
	Range    RangeOpts `json:"range,omitempty"`
	Channel  string    `json:"channel,omitempty" validate:"omitempty,min=1,max=40" example:"x"`
	Query    string    `json:"query,omitempty" validate:"omitempty,min=1,max=80" example:"avante"`
	Category string    `json:"category,omitempty" validate:"omitempty,min=1,max=80" example:"brakes"`
	MinScore *float64  `json:"min_score,omitempty" example:"2.0"`
	Limit    int       `json:"limit,omitempty" validate:"omitempty,min=1,max=500" example:"100"`
}

// MetricRow is one scored record
type MetricRow struct {
	Channel  string `json:"channel" example:"x"`
	Query    string `json:"query" example:"avante"`
	Category string `json:"category" example:"brakes"`

	Window     string `json:"window" example:"2025-08-25T10:30:00Z"`
	PrevWindow string `json:"prev_window,omitempty" example:"2025-08-25T10:00:00Z"`
	Count      int64  `json:"count" example:"42"`
	PrevCount  *int64 `json:"prev_count,omitempty" example:"17"`

	ShortTermGrowth float64 `json:"short_term_growth" example:"25"`
	LongTermRatio   float64 `json:"long_term_ratio" example:"1.8"`
	Volatility      float64 `json:"volatility" example:"3.2"`
	StreakGrowth    int     `json:"streak_growth" example:"2"`
	StreakDuration  int     `json:"streak_duration" example:"3"`
	RatioToTotal    float64 `json:"ratio_to_total" example:"0.4"`
	Acceleration    float64 `json:"acceleration" example:"8"`
	Score           float64 `json:"score" example:"12.4"`
	Degraded        bool    `json:"degraded,omitempty" example:"false"`
}

// SummaryInput scopes the latest-record summary
type SummaryInput struct {
	Channel string `json:"channel,omitempty" validate:"omitempty,min=1,max=40" example:"x"`
	Query   string `json:"query,omitempty" validate:"omitempty,min=1,max=80" example:"avante"`
}

// KeywordsInput filters the keyword drill-down under one category
type KeywordsInput struct {
	Range    RangeOpts `json:"range,omitempty"`
	Channel  string    `json:"channel,omitempty" validate:"omitempty,min=1,max=40" example:"x"`
	Query    string    `json:"query,omitempty" validate:"omitempty,min=1,max=80" example:"avante"`
	Category string    `json:"category" validate:"required,min=1,max=80" example:"brakes"`
	Limit    int       `json:"limit,omitempty" validate:"omitempty,min=1,max=200" example:"20"`
}

// KeywordRow is one keyword total over the queried range, largest first
type KeywordRow struct {
	Keyword string `json:"keyword" example:"squeal"`
	Count   int64  `json:"count" example:"17"`
}
