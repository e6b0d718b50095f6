// Package domain holds DTOs for the alerts HTTP and service contracts
package domain

// Query times are RFC3339 UTC; windows are bucket starts

// ListInput filters the alert listing
type ListInput struct {
	Since    string `json:"since,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00" example:"2025-08-25T00:00:00Z"`
	Until    string `json:"until,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00" example:"2025-08-26T00:00:00Z"`
	Channel  string `json:"channel,omitempty" validate:"omitempty,min=1,max=40" example:"x"`
	Query    string `json:"query,omitempty" validate:"omitempty,min=1,max=80" example:"avante"`
	Category string `json:"category,omitempty" validate:"omitempty,min=1,max=80" example:"brakes"`
	Limit    int    `json:"limit,omitempty" validate:"omitempty,min=1,max=500" example:"100"`
}

// AlertRow is one flagged keyword row with its metric snapshot
type AlertRow struct {
	ID       string `json:"id" example:"0d9c41a6-35f5-4d3a-9a6c-6d5b3e6f0a11"`
	Channel  string `json:"channel" example:"x"`
	Query    string `json:"query" example:"avante"`
	Category string `json:"category" example:"brakes"`

	Window     string `json:"window" example:"2025-08-25T10:30:00Z"`
	PrevWindow string `json:"prev_window,omitempty" example:"2025-08-25T10:00:00Z"`
	Count      int64  `json:"count" example:"42"`
	PrevCount  *int64 `json:"prev_count,omitempty" example:"17"`

	Keyword      string `json:"keyword" example:"squeal"`
	KeywordCount int64  `json:"keyword_count" example:"17"`

	ShortTermGrowth float64 `json:"short_term_growth" example:"25"`
	LongTermRatio   float64 `json:"long_term_ratio" example:"1.8"`
	RatioToTotal    float64 `json:"ratio_to_total" example:"0.4"`
	Score           float64 `json:"score" example:"12.4"`

	DispatchedAt string `json:"dispatched_at,omitempty" example:"2025-08-25T10:33:02Z"`
	CreatedAt    string `json:"created_at" example:"2025-08-25T10:32:58Z"`
}
