// Package domain holds DTOs for the runs HTTP and service contracts
package domain

// Query times are RFC3339 UTC; windows are bucket starts

// ListInput filters the run listing
type ListInput struct {
	Status string `json:"status,omitempty" validate:"omitempty,oneof=running ok failed partial" example:"ok"`
	Since  string `json:"since,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00" example:"2025-08-25T00:00:00Z"`
	Until  string `json:"until,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00" example:"2025-08-26T00:00:00Z"`
	Limit  int    `json:"limit,omitempty" validate:"omitempty,min=1,max=200" example:"50"`
}

// RunRow is one recorded window pass
type RunRow struct {
	ID           string `json:"id" example:"7c8d1a52-9f6e-4b0a-8a44-0f1d2c3b4a55"`
	Window       string `json:"window" example:"2025-08-25T10:30:00Z"`
	Status       string `json:"status" example:"ok"`
	StartedAt    string `json:"started_at" example:"2025-08-25T11:02:00Z"`
	FinishedAt   string `json:"finished_at,omitempty" example:"2025-08-25T11:02:09Z"`
	PostsRead    int64  `json:"posts_read" example:"1834"`
	PostsSkipped int64  `json:"posts_skipped" example:"12"`
	Categories   int64  `json:"categories" example:"41"`
	Alerts       int64  `json:"alerts" example:"3"`
	ElapsedMS    int64  `json:"elapsed_ms" example:"9120"`
	Error        string `json:"error,omitempty" example:"load wordbag: open /etc/wordbag.csv: no such file"`
}
