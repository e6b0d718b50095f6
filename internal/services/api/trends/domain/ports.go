package domain

import "context"

// ServicePort is consumed by handlers and other modules
type ServicePort interface {
	Metrics(ctx context.Context, in MetricsInput) ([]MetricRow, error)
	Summary(ctx context.Context, in SummaryInput) ([]MetricRow, error)
	Keywords(ctx context.Context, in KeywordsInput) ([]KeywordRow, error)
}
