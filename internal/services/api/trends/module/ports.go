package module

import (
	"context"

	"buzzwatch/internal/services/api/trends/domain"
	tsvc "buzzwatch/internal/services/api/trends/service"
)

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

type adaptTrendsPort struct{ svc tsvc.Service }

// Metrics lists scored records matching the filters
func (a adaptTrendsPort) Metrics(ctx context.Context, in domain.MetricsInput) ([]domain.MetricRow, error) {
	return a.svc.Metrics(ctx, in)
}

// Summary returns the latest record per series
func (a adaptTrendsPort) Summary(ctx context.Context, in domain.SummaryInput) ([]domain.MetricRow, error) {
	return a.svc.Summary(ctx, in)
}

// Keywords returns keyword totals under a category
func (a adaptTrendsPort) Keywords(ctx context.Context, in domain.KeywordsInput) ([]domain.KeywordRow, error) {
	return a.svc.Keywords(ctx, in)
}
