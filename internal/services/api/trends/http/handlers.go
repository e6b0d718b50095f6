// Package http provides http transport for trends
package http

import (
	stdhttp "net/http"

	"buzzwatch/internal/modkit/httpkit"
	"buzzwatch/internal/services/api/trends/domain"
	svc "buzzwatch/internal/services/api/trends/service"
)

// Register mounts trend endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}

	// scored records over a range
	httpkit.PostJSON[domain.MetricsInput](r, "/metrics", h.metrics)

	// latest record per series
	httpkit.PostJSON[domain.SummaryInput](r, "/summary", h.summary)

	// keyword drill-down under a category
	httpkit.PostJSON[domain.KeywordsInput](r, "/keywords", h.keywords)
}

type handlers struct{ svc svc.Service }

// swagger:route POST /trends/metrics Trends trendsMetrics
// @Summary Scored metric records
// @Tags Trends
// @Accept json
// @Produce json
// @Param payload body domain.MetricsInput true "Query"
// @Success 200 {array} domain.MetricRow "ok"
// @Router /trends/metrics [post]
func (h *handlers) metrics(r *stdhttp.Request, in domain.MetricsInput) (any, error) {
	return h.svc.Metrics(r.Context(), in)
}

// swagger:route POST /trends/summary Trends trendsSummary
// @Summary Latest record per series
// @Tags Trends
// @Accept json
// @Produce json
// @Param payload body domain.SummaryInput true "Query"
// @Success 200 {array} domain.MetricRow "ok"
// @Router /trends/summary [post]
func (h *handlers) summary(r *stdhttp.Request, in domain.SummaryInput) (any, error) {
	return h.svc.Summary(r.Context(), in)
}

// swagger:route POST /trends/keywords Trends trendsKeywords
// @Summary Keyword totals under a category
// @Tags Trends
// @Accept json
// @Produce json
// @Param payload body domain.KeywordsInput true "Query"
// @Success 200 {array} domain.KeywordRow "ok"
// @Router /trends/keywords [post]
func (h *handlers) keywords(r *stdhttp.Request, in domain.KeywordsInput) (any, error) {
	return h.svc.Keywords(r.Context(), in)
}
