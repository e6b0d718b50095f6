// Package http provides http transport for the alerts listing
package http

import (
	stdhttp "net/http"

	"buzzwatch/internal/modkit/httpkit"
	"buzzwatch/internal/services/api/alerts/domain"
	svc "buzzwatch/internal/services/api/alerts/service"
)

// Register mounts alert endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}

	httpkit.PostJSON[domain.ListInput](r, "/list", h.list)
}

type handlers struct{ svc svc.Service }

// swagger:route POST /alerts/list Alerts alertsList
// @Summary Recent alerts with keyword snapshots
// @Tags Alerts
// @Accept json
// @Produce json
// @Param payload body domain.ListInput true "Query"
// @Success 200 {array} domain.AlertRow "ok"
// @Router /alerts/list [post]
func (h *handlers) list(r *stdhttp.Request, in domain.ListInput) (any, error) {
	return h.svc.List(r.Context(), in)
}
