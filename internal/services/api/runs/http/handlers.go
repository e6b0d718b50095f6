// Package http provides http transport for the run history
package http

import (
	stdhttp "net/http"

	"buzzwatch/internal/modkit/httpkit"
	"buzzwatch/internal/services/api/runs/domain"
	svc "buzzwatch/internal/services/api/runs/service"
)

// Register mounts run endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}

	httpkit.PostJSON[domain.ListInput](r, "/list", h.list)
}

type handlers struct{ svc svc.Service }

// swagger:route POST /runs/list Runs runsList
// @Summary Window pass history
// @Tags Runs
// @Accept json
// @Produce json
// @Param payload body domain.ListInput true "Query"
// @Success 200 {array} domain.RunRow "ok"
// @Router /runs/list [post]
func (h *handlers) list(r *stdhttp.Request, in domain.ListInput) (any, error) {
	return h.svc.List(r.Context(), in)
}
