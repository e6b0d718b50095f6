package module

import (
	"context"

	"buzzwatch/internal/services/api/alerts/domain"
	asvc "buzzwatch/internal/services/api/alerts/service"
)

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

type adaptAlertsPort struct{ svc asvc.Service }

// List returns alerts matching the filters
func (a adaptAlertsPort) List(ctx context.Context, in domain.ListInput) ([]domain.AlertRow, error) {
	return a.svc.List(ctx, in)
}
