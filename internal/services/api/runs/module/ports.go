package module

import (
	"context"

	"buzzwatch/internal/services/api/runs/domain"
	rsvc "buzzwatch/internal/services/api/runs/service"
)

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

type adaptRunsPort struct{ svc rsvc.Service }

// List returns run records matching the filters
func (a adaptRunsPort) List(ctx context.Context, in domain.ListInput) ([]domain.RunRow, error) {
	return a.svc.List(ctx, in)
}
