// Package module provides the counts module
package module

import (
	"net/http"

	"buzzwatch/internal/modkit"
	"buzzwatch/internal/modkit/httpkit"
	"buzzwatch/internal/modkit/repokit"
	"buzzwatch/internal/services/counts/domain"
	"buzzwatch/internal/services/counts/repo"
	"buzzwatch/internal/services/counts/service"
)

// Ports exposed by the counts module
type Ports struct {
	Append   domain.AppendPort
	History  domain.HistoryPort
	Keywords domain.KeywordReaderPort
}

// Module implements modkit.Module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new counts module
func New(deps modkit.Deps) *Module {
	opts := FromConfig(deps.Cfg)

	binder := repo.NewHybrid(deps.CH)
	svc := service.New(repokit.TxRunner(deps.PG), binder, service.Config{
		HistoryLimit: opts.HistoryLimit,
		KeywordLimit: opts.KeywordLimit,
	})

	m := &Module{deps: deps}
	m.ports = Ports{Append: svc, History: svc, Keywords: svc}
	return m
}

// Name implements modkit.Module
func (m *Module) Name() string { return "counts" }

// Ports implements modkit.Module
func (m *Module) Ports() any { return m.ports }

// Prefix implements modkit.Module
func (m *Module) Prefix() string { return "" }

// Middlewares implements modkit.Module
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return nil }

// MountRoutes implements modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {}
