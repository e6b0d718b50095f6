// Package module wires the alerts service and exposes its ports
package module

import (
	"net/http"

	"buzzwatch/internal/adapters/alertmq"
	"buzzwatch/internal/modkit"
	"buzzwatch/internal/modkit/httpkit"
	"buzzwatch/internal/modkit/repokit"
	"buzzwatch/internal/services/alerts/repo"
	"buzzwatch/internal/services/alerts/service"
)

// Module implements modkit.Module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the alerts module
func New(deps modkit.Deps) *Module {
	opts := FromConfig(deps.Cfg)

	newPub := func() (service.Publisher, error) { return service.LogPublisher{}, nil }
	if opts.BrokerURL != "" {
		url, queue := opts.BrokerURL, opts.Queue
		newPub = func() (service.Publisher, error) { return alertmq.Dial(url, queue) }
	}

	binder := repo.NewPG()
	svc := service.New(repokit.TxRunner(deps.PG), binder, service.Config{
		Batch:     opts.Batch,
		Interval:  opts.Interval,
		HardLimit: opts.HardLimit,
	}, newPub)

	m := &Module{deps: deps}
	m.ports = Ports{Sink: svc, Reader: svc, Dispatch: svc, Worker: svc}
	return m
}

// Name implements modkit.Module
func (m *Module) Name() string { return "alerts" }

// Ports implements modkit.Module
func (m *Module) Ports() any { return m.ports }

// Prefix implements modkit.Module
func (m *Module) Prefix() string { return "" }

// Middlewares implements modkit.Module
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return nil }

// MountRoutes implements modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {}
