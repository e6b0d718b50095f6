// Package module implements the transform module
package module

import (
	"net/http"

	"buzzwatch/internal/modkit"
	"buzzwatch/internal/modkit/httpkit"
	"buzzwatch/internal/services/transform/domain"
	"buzzwatch/internal/services/transform/repo"
	"buzzwatch/internal/services/transform/service"
)

// Ports exposed by the transform module
type Ports struct {
	Runner domain.RunnerPort
	Runs   domain.ReaderPort
}

// Module implements modkit.Module
type Module struct {
	deps  modkit.Deps
	ports Ports
	svc   *service.Service
}

// New constructs the transform module. The engine writes through sibling
// module ports, so callers must pass WithPorts(transform/domain.Ports)
func New(deps modkit.Deps, overrides Options, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("transform"),
	}, opts...)...)

	ports, ok := b.Ports.(domain.Ports)
	if !ok {
		panic("transform module: expected WithPorts(transform/domain.Ports)")
	}
	if ports.Posts == nil || ports.History == nil || ports.Counts == nil ||
		ports.Metrics == nil || ports.Alerts == nil {
		panic("transform module: Ports missing a sibling port")
	}

	cfg := FromConfig(deps.Cfg)
	if overrides.Workers != 0 {
		cfg.Workers = overrides.Workers
	}
	if overrides.PageSize != 0 {
		cfg.PageSize = overrides.PageSize
	}
	cfg.DryRun = cfg.DryRun || overrides.DryRun

	svc := service.New(deps.PG, repo.NewPG(), ports, cfg)

	m := &Module{deps: deps, svc: svc}
	m.ports = Ports{Runner: svc, Runs: svc}
	return m
}

// Watcher builds the boundary scheduler bound to this module's runner
func (m *Module) Watcher() *service.Watcher {
	return service.NewWatcher(m.ports.Runner, WatchFromConfig(m.deps.Cfg, m.svc.Cfg.Window))
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "transform" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// Prefix satisfies modkit.Module
func (m *Module) Prefix() string { return "" }

// Middlewares satisfies modkit.Module
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return nil }

// MountRoutes satisfies modkit.Module; the engine has no HTTP surface
func (m *Module) MountRoutes(_ httpkit.Router) {}
