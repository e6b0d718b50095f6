// Package module provides the ingest module
package module

import (
	"net/http"

	"buzzwatch/internal/modkit"
	"buzzwatch/internal/modkit/httpkit"
	"buzzwatch/internal/services/ingest/domain"
	"buzzwatch/internal/services/ingest/service"
	"buzzwatch/internal/services/ingest/source"
)

// Ports exposed by the ingest module
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements modkit.Module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the ingest module
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("ingest"),
	}, opts...)...)

	ports, ok := b.Ports.(domain.Ports)
	if !ok {
		panic("ingest module: expected WithPorts(ingest/domain.Ports)")
	}
	if ports.Posts == nil {
		panic("ingest module: Ports missing Posts")
	}

	cfg := FromConfig(deps.Cfg)

	svc := service.New(ports.Posts, source.NewFetcher(deps), service.Config{
		Feeds:        cfg.Feeds,
		Window:       cfg.Window,
		ChunkSize:    cfg.ChunkSize,
		FetchTimeout: cfg.FetchTimeout,
	})

	m := &Module{deps: deps}
	m.ports = Ports{Runner: svc}
	return m
}

// Name implements modkit.Module
func (m *Module) Name() string { return "ingest" }

// Ports implements modkit.Module
func (m *Module) Ports() any { return m.ports }

// Prefix implements modkit.Module
func (m *Module) Prefix() string { return "" }

// Middlewares implements modkit.Module
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return nil }

// MountRoutes implements modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {}
