// Package module wires the run history into the API using modkit
package module

import (
	"net/http"

	modkit "buzzwatch/internal/modkit"
	"buzzwatch/internal/modkit/httpkit"
	str "buzzwatch/internal/platform/strings"
	rhttp "buzzwatch/internal/services/api/runs/http"
	rsvc "buzzwatch/internal/services/api/runs/service"
	tdom "buzzwatch/internal/services/transform/domain"
)

// Ports declares the injected worker read port for this API module
type Ports struct {
	Runs tdom.ReaderPort
}

// Module implements the runs API module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws       []func(http.Handler) http.Handler
	ports     any
	swaggerOn bool

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc rsvc.Service
}

// New constructs the runs API module
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("runs"),
		modkit.WithPrefix("/runs"),
	}, opts...)...)

	var injected Ports
	if p, ok := b.Ports.(Ports); ok {
		injected = p
	}
	if injected.Runs == nil {
		panic("runs API module requires the Runs port (from services/transform)")
	}

	svc := rsvc.New(injected.Runs)

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		swaggerOn: b.SwaggerOn,
		subrouter: b.Subrouter,
		svc:       svc,
	}
	m.ports = adaptRunsPort{svc: svc}

	external := b.Register
	m.register = func(r httpkit.Router) {
		rhttp.Register(r, m.svc)
		if external != nil {
			external(r)
		}
	}
	return m
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		if m.subrouter != nil {
			rr = m.subrouter(rr)
		}
		if m.register != nil {
			m.register(rr)
		}
	})
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.name, "module name") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Middlewares returns the module middlewares
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return m.mws }
