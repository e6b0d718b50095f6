// Package module wires the alerts listing into the API using modkit
package module

import (
	"net/http"

	modkit "buzzwatch/internal/modkit"
	"buzzwatch/internal/modkit/httpkit"
	str "buzzwatch/internal/platform/strings"
	ahttp "buzzwatch/internal/services/api/alerts/http"
	asvc "buzzwatch/internal/services/api/alerts/service"
	alertdom "buzzwatch/internal/services/alerts/domain"
)

// Ports declares the injected worker read port for this API module
type Ports struct {
	Reader alertdom.ReaderPort
}

// Module implements the alerts API module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws       []func(http.Handler) http.Handler
	ports     any
	swaggerOn bool

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc asvc.Service
}

// New constructs the alerts API module
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("alerts"),
		modkit.WithPrefix("/alerts"),
	}, opts...)...)

	var injected Ports
	if p, ok := b.Ports.(Ports); ok {
		injected = p
	}
	if injected.Reader == nil {
		panic("alerts API module requires the Reader port (from services/alerts)")
	}

	svc := asvc.New(injected.Reader)

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		swaggerOn: b.SwaggerOn,
		subrouter: b.Subrouter,
		svc:       svc,
	}
	m.ports = adaptAlertsPort{svc: svc}

	external := b.Register
	m.register = func(r httpkit.Router) {
		ahttp.Register(r, m.svc)
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
