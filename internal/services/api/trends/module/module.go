// Package module wires trends into the API using modkit
package module

import (
	"net/http"

	modkit "buzzwatch/internal/modkit"
	"buzzwatch/internal/modkit/httpkit"
	str "buzzwatch/internal/platform/strings"
	thttp "buzzwatch/internal/services/api/trends/http"
	tsvc "buzzwatch/internal/services/api/trends/service"
	countdom "buzzwatch/internal/services/counts/domain"
	metricdom "buzzwatch/internal/services/metrics/domain"
)

// Ports declares the injected worker read ports for this API module
type Ports struct {
	Metrics  metricdom.ReaderPort
	Keywords countdom.KeywordReaderPort
}

// Module implements the trends API module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws       []func(http.Handler) http.Handler
	ports     any
	swaggerOn bool

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc tsvc.Service
}

// New constructs the trends module
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("trends"),
		modkit.WithPrefix("/trends"),
	}, opts...)...)

	var injected Ports
	if p, ok := b.Ports.(Ports); ok {
		injected = p
	}
	if injected.Metrics == nil || injected.Keywords == nil {
		panic("trends API module requires Metrics and Keywords ports (from services/metrics, services/counts)")
	}

	svc := tsvc.New(injected.Metrics, injected.Keywords)

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		swaggerOn: b.SwaggerOn,
		subrouter: b.Subrouter,
		svc:       svc,
	}
	m.ports = adaptTrendsPort{svc: svc}

	external := b.Register
	m.register = func(r httpkit.Router) {
		thttp.Register(r, m.svc)
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
