// Package http provides meta endpoints
package http

import (
	stdctx "context"
	"net/http"
	"time"

	"buzzwatch/internal/core/version"
	"buzzwatch/internal/core/wordbag"
	"buzzwatch/internal/modkit/httpkit"
)

// Pinger is satisfied by adapters that expose Ping
type Pinger interface {
	Ping(stdctx.Context) error
}

// Deps are the handler dependencies
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	PG          any
	CH          any
	WordbagPath string
}

type handlers struct {
	deps Deps
}

// Register mounts the meta routes
func Register(r httpkit.Router, d Deps) {
	h := &handlers{deps: d}

	// mount routes
	httpkit.Get(r, "/health", h.health)
	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/version", h.version)
	httpkit.Get(r, "/service", h.service)
	httpkit.Get(r, "/wordbag", h.wordbag)
}

//
// Swagger DTOs and route docs
//

// HealthResponse is the health payload
// swagger:model
type HealthResponse struct {
	OK      bool   `json:"ok"       example:"true"`
	Service string `json:"service"  example:"buzzwatch-api"`
	Started string `json:"started"  example:"2025-08-25T13:00:00Z"`
	Now     string `json:"now"      example:"2025-08-25T13:05:00Z"`
}

// ReadyCheck describes a single dependency check
type ReadyCheck struct {
	Name   string `json:"name"   example:"pg"`
	Status string `json:"status" example:"ok"` // ok fail skipped unknown
	Error  string `json:"error,omitempty" example:"dial tcp 127.0.0.1:5432 connect: connection refused"`
}

// ReadyResponse summarizes readiness
type ReadyResponse struct {
	Status string       `json:"status" example:"ok"` // ok degraded fail
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"    example:"2025-08-25T13:05:00Z"`
}

// ServiceResponse describes service info
type ServiceResponse struct {
	Name    string `json:"name"    example:"buzzwatch-api"`
	Started string `json:"started" example:"2025-08-25T13:00:00Z"`
	Uptime  int64  `json:"uptime"  example:"300"`
}

// WordbagCategory is one category with its keyword count
type WordbagCategory struct {
	Category string `json:"category" example:"brakes"`
	Keywords int    `json:"keywords" example:"14"`
}

// WordbagResponse reports the compiled dictionary shape
type WordbagResponse struct {
	Source     string            `json:"source" example:"embedded"`
	Categories []WordbagCategory `json:"categories"`
	Pairs      int               `json:"pairs" example:"312"`
}

// swagger:route GET /meta/health Meta metaHealth
// @Summary Health check
// @Tags Meta
// @Produce json
// @Success 200 type HealthResponse "ok"
// @Router /meta/health [get]
func (h *handlers) health(_ *http.Request) (any, error) {
	return HealthResponse{
		OK:      true,
		Service: h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Now:     time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// swagger:route GET /meta/ready Meta metaReady
// @Summary Readiness probe with dependency checks
// @Tags Meta
// @Produce json
// @Success 200 type ReadyResponse ok
// @Router /meta/ready [get]
func (h *handlers) ready(_ *http.Request) (any, error) {
	ctx, cancel := stdctx.WithTimeout(stdctx.Background(), 2*time.Second)
	defer cancel()

	check := func(name string, c any) ReadyCheck {
		if c == nil {
			return ReadyCheck{Name: name, Status: "skipped"}
		}
		if p, ok := c.(Pinger); ok {
			if err := p.Ping(ctx); err != nil {
				return ReadyCheck{Name: name, Status: "fail", Error: err.Error()}
			}
			return ReadyCheck{Name: name, Status: "ok"}
		}
		return ReadyCheck{Name: name, Status: "unknown"}
	}

	pg := check("pg", h.deps.PG)
	ch := check("ch", h.deps.CH)

	overall := "ok"
	if pg.Status != "ok" || ch.Status != "ok" {
		overall = "degraded"
		if pg.Status == "fail" || ch.Status == "fail" {
			overall = "fail"
		}
	}

	return ReadyResponse{
		Status: overall,
		Checks: []ReadyCheck{pg, ch},
		Now:    time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// swagger:route GET /meta/version Meta metaVersion
// @Summary Build and version info
// @Tags Meta
// @Produce json
// @Success 200 type version.BuildInfo ok
// @Router /meta/version [get]
func (h *handlers) version(_ *http.Request) (any, error) {
	return version.Info(), nil
}

// swagger:route GET /meta/service Meta metaService
// @Summary Service info and uptime
// @Tags Meta
// @Produce json
// @Success 200 type ServiceResponse ok
// @Router /meta/service [get]
func (h *handlers) service(_ *http.Request) (any, error) {
	uptime := time.Since(h.deps.StartedAt)
	return ServiceResponse{
		Name:    h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Uptime:  int64(uptime / time.Second),
	}, nil
}

// swagger:route GET /meta/wordbag Meta metaWordbag
// @Summary Compiled dictionary categories and sizes
// @Tags Meta
// @Produce json
// @Success 200 type WordbagResponse ok
// @Router /meta/wordbag [get]
func (h *handlers) wordbag(_ *http.Request) (any, error) {
	source := "embedded"
	var bag *wordbag.Bag
	var err error
	if h.deps.WordbagPath != "" {
		source = h.deps.WordbagPath
		bag, err = wordbag.LoadFile(h.deps.WordbagPath)
	} else {
		bag, err = wordbag.Load()
	}
	if err != nil {
		return nil, err
	}

	cats := bag.Categories()
	out := WordbagResponse{
		Source:     source,
		Categories: make([]WordbagCategory, 0, len(cats)),
		Pairs:      bag.Pairs(),
	}
	for _, c := range cats {
		out.Categories = append(out.Categories, WordbagCategory{
			Category: c,
			Keywords: len(bag.Keywords(c)),
		})
	}
	return out, nil
}
