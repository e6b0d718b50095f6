// Package api provides the HTTP API for the application
package api

import (
	"buzzwatch/internal/platform/config"
	"buzzwatch/internal/platform/logger"
	phttp "buzzwatch/internal/platform/net/http"
	"buzzwatch/internal/platform/store"

	"buzzwatch/internal/modkit"
	"buzzwatch/internal/modkit/httpkit"
	"buzzwatch/internal/modkit/module"
	"buzzwatch/internal/modkit/swaggerkit"

	apialerts "buzzwatch/internal/services/api/alerts/module"
	metamod "buzzwatch/internal/services/api/meta/module"
	runsmod "buzzwatch/internal/services/api/runs/module"
	trendsmod "buzzwatch/internal/services/api/trends/module"

	// Worker modules that own the read ports the API serves from
	alertsmod "buzzwatch/internal/services/alerts/module"
	countsmod "buzzwatch/internal/services/counts/module"
	metricsmod "buzzwatch/internal/services/metrics/module"
	postsmod "buzzwatch/internal/services/posts/module"
	transformdom "buzzwatch/internal/services/transform/domain"
	transformmod "buzzwatch/internal/services/transform/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	// shared deps for modules
	deps := modkit.Deps{
		Cfg: opt.Config,
		PG:  opt.Store.PG,
		CH:  opt.Store.CH,
	}

	// Construct the worker modules first; the API modules serve from their
	// read ports
	posts := postsmod.New(deps)
	counts := countsmod.New(deps)
	metricsw := metricsmod.New(deps)
	alertsw := alertsmod.New(deps)

	cports := module.MustPortsOf[countsmod.Ports](counts)
	mports := module.MustPortsOf[metricsmod.Ports](metricsw)
	aports := module.MustPortsOf[alertsmod.Ports](alertsw)

	// The transform module wants the full sibling bundle even though the API
	// only reads its run history
	transform := transformmod.New(deps, transformmod.Options{}, modkit.WithPorts(transformdom.Ports{
		Posts:   module.MustPortsOf[postsmod.Ports](posts).Reader,
		History: cports.History,
		Counts:  cports.Append,
		Metrics: mports.Writer,
		Alerts:  aports.Sink,
	}))

	mods := []module.Module{
		metamod.New(deps),
		trendsmod.New(deps, modkit.WithPorts(trendsmod.Ports{
			Metrics:  mports.Reader,
			Keywords: cports.Keywords,
		})),
		apialerts.New(deps, modkit.WithPorts(apialerts.Ports{
			Reader: aports.Reader,
		})),
		runsmod.New(deps, modkit.WithPorts(runsmod.Ports{
			Runs: module.MustPortsOf[transformmod.Ports](transform).Runs,
		})),
	}

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		// Swagger + profiler
		swaggerkit.Mount(r, opt.EnableSwagger)
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

		for _, m := range mods {
			// register each module's ports under its own name (for cross-module lookups)
			module.Register(m.Name(), m.Ports())

			// mount module routes under its Prefix()
			m.MountRoutes(api)
		}
	})
}
