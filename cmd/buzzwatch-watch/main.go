package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"buzzwatch/internal/modkit"
	"buzzwatch/internal/modkit/module"
	"buzzwatch/internal/platform/config"
	"buzzwatch/internal/platform/logger"
	"buzzwatch/internal/platform/metrics"
	phttp "buzzwatch/internal/platform/net/http"
	"buzzwatch/internal/platform/store"
	"buzzwatch/migrations"

	alertsmod "buzzwatch/internal/services/alerts/module"
	countsmod "buzzwatch/internal/services/counts/module"
	metricsmod "buzzwatch/internal/services/metrics/module"
	postsmod "buzzwatch/internal/services/posts/module"
	transformdom "buzzwatch/internal/services/transform/domain"
	transformmod "buzzwatch/internal/services/transform/module"
)

func mustSetEnv(key, val string) {
	if val != "" {
		_ = os.Setenv(key, val)
	}
}

// ready pings both stores with a short deadline
func ready(st *store.Store) http.HandlerFunc {
	type pinger interface{ Ping(context.Context) error }
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		for _, c := range []any{st.PG, st.CH} {
			p, ok := c.(pinger)
			if !ok {
				continue
			}
			if err := p.Ping(ctx); err != nil {
				http.Error(w, "unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		_, _ = w.Write([]byte("ok"))
	}
}

func main() {
	_ = godotenv.Load()

	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")
	opsCfg := root.Prefix("CORE_WATCH_") // ops server reads CORE_WATCH_API_PORT

	l := logger.Get()
	st, err := store.Open(context.Background(), store.Config{
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
		},
		CH: store.CHConfig{
			Enabled:    true,
			URL:        chCfg.MustString("DBURL"),
			LogSQL:     chCfg.MayBool("LOG_SQL", false),
			ClientName: "buzzwatch",
			ClientTag:  "watch",
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	var (
		fSettle   = flag.Duration("settle", 2*time.Minute, "delay past the window boundary before the pass starts")
		fDeadline = flag.Duration("deadline", 0, "per-pass timeout (0 = one window length)")
		fResume   = flag.Bool("resume", true, "drain pending windows on startup")
		fWorkers  = flag.Int("workers", 0, "partition worker count (0 = config)")
		fPage     = flag.Int("page", 0, "post page size (0 = config)")
		fInit     = flag.Bool("init", false, "apply the storage DDL before starting")
	)
	flag.Parse()

	if *fInit {
		if err := migrations.Apply(context.Background(), st.PG, st.CH); err != nil {
			l.Panic().Err(err).Msg("schema apply failed")
		}
		l.Info().Msg("storage schema applied")
	}

	// Surface CLI overrides to modules that read FromConfig
	mustSetEnv("CORE_WATCH_SETTLE", fSettle.String())
	mustSetEnv("CORE_WATCH_DEADLINE", fDeadline.String())
	mustSetEnv("CORE_WATCH_RESUME", map[bool]string{true: "1", false: "0"}[*fResume])
	if *fWorkers > 0 {
		mustSetEnv("CORE_TRANSFORM_WORKERS", strconv.Itoa(*fWorkers))
	}
	if *fPage > 0 {
		mustSetEnv("CORE_TRANSFORM_PAGE_SIZE", strconv.Itoa(*fPage))
	}

	deps := modkit.Deps{
		Cfg: root,
		PG:  st.PG,
		CH:  st.CH,
		Log: *l,
	}

	// Sibling modules that own the engine's ports
	posts := postsmod.New(deps)
	counts := countsmod.New(deps)
	mets := metricsmod.New(deps)
	als := alertsmod.New(deps)

	cports := module.MustPortsOf[countsmod.Ports](counts)

	tm := transformmod.New(
		deps,
		transformmod.Options{Workers: *fWorkers, PageSize: *fPage},
		modkit.WithPorts(transformdom.Ports{
			Posts:   module.MustPortsOf[postsmod.Ports](posts).Reader,
			History: cports.History,
			Counts:  cports.Append,
			Metrics: module.MustPortsOf[metricsmod.Ports](mets).Writer,
			Alerts:  module.MustPortsOf[alertsmod.Ports](als).Sink,
		}),
	)

	module.Register(posts.Name(), posts.Ports())
	module.Register(counts.Name(), counts.Ports())
	module.Register(mets.Name(), mets.Ports())
	module.Register(als.Name(), als.Ports())
	module.Register(tm.Name(), tm.Ports())

	// Ops surface: liveness, store readiness, Prometheus scrape
	srv := phttp.NewServer(opsCfg, func(m *chi.Mux) {
		m.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("ok"))
		})
		m.Get("/readyz", ready(st))
		m.Method(http.MethodGet, "/metrics", metrics.Handler())
	})
	go func() {
		if err := srv.Run(context.Background()); err != nil {
			l.Fatal().Err(err).Msg("ops http stopped")
		}
	}()

	if err := tm.Watcher().Run(context.Background()); err != nil {
		l.Fatal().Err(err).Msg("watch loop stopped")
	}
}
