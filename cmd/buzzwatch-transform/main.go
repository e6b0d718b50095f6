package main

import (
	"context"
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"buzzwatch/internal/modkit"
	"buzzwatch/internal/modkit/module"
	"buzzwatch/internal/platform/config"
	"buzzwatch/internal/platform/logger"
	"buzzwatch/internal/platform/store"

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

// parseStamp accepts minute or hour resolution, always UTC
func parseStamp(l *logger.Logger, label, v string) time.Time {
	for _, layout := range []string{"2006-01-02T15:04", "2006-01-02T15"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC()
		}
	}
	l.Panic().Str(label, v).Msg("bad window stamp (want YYYY-MM-DDTHH:MM)")
	return time.Time{}
}

func main() {
	_ = godotenv.Load()

	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")

	l := logger.Get()
	st, err := store.Open(context.Background(), store.Config{
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", true),
		},
		CH: store.CHConfig{
			Enabled:    true,
			URL:        chCfg.MustString("DBURL"),
			LogSQL:     chCfg.MayBool("LOG_SQL", true),
			ClientName: "buzzwatch",
			ClientTag:  "transform",
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
		fWindow  = flag.String("window", "", "one UTC window start YYYY-MM-DDTHH:MM")
		fStart   = flag.String("start", "", "UTC range start YYYY-MM-DDTHH:MM (inclusive)")
		fEnd     = flag.String("end", "", "UTC range end YYYY-MM-DDTHH:MM (exclusive)")
		fResume  = flag.Bool("resume", false, "drain windows that have posts but no finished pass")
		fDryRun  = flag.Bool("dry-run", false, "compute but do not write")
		fWorkers = flag.Int("workers", 0, "partition worker count (0 = config)")
		fPage    = flag.Int("page", 0, "post page size (0 = config)")
	)
	flag.Parse()

	// Validate flag combos
	if *fResume && (*fWindow != "" || *fStart != "" || *fEnd != "") {
		l.Panic().Msg("-resume is exclusive with -window and -start/-end")
	}
	if *fWindow != "" && (*fStart != "" || *fEnd != "") {
		l.Panic().Msg("-window is exclusive with -start/-end")
	}
	if !*fResume && *fWindow == "" && (*fStart == "" || *fEnd == "") {
		l.Panic().Msg("must provide -window, or -start and -end, or -resume")
	}

	var window, start, end time.Time
	if *fWindow != "" {
		window = parseStamp(l, "window", *fWindow)
	}
	if *fStart != "" {
		start = parseStamp(l, "start", *fStart)
	}
	if *fEnd != "" {
		end = parseStamp(l, "end", *fEnd)
		if !start.Before(end) {
			l.Panic().Str("start", start.String()).Str("end", end.String()).Msg("-end must be after -start")
		}
	}

	// Surface CLI overrides to modules that read FromConfig
	if *fWorkers > 0 {
		mustSetEnv("CORE_TRANSFORM_WORKERS", strconv.Itoa(*fWorkers))
	}
	if *fPage > 0 {
		mustSetEnv("CORE_TRANSFORM_PAGE_SIZE", strconv.Itoa(*fPage))
	}
	mustSetEnv("CORE_TRANSFORM_DRY_RUN", map[bool]string{true: "1", false: "0"}[*fDryRun])

	// Shared deps for modules
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
		transformmod.Options{Workers: *fWorkers, PageSize: *fPage, DryRun: *fDryRun},
		modkit.WithPorts(transformdom.Ports{
			Posts:   module.MustPortsOf[postsmod.Ports](posts).Reader,
			History: cports.History,
			Counts:  cports.Append,
			Metrics: module.MustPortsOf[metricsmod.Ports](mets).Writer,
			Alerts:  module.MustPortsOf[alertsmod.Ports](als).Sink,
		}),
	)

	// Register ports
	module.Register(posts.Name(), posts.Ports())
	module.Register(counts.Name(), counts.Ports())
	module.Register(mets.Name(), mets.Ports())
	module.Register(als.Name(), als.Ports())
	module.Register(tm.Name(), tm.Ports())

	ports := module.MustPortsOf[transformmod.Ports](tm)
	ctx := context.Background()

	// The engine logs per-pass summaries itself
	switch {
	case *fResume:
		if _, err := ports.Runner.RunResume(ctx); err != nil {
			l.Fatal().Err(err).Msg("transform resume failed")
		}
	case *fWindow != "":
		if _, err := ports.Runner.RunWindow(ctx, window); err != nil {
			l.Fatal().Err(err).Msg("transform window failed")
		}
	default:
		if _, err := ports.Runner.RunRange(ctx, start, end); err != nil {
			l.Fatal().Err(err).Msg("transform range failed")
		}
	}
}
