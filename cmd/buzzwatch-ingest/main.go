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

	ingestdom "buzzwatch/internal/services/ingest/domain"
	ingestmod "buzzwatch/internal/services/ingest/module"
	postsmod "buzzwatch/internal/services/posts/module"
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

	l := logger.Get()
	st, err := store.Open(context.Background(), store.Config{
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
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
		fWindow = flag.String("window", "", "one UTC window start YYYY-MM-DDTHH:MM")
		fStart  = flag.String("start", "", "UTC range start YYYY-MM-DDTHH:MM (inclusive)")
		fEnd    = flag.String("end", "", "UTC range end YYYY-MM-DDTHH:MM (exclusive)")
		fBase   = flag.String("base", "", "collector drop: local dir or http(s) base URL")
		fFeeds  = flag.String("feeds", "", "comma-separated channel:query pairs")
		fChunk  = flag.Int("chunk", 0, "insert chunk size (0 = config)")
	)
	flag.Parse()

	if *fWindow != "" && (*fStart != "" || *fEnd != "") {
		l.Panic().Msg("-window is exclusive with -start/-end")
	}
	if *fWindow == "" && (*fStart == "" || *fEnd == "") {
		l.Panic().Msg("must provide -window, or -start and -end")
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

	// Surface CLI overrides to the module's FromConfig reader
	mustSetEnv("CORE_INGEST_BASE", *fBase)
	mustSetEnv("CORE_INGEST_FEEDS", *fFeeds)
	if *fChunk > 0 {
		mustSetEnv("CORE_INGEST_CHUNK_SIZE", strconv.Itoa(*fChunk))
	}

	deps := modkit.Deps{
		Cfg: root,
		PG:  st.PG,
		Log: *l,
	}

	posts := postsmod.New(deps)
	ing := ingestmod.New(deps, modkit.WithPorts(ingestdom.Ports{
		Posts: module.MustPortsOf[postsmod.Ports](posts).Writer,
	}))

	module.Register(posts.Name(), posts.Ports())
	module.Register(ing.Name(), ing.Ports())

	ports := module.MustPortsOf[ingestmod.Ports](ing)
	ctx := context.Background()

	var sum ingestdom.Summary
	if *fWindow != "" {
		sum, err = ports.Runner.RunWindow(ctx, window)
	} else {
		sum, err = ports.Runner.RunRange(ctx, start, end)
	}
	if err != nil {
		l.Fatal().Err(err).Msg("ingest failed")
	}
	l.Info().Int("batches", sum.Batches).Int("missing", sum.Missing).
		Int("rows", sum.Rows).Int("skipped", sum.Skipped).
		Int("inserted", sum.Inserted).Int("deduped", sum.Deduped).
		Msg("ingest finished")
}
