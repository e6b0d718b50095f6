package main

import (
	"context"
	"flag"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"buzzwatch/internal/modkit"
	"buzzwatch/internal/modkit/module"
	"buzzwatch/internal/platform/config"
	"buzzwatch/internal/platform/logger"
	"buzzwatch/internal/platform/store"

	alertsmod "buzzwatch/internal/services/alerts/module"
)

func mustSetEnv(key, val string) {
	if val != "" {
		_ = os.Setenv(key, val)
	}
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
		fOnce     = flag.Bool("once", false, "run a single drain pass and exit")
		fBroker   = flag.String("broker", "", "AMQP URL (empty = log payloads instead)")
		fQueue    = flag.String("queue", "", "AMQP queue name")
		fBatch    = flag.Int("batch", 0, "alerts leased per pass (0 = config)")
		fInterval = flag.Duration("interval", 0, "loop sleep between passes (0 = config)")
	)
	flag.Parse()

	// Surface CLI overrides to the module's FromConfig reader
	mustSetEnv("SERVICE_AMQP_URL", *fBroker)
	mustSetEnv("SERVICE_AMQP_QUEUE", *fQueue)
	if *fBatch > 0 {
		mustSetEnv("CORE_DISPATCH_BATCH", strconv.Itoa(*fBatch))
	}
	if *fInterval > 0 {
		mustSetEnv("CORE_DISPATCH_INTERVAL", fInterval.String())
	}

	deps := modkit.Deps{
		Cfg: root,
		PG:  st.PG,
		Log: *l,
	}

	mod := alertsmod.New(deps)
	module.Register(mod.Name(), mod.Ports())

	ports := module.MustPortsOf[alertsmod.Ports](mod)
	ctx := context.Background()

	if *fOnce {
		n, err := ports.Dispatch.DispatchOnce(ctx)
		if err != nil {
			l.Fatal().Err(err).Msg("dispatch pass failed")
		}
		l.Info().Int("alerts", n).Msg("dispatch pass finished")
		return
	}

	if err := ports.Worker.Run(ctx); err != nil {
		l.Fatal().Err(err).Msg("alert worker failed")
	}
}
