package module

import (
	"time"

	"buzzwatch/internal/platform/config"
	"buzzwatch/internal/services/ingest/domain"
)

// Options configures the ingest module
type Options struct {
	Feeds        []domain.Feed
	Window       time.Duration
	ChunkSize    int
	FetchTimeout time.Duration
}

// FromConfig reads options from config.Conf
// Feeds come from CORE_INGEST_FEEDS as csv channel:query pairs
func FromConfig(cfg config.Conf) Options {
	ing := cfg.Prefix("CORE_INGEST_")
	tf := cfg.Prefix("CORE_TRANSFORM_")

	feeds, err := domain.ParseFeeds(ing.MayCSV("FEEDS", nil))
	if err != nil {
		panic(err)
	}

	return Options{
		Feeds:        feeds,
		Window:       tf.MayDuration("WINDOW", 30*time.Minute),
		ChunkSize:    ing.MayInt("CHUNK_SIZE", 500),
		FetchTimeout: ing.MayDuration("FETCH_TIMEOUT", 2*time.Minute),
	}
}
