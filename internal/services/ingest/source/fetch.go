// Package source wires the collector fetcher for ingest.
// This keeps config-reading outside the service
package source

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"buzzwatch/internal/adapters/feedcsv"
	"buzzwatch/internal/modkit"
)

// NewFetcher constructs a feedcsv.Fetcher from config under CORE_INGEST_*.
// An http(s) base gets the on-disk cache; anything else is a local drop dir
func NewFetcher(deps modkit.Deps) feedcsv.Fetcher {
	ing := deps.Cfg.Prefix("CORE_INGEST_")

	base := ing.MustString("BASE")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		return &feedcsv.DirFetcher{Dir: expandHome(base)}
	}

	cacheDir := expandHome(ing.MayString("CACHE_DIR", "~/.buzzwatch/cache"))
	httpTO := ing.MayDuration("HTTP_TIMEOUT", 30*time.Second)
	retainAge := ing.MayDuration("RETAIN_MAX_AGE", 0)
	retainBytes := int64(ing.MayInt("RETAIN_MAX_BYTES", 0))

	return feedcsv.NewCachedFetcher(
		cacheDir,
		feedcsv.NewHTTPFetcherWithTimeout(base, httpTO),
		feedcsv.WithRetention(retainAge, retainBytes),
	)
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
