package feedcsv

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"
)

// CachedFetcher fronts another Fetcher with an on-disk cache.
// Batch files are immutable once their window closes, so a cached file is
// served as-is; optional retention trims the cache by age and total bytes
type CachedFetcher struct {
	dir             string
	base            Fetcher
	retainMaxAge    time.Duration
	retainMaxBytes  int64
	lastCleanupUnix atomic.Int64
}

// CachedOption configures the fetcher
type CachedOption func(*CachedFetcher)

// WithRetention sets optional age and size retention.
// Pass zero to disable either dimension
func WithRetention(maxAge time.Duration, maxBytes int64) CachedOption {
	return func(c *CachedFetcher) {
		c.retainMaxAge = maxAge
		c.retainMaxBytes = maxBytes
	}
}

// NewCachedFetcher builds a caching fetcher; dir is required, base supplies misses
func NewCachedFetcher(dir string, base Fetcher, opts ...CachedOption) *CachedFetcher {
	_ = os.MkdirAll(dir, 0o755)
	c := &CachedFetcher{dir: dir, base: base}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Fetch serves the batch from disk when present, downloading it first when not
func (c *CachedFetcher) Fetch(ctx context.Context, ref BatchRef) (io.ReadCloser, error) {
	path := filepath.Join(c.dir, ref.Filename())

	if fi, err := os.Stat(path); err == nil && fi.Mode().IsRegular() {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		c.maybeCleanup()
		return f, nil
	}

	rc, err := c.base.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	out, err := c.writeToCache(rc, path)
	if err != nil {
		return nil, err
	}
	c.maybeCleanup()
	return out, nil
}

// writeToCache saves the stream atomically then reopens it for the caller
func (c *CachedFetcher) writeToCache(rc io.ReadCloser, path string) (io.ReadCloser, error) {
	tmp := path + ".part"
	defer func() { _ = os.Remove(tmp) }()

	out, err := os.Create(tmp)
	if err != nil {
		_ = rc.Close()
		return nil, err
	}
	_, werr := io.Copy(out, rc)
	cerr := out.Close()
	_ = rc.Close()
	if werr != nil {
		return nil, werr
	}
	if cerr != nil {
		return nil, cerr
	}
	if err := os.Rename(tmp, path); err != nil {
		return nil, err
	}
	return os.Open(path)
}

// maybeCleanup throttles retention cleanup to once per ten minutes
func (c *CachedFetcher) maybeCleanup() {
	if c.retainMaxAge <= 0 && c.retainMaxBytes <= 0 {
		return
	}
	now := time.Now().Unix()
	last := c.lastCleanupUnix.Load()
	if last != 0 && now-last < 600 {
		return
	}
	if !c.lastCleanupUnix.CompareAndSwap(last, now) {
		return
	}
	_ = c.cleanupOnce()
}

// cleanupOnce applies age and size retention, oldest windows first
func (c *CachedFetcher) cleanupOnce() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}
	type item struct {
		Path   string
		Size   int64
		Window time.Time
	}
	var items []item
	var total int64
	cutoff := time.Now().Add(-c.retainMaxAge)

	for _, e := range entries {
		name := e.Name()
		if !strings.HasSuffix(name, ".csv") {
			continue
		}
		full := filepath.Join(c.dir, name)
		fi, err := os.Stat(full)
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}
		w, ok := parseWindowFromName(name)
		if !ok {
			continue
		}
		if c.retainMaxAge > 0 && w.Before(cutoff) {
			_ = os.Remove(full)
			continue
		}
		items = append(items, item{Path: full, Size: fi.Size(), Window: w})
		total += fi.Size()
	}

	if c.retainMaxBytes > 0 && total > c.retainMaxBytes {
		sort.Slice(items, func(i, j int) bool { return items[i].Window.Before(items[j].Window) })
		for _, it := range items {
			if total <= c.retainMaxBytes {
				break
			}
			_ = os.Remove(it.Path)
			total -= it.Size
		}
	}
	return nil
}

// parseWindowFromName recovers the window stamp from <channel>-<query>-<stamp>.csv
func parseWindowFromName(name string) (time.Time, bool) {
	base := strings.TrimSuffix(name, ".csv")
	i := strings.LastIndexByte(base, '-')
	if i < 0 {
		return time.Time{}, false
	}
	t, err := time.Parse(stampLayout, base[i+1:])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
