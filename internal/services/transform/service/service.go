// Package service implements the window pass engine: posts in, scored
// metric records and alerts out, one lease-guarded pass per window
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"buzzwatch/internal/core/aggregate"
	"buzzwatch/internal/core/mapper"
	"buzzwatch/internal/core/textnorm"
	"buzzwatch/internal/core/token"
	"buzzwatch/internal/core/trend"
	"buzzwatch/internal/core/wordbag"
	"buzzwatch/internal/modkit/repokit"
	perr "buzzwatch/internal/platform/errors"
	"buzzwatch/internal/platform/logger"
	"buzzwatch/internal/platform/metrics"
	"buzzwatch/internal/platform/store"
	alertdom "buzzwatch/internal/services/alerts/domain"
	countdom "buzzwatch/internal/services/counts/domain"
	metricdom "buzzwatch/internal/services/metrics/domain"
	postdom "buzzwatch/internal/services/posts/domain"
	"buzzwatch/internal/services/transform/domain"
	"buzzwatch/internal/services/transform/guardrails"
	"buzzwatch/internal/services/transform/repo"
)

// Config carries the pass knobs
type Config struct {
	// Window is the collection bucket width
	Window time.Duration

	// Lookback is the moving average and volatility horizon
	Lookback time.Duration

	// Streak is how many consecutive windows the streak metrics cover
	Streak int

	// Threshold is the global alert score bar
	Threshold float64

	// CategoryThresholds overrides Threshold per category
	CategoryThresholds map[string]float64

	// CountThreshold is the per-window count bar for streak_duration
	CountThreshold int64

	// Weights is the composite score vector
	Weights trend.Weights

	// WordbagPath overrides the embedded dictionary when set
	WordbagPath string

	// MinTokenLen and StopwordsPath shape the tokenizer
	MinTokenLen   int
	StopwordsPath string

	// Workers caps concurrent (channel, query) partitions per pass
	Workers int

	// PageSize is the posts read page
	PageSize int

	// HistoryLimit caps points fetched per series
	HistoryLimit int

	// StaleAfter is how old a running row must be before a new pass may
	// reclaim its window
	StaleAfter time.Duration

	// MaxResumeWindows caps one RunResume sweep
	MaxResumeWindows int

	// HardLimit caps run listings
	HardLimit int

	// DryRun computes everything and persists nothing
	DryRun bool

	Timeouts guardrails.Timeouts
	Retry    store.RetryPolicy
}

// Service implements domain.RunnerPort and domain.ReaderPort
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[repo.Storage]
	Ports  domain.Ports
	Cfg    Config

	norm   *textnorm.Normalizer
	tokens *token.Filter
}

// New constructs the window pass engine
func New(db repokit.TxRunner, binder repokit.Binder[repo.Storage], ports domain.Ports, cfg Config) *Service {
	if db == nil {
		panic("transform.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("transform.Service requires a non nil Storage binder")
	}
	if ports.Posts == nil || ports.History == nil || ports.Counts == nil ||
		ports.Metrics == nil || ports.Alerts == nil {
		panic("transform.Service requires the full sibling port bundle")
	}

	if cfg.Window <= 0 {
		cfg.Window = 30 * time.Minute
	}
	if cfg.Lookback <= 0 {
		cfg.Lookback = time.Hour
	}
	if cfg.Streak <= 0 {
		cfg.Streak = 3
	}
	if cfg.Threshold == 0 {
		cfg.Threshold = 2.0
	}
	if cfg.Weights == (trend.Weights{}) {
		cfg.Weights = trend.DefaultWeights
	}
	if cfg.MinTokenLen <= 0 {
		cfg.MinTokenLen = 2
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 5000
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 16
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = 2 * time.Hour
	}
	if cfg.MaxResumeWindows <= 0 {
		cfg.MaxResumeWindows = 500
	}
	if cfg.HardLimit <= 0 {
		cfg.HardLimit = 200
	}
	if cfg.Retry == (store.RetryPolicy{}) {
		cfg.Retry = store.DefaultRetry
	}

	s := &Service{DB: db, Binder: binder, Ports: ports, Cfg: cfg, norm: textnorm.New()}
	if cfg.StopwordsPath != "" {
		flt, err := token.FromFile(cfg.MinTokenLen, cfg.StopwordsPath)
		if err != nil {
			panic(fmt.Sprintf("transform: stopwords: %v", err))
		}
		s.tokens = flt
	} else {
		s.tokens = token.Default(cfg.MinTokenLen)
	}
	return s
}

// RunWindow implements domain.RunnerPort
func (s *Service) RunWindow(ctx context.Context, window time.Time) (domain.Summary, error) {
	window = window.UTC().Truncate(s.Cfg.Window)
	runID := uuid.NewString()
	ctx = logger.WithRun(ctx, runID, window.Format(time.RFC3339))
	log := logger.C(ctx)

	if s.Cfg.DryRun {
		sum, err := s.pass(ctx, window)
		sum.Status = map[bool]domain.RunStatus{true: domain.RunFailed, false: domain.RunOK}[err != nil]
		log.Info().Int64("posts", sum.PostsRead).Int64("categories", sum.Categories).
			Int64("alerts", sum.Alerts).Msg("transform: dry run complete")
		return sum, err
	}

	claimed, prior, err := s.claim(ctx, runID, window)
	if err != nil {
		return domain.Summary{Window: window}, err
	}
	if !claimed {
		if prior == domain.RunOK {
			log.Debug().Msg("transform: window already ok; clean skip")
			return domain.Summary{Window: window, Status: domain.RunOK, Skipped: true}, nil
		}
		log.Debug().Str("prior", string(prior)).Msg("transform: window lease held; clean skip")
		return domain.Summary{Window: window, Status: prior, Skipped: true}, nil
	}

	metrics.RunsActive.Inc()
	start := time.Now()
	passCtx, cancel := guardrails.WithPass(ctx, s.Cfg.Timeouts)
	sum, retErr := s.pass(passCtx, window)
	cancel()
	sum.ElapsedMS = time.Since(start).Milliseconds()
	metrics.RunsActive.Dec()
	metrics.RunDuration.Observe(time.Since(start).Seconds())

	status := domain.RunOK
	switch {
	case retErr != nil:
		status = domain.RunFailed
	case sum.FailedKeys > 0:
		status = domain.RunPartial
	}
	sum.Status = status

	errText := ""
	if retErr != nil {
		errText = retErr.Error()
	}

	// Finish must land even when the pass deadline fired, or the window
	// stays 'running' until the stale reclaim kicks in
	finCtx, finCancel := guardrails.ForDB(context.WithoutCancel(ctx), s.Cfg.Timeouts)
	ferr := s.DB.Tx(finCtx, func(q repokit.Queryer) error {
		return s.Binder.Bind(q).FinishRun(finCtx, runID, domain.RunFinish{
			Status:       status,
			PostsRead:    sum.PostsRead,
			PostsSkipped: sum.PostsSkipped,
			Categories:   sum.Categories,
			Alerts:       sum.Alerts,
			ElapsedMS:    sum.ElapsedMS,
			ErrText:      errText,
		})
	})
	finCancel()
	if ferr != nil {
		log.Error().Err(ferr).Msg("transform: finish run failed")
		if retErr == nil {
			retErr = ferr
		}
	}

	log.Info().Str("status", string(status)).
		Int64("posts", sum.PostsRead).Int64("skipped", sum.PostsSkipped).
		Int64("categories", sum.Categories).Int64("alerts", sum.Alerts).
		Int64("degraded", sum.Degraded).Int64("excluded", sum.Excluded).
		Int64("elapsed_ms", sum.ElapsedMS).
		Msg("transform: window pass finished")
	return sum, retErr
}

// RunRange implements domain.RunnerPort. Windows run oldest first so each
// pass reads the history its predecessors appended
func (s *Service) RunRange(ctx context.Context, since, until time.Time) ([]domain.Summary, error) {
	since = since.UTC().Truncate(s.Cfg.Window)
	until = until.UTC().Truncate(s.Cfg.Window)
	if until.Before(since) {
		return nil, errors.New("transform: until before since")
	}

	var sums []domain.Summary
	var errs []error
	for w := since; w.Before(until); w = w.Add(s.Cfg.Window) {
		sum, err := s.RunWindow(ctx, w)
		sums = append(sums, sum)
		if err != nil {
			if ctx.Err() != nil {
				return sums, err
			}
			errs = append(errs, err)
		}
	}
	return sums, errors.Join(errs...)
}

// RunResume implements domain.RunnerPort
func (s *Service) RunResume(ctx context.Context) ([]domain.Summary, error) {
	var pending []time.Time
	if err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		ws, err := s.Binder.Bind(q).PendingWindows(ctx, s.Cfg.MaxResumeWindows)
		pending = ws
		return err
	}); err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return nil, nil
	}
	logger.C(ctx).Info().Int("windows", len(pending)).Msg("transform: resuming pending windows")

	var sums []domain.Summary
	var errs []error
	for _, w := range pending {
		sum, err := s.RunWindow(ctx, w)
		sums = append(sums, sum)
		if err != nil {
			if ctx.Err() != nil {
				return sums, err
			}
			errs = append(errs, err)
		}
	}
	return sums, errors.Join(errs...)
}

// ListRuns implements domain.ReaderPort
func (s *Service) ListRuns(ctx context.Context, in domain.ListInput) ([]domain.Run, error) {
	if in.Limit <= 0 || in.Limit > s.Cfg.HardLimit {
		in.Limit = s.Cfg.HardLimit
	}
	var out []domain.Run
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		rs, e := s.Binder.Bind(q).ListRuns(ctx, in)
		out = rs
		return e
	})
	return out, err
}

func (s *Service) claim(ctx context.Context, runID string, window time.Time) (bool, domain.RunStatus, error) {
	var claimed bool
	var prior domain.RunStatus
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		c, p, e := s.Binder.Bind(q).ClaimWindow(ctx, runID, window, s.Cfg.StaleAfter)
		claimed, prior = c, p
		return e
	})
	return claimed, prior, err
}

// partKey is one (channel, query) scatter unit
type partKey struct {
	channel string
	query   string
}

// seriesResult is one partition's gathered output
type seriesResult struct {
	counts   []countdom.CategoryRow
	kws      []countdom.KeywordRow
	recs     []metricdom.Record
	alerts   []alertdom.Alert
	degraded int64
	excluded int64
}

// pass runs one window end to end without lease or bookkeeping concerns
func (s *Service) pass(ctx context.Context, window time.Time) (domain.Summary, error) {
	sum := domain.Summary{Window: window, Status: domain.RunRunning}
	log := logger.C(ctx)

	bag, err := s.loadBag()
	if err != nil {
		return sum, err
	}
	mp := mapper.New(bag)

	parts, read, skipped, err := s.readPosts(ctx, window)
	sum.PostsRead = read
	sum.PostsSkipped = skipped
	if err != nil {
		return sum, err
	}
	if len(parts) == 0 {
		log.Info().Int64("posts", read).Msg("transform: nothing to score in window")
		return sum, nil
	}

	// Scatter across (channel, query) partitions; each owns its keys
	// exclusively, so results merge without locks
	keys := make([]partKey, 0, len(parts))
	for k := range parts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].channel != keys[j].channel {
			return keys[i].channel < keys[j].channel
		}
		return keys[i].query < keys[j].query
	})

	results := make([]seriesResult, len(keys))
	sem := make(chan struct{}, s.Cfg.Workers)
	var wg sync.WaitGroup
	for i := range keys {
		select {
		case <-ctx.Done():
			wg.Wait()
			return sum, ctx.Err()
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(i int) {
			defer func() { <-sem; wg.Done() }()
			results[i] = s.scorePartition(ctx, window, keys[i], parts[keys[i]], mp)
		}(i)
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return sum, err
	}

	var counts []countdom.CategoryRow
	var kws []countdom.KeywordRow
	var recs []metricdom.Record
	var alerts []alertdom.Alert
	for i := range results {
		counts = append(counts, results[i].counts...)
		kws = append(kws, results[i].kws...)
		recs = append(recs, results[i].recs...)
		alerts = append(alerts, results[i].alerts...)
		sum.Degraded += results[i].degraded
		sum.Excluded += results[i].excluded
	}
	sum.Categories = int64(len(counts))
	sum.Alerts = int64(len(alerts))

	if s.Cfg.DryRun {
		log.Info().Int("categories", len(counts)).Int("keywords", len(kws)).
			Int("alerts", len(alerts)).Msg("transform: dry run; skipping persists")
		return sum, nil
	}

	// Persist in dependency order: the history store first so the next
	// window reads a complete one, sinks after. A failed key never blocks
	// its siblings
	dbCtx, dbCancel := guardrails.ForDB(ctx, s.Cfg.Timeouts)
	defer dbCancel()

	sum.FailedKeys += persistBatch(dbCtx, s.Cfg.Retry, "counts", counts, s.Ports.Counts.AppendCategoryCounts)
	sum.FailedKeys += persistBatch(dbCtx, s.Cfg.Retry, "keywords", kws, s.Ports.Counts.AppendKeywordCounts)

	failedRecs := persistBatch(dbCtx, s.Cfg.Retry, "metrics", recs, s.Ports.Metrics.InsertMetrics)
	sum.FailedKeys += failedRecs
	metrics.MetricRecords.Add(float64(int64(len(recs)) - failedRecs))

	sum.FailedKeys += persistBatch(dbCtx, s.Cfg.Retry, "alerts", alerts, s.Ports.Alerts.InsertAlerts)

	return sum, nil
}

// scorePartition aggregates, scores, and classifies one partition's posts
func (s *Service) scorePartition(ctx context.Context, window time.Time, key partKey, posts []postdom.Post, mp *mapper.Mapper) seriesResult {
	batch := aggregate.NewBatch()
	for i := range posts {
		hits := mp.Map(s.tokens.Split(s.norm.Normalize(posts[i].Text)))
		if len(hits) == 0 {
			continue
		}
		batch.Add(window, key.channel, key.query, hits)
		for _, h := range hits {
			metrics.HitsMapped.WithLabelValues(h.Category).Inc()
		}
	}

	rows := batch.Rows()
	kwRows := batch.KeywordRows()
	metrics.AggregateRows.WithLabelValues("category").Add(float64(len(rows)))
	metrics.AggregateRows.WithLabelValues("keyword").Add(float64(len(kwRows)))

	res := seriesResult{
		counts: make([]countdom.CategoryRow, 0, len(rows)),
		kws:    make([]countdom.KeywordRow, 0, len(kwRows)),
	}
	kwByCat := make(map[string][]aggregate.KeywordRow, len(rows))
	for _, kr := range kwRows {
		res.kws = append(res.kws, countdom.KeywordRow{
			Window: kr.Window, Channel: kr.Channel, Query: kr.Query,
			Category: kr.Category, Keyword: kr.Keyword, N: kr.Count,
		})
		kwByCat[kr.Category] = append(kwByCat[kr.Category], kr)
	}

	total := batch.Total(window, key.channel, key.query)
	tcfg := trend.Config{
		Lookback:       s.Cfg.Lookback,
		Streak:         s.Cfg.Streak,
		CountThreshold: s.Cfg.CountThreshold,
		Weights:        s.Cfg.Weights,
	}
	log := logger.C(ctx)

	for _, row := range rows {
		res.counts = append(res.counts, countdom.CategoryRow{
			Window: row.Window, Channel: row.Channel, Query: row.Query,
			Category: row.Category, N: row.Count,
		})

		hist, degraded := s.history(ctx, countdom.SeriesKey{
			Channel: row.Channel, Query: row.Query, Category: row.Category,
		}, window)
		if degraded {
			res.degraded++
		}

		vec := trend.Compute(tcfg, trend.Point{Window: window, Count: row.Count}, total, hist)
		if !vec.Finite() {
			res.excluded++
			log.Error().Err(perr.Numericf("non-finite vector for %s/%s/%s",
				row.Channel, row.Query, row.Category)).
				Msg("transform: record excluded from both sinks")
			continue
		}

		res.recs = append(res.recs, metricdom.Record{
			Channel:         row.Channel,
			Query:           row.Query,
			Category:        row.Category,
			CurTime:         vec.CurTime,
			PrevTime:        vec.PrevTime,
			CurCount:        vec.CurCount,
			PrevCount:       vec.PrevCount,
			ShortTermGrowth: vec.ShortTermGrowth,
			LongTermRatio:   vec.LongTermRatio,
			Volatility:      vec.Volatility,
			StreakGrowth:    vec.StreakGrowth,
			StreakDuration:  vec.StreakDuration,
			RatioToTotal:    vec.RatioToTotal,
			Acceleration:    vec.Acceleration,
			Score:           vec.Score,
			Degraded:        degraded,
		})

		if vec.Score >= s.thresholdFor(row.Category) {
			metrics.AlertsFlagged.WithLabelValues(row.Category).Inc()
			for _, kr := range kwByCat[row.Category] {
				res.alerts = append(res.alerts, alertdom.Alert{
					Channel:         row.Channel,
					Query:           row.Query,
					Category:        row.Category,
					CurTime:         vec.CurTime,
					PrevTime:        vec.PrevTime,
					CurCount:        vec.CurCount,
					PrevCount:       vec.PrevCount,
					Keyword:         kr.Keyword,
					KeywordCount:    kr.Count,
					ShortTermGrowth: vec.ShortTermGrowth,
					LongTermRatio:   vec.LongTermRatio,
					RatioToTotal:    vec.RatioToTotal,
					Score:           vec.Score,
				})
			}
		}
	}
	return res
}

// readPosts pages the window's posts and partitions them by (channel, query).
// Rows with no usable text are counted and dropped, never fatal
func (s *Service) readPosts(ctx context.Context, window time.Time) (map[partKey][]postdom.Post, int64, int64, error) {
	readCtx, cancel := guardrails.ForRead(ctx, s.Cfg.Timeouts)
	defer cancel()

	parts := make(map[partKey][]postdom.Post, 8)
	var read, skipped int64
	var after postdom.AfterKey
	for {
		rows, next, err := s.Ports.Posts.ListWindow(readCtx, postdom.ListInput{
			Window: window,
			After:  after,
			Limit:  s.Cfg.PageSize,
		})
		if err != nil {
			return nil, read, skipped, err
		}
		for i := range rows {
			read++
			metrics.PostsRead.WithLabelValues(rows[i].Channel).Inc()
			if rows[i].Channel == "" || rows[i].Query == "" || strings.TrimSpace(rows[i].Text) == "" {
				skipped++
				metrics.PostsSkipped.WithLabelValues(rows[i].Channel).Inc()
				continue
			}
			k := partKey{channel: rows[i].Channel, query: rows[i].Query}
			parts[k] = append(parts[k], rows[i])
		}
		if len(rows) < s.Cfg.PageSize {
			return parts, read, skipped, nil
		}
		after = next
	}
}

// history fetches the series history, oldest first. A read failure degrades
// the series to cold start rather than failing the pass
func (s *Service) history(ctx context.Context, key countdom.SeriesKey, before time.Time) ([]trend.Point, bool) {
	pts, err := s.Ports.History.History(ctx, key, before, s.Cfg.HistoryLimit)
	if err != nil {
		logger.C(ctx).Warn().Err(err).
			Str("channel", key.Channel).Str("query", key.Query).Str("category", key.Category).
			Msg("transform: history read failed; scoring cold")
		return nil, true
	}
	out := make([]trend.Point, len(pts))
	for i, p := range pts {
		out[i] = trend.Point{Window: p.Window, Count: p.N}
	}
	return out, false
}

// loadBag resolves the dictionary fresh each pass so edits land without a restart
func (s *Service) loadBag() (*wordbag.Bag, error) {
	var bag *wordbag.Bag
	var err error
	if s.Cfg.WordbagPath != "" {
		bag, err = wordbag.LoadFile(s.Cfg.WordbagPath)
	} else {
		bag, err = wordbag.Load()
	}
	if err != nil {
		return nil, perr.Dictionaryf("load wordbag: %v", err)
	}
	return bag, nil
}

func (s *Service) thresholdFor(category string) float64 {
	if t, ok := s.Cfg.CategoryThresholds[category]; ok {
		return t
	}
	return s.Cfg.Threshold
}

// persistBatch writes rows with bounded retries; a batch that still fails is
// retried row by row so one poison key cannot sink its siblings. Returns the
// count of rows that never landed
func persistBatch[T any](ctx context.Context, pol store.RetryPolicy, sink string, rows []T, write func(context.Context, []T) error) int64 {
	if len(rows) == 0 {
		return 0
	}
	log := logger.C(ctx)
	err := store.Retry(ctx, pol,
		func(c context.Context) error { return write(c, rows) },
		func(attempt int, werr error) {
			metrics.PersistRetries.WithLabelValues(sink).Inc()
			log.Warn().Int("attempt", attempt).Err(werr).Str("sink", sink).Msg("transform: persist retry")
		})
	if err == nil {
		return 0
	}
	log.Warn().Err(err).Str("sink", sink).Int("rows", len(rows)).
		Msg("transform: batch persist failed; isolating rows")

	var failed int64
	for i := range rows {
		if werr := write(ctx, rows[i:i+1]); werr != nil {
			failed++
			metrics.PersistFailures.WithLabelValues(sink).Inc()
			log.Error().Err(perr.Wrap(werr, perr.ErrorCodePersist, sink+" persist")).
				Str("sink", sink).Msg("transform: row persist failed")
		}
	}
	return failed
}
