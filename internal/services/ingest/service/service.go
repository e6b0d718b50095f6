// Package service provides the ingest service implementation
package service

import (
	"context"
	"errors"
	"io"
	"time"

	"buzzwatch/internal/adapters/feedcsv"
	"buzzwatch/internal/platform/logger"
	"buzzwatch/internal/platform/metrics"
	"buzzwatch/internal/services/ingest/domain"
	postdom "buzzwatch/internal/services/posts/domain"
)

// Config holds configuration options for the ingest service
type Config struct {
	Feeds []domain.Feed

	// Window is the batch bucket width; defaults to 30m if <=0
	Window time.Duration

	// ChunkSize caps posts per insert call; defaults to 500 if <=0
	ChunkSize int

	// FetchTimeout bounds one batch fetch; 0 = none
	FetchTimeout time.Duration
}

// Service implements domain.RunnerPort
type Service struct {
	Posts postdom.WriterPort
	Fetch feedcsv.Fetcher
	Cfg   Config
}

// New constructs the ingest service
func New(posts postdom.WriterPort, f feedcsv.Fetcher, cfg Config) *Service {
	if posts == nil {
		panic("ingest.Service requires a posts writer")
	}
	if f == nil {
		panic("ingest.Service requires a fetcher")
	}
	if cfg.Window <= 0 {
		cfg.Window = 30 * time.Minute
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 500
	}
	return &Service{Posts: posts, Fetch: f, Cfg: cfg}
}

// RunWindow implements domain.RunnerPort
// A feed with no batch for the window is counted, not failed; a batch that
// cannot be fetched or parsed fails the pass after the other feeds ran
func (s *Service) RunWindow(ctx context.Context, window time.Time) (domain.Summary, error) {
	window = window.UTC().Truncate(s.Cfg.Window)
	log := logger.C(ctx)

	var sum domain.Summary
	var errs []error
	for _, f := range s.Cfg.Feeds {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		bs, err := s.runBatch(ctx, f, window)
		sum.Add(bs)
		if err != nil {
			log.Error().Err(err).
				Str("channel", f.Channel).Str("query", f.Query).Time("window", window).
				Msg("ingest: batch failed")
			errs = append(errs, err)
		}
	}
	return sum, errors.Join(errs...)
}

// RunRange implements domain.RunnerPort
func (s *Service) RunRange(ctx context.Context, since, until time.Time) (domain.Summary, error) {
	since = since.UTC().Truncate(s.Cfg.Window)
	until = until.UTC().Truncate(s.Cfg.Window)
	if until.Before(since) {
		return domain.Summary{}, errors.New("ingest: until before since")
	}

	var sum domain.Summary
	var errs []error
	for w := since; w.Before(until); w = w.Add(s.Cfg.Window) {
		ws, err := s.RunWindow(ctx, w)
		sum.Add(ws)
		if err != nil {
			if ctx.Err() != nil {
				return sum, err
			}
			errs = append(errs, err)
		}
	}
	return sum, errors.Join(errs...)
}

func (s *Service) runBatch(ctx context.Context, f domain.Feed, window time.Time) (domain.Summary, error) {
	ref := feedcsv.NewBatchRef(f.Channel, f.Query, window)

	fetchCtx := ctx
	if s.Cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, s.Cfg.FetchTimeout)
		defer cancel()
	}
	rc, err := s.Fetch.Fetch(fetchCtx, ref)
	if err != nil {
		if errors.Is(err, feedcsv.ErrNotFound) {
			logger.C(ctx).Debug().Stringer("batch", ref).Msg("ingest: no batch")
			return domain.Summary{Missing: 1}, nil
		}
		return domain.Summary{}, err
	}

	rd, err := feedcsv.NewReader(ref, rc)
	if err != nil {
		return domain.Summary{}, err
	}
	defer rd.Close()

	sum := domain.Summary{Batches: 1}
	chunk := make([]postdom.Post, 0, s.Cfg.ChunkSize)
	flush := func() error {
		if len(chunk) == 0 {
			return nil
		}
		st, err := s.Posts.InsertBatch(ctx, chunk)
		if err != nil {
			return err
		}
		sum.Inserted += st.Inserted
		sum.Deduped += st.Deduped
		sum.Skipped += st.Skipped
		metrics.PostsSkipped.WithLabelValues(f.Channel).Add(float64(st.Skipped))
		chunk = chunk[:0]
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		rec, err := rd.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return sum, err
		}
		chunk = append(chunk, postdom.Post{
			Channel:       rec.Channel,
			Query:         rec.Query,
			Username:      rec.Username,
			UploadedTime:  rec.UploadedTime,
			CollectedTime: rec.CollectedTime,
			Text:          rec.Text,
		})
		if len(chunk) >= s.Cfg.ChunkSize {
			if err := flush(); err != nil {
				return sum, err
			}
		}
	}
	if err := flush(); err != nil {
		return sum, err
	}

	rows, skipped := rd.Stats()
	sum.Rows += rows
	sum.Skipped += skipped
	metrics.PostsRead.WithLabelValues(f.Channel).Add(float64(rows))
	metrics.PostsSkipped.WithLabelValues(f.Channel).Add(float64(skipped))
	return sum, nil
}
