// Package service provides the counts service implementation
package service

import (
	"context"
	"time"

	"buzzwatch/internal/modkit/repokit"
	perr "buzzwatch/internal/platform/errors"
	"buzzwatch/internal/services/counts/domain"
	"buzzwatch/internal/services/counts/repo"
)

// Config for the counts service
type Config struct {
	// HistoryLimit caps points returned per History call; defaults to 16 if <=0
	HistoryLimit int
	// KeywordLimit caps rows per TopKeywords call; defaults to 100 if <=0
	KeywordLimit int
}

// Service implements domain.AppendPort, domain.HistoryPort and domain.KeywordReaderPort
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[repo.Storage]
	Cfg    Config
}

// New constructs a new counts service
func New(db repokit.TxRunner, b repokit.Binder[repo.Storage], cfg Config) *Service {
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 16
	}
	if cfg.KeywordLimit <= 0 {
		cfg.KeywordLimit = 100
	}
	return &Service{DB: db, Binder: b, Cfg: cfg}
}

// AppendCategoryCounts implements domain.AppendPort
func (s *Service) AppendCategoryCounts(ctx context.Context, rows []domain.CategoryRow) error {
	if len(rows) == 0 {
		return nil
	}
	return s.DB.Tx(ctx, func(q repokit.Queryer) error {
		return s.Binder.Bind(q).AppendCategoryCounts(ctx, rows)
	})
}

// AppendKeywordCounts implements domain.AppendPort
func (s *Service) AppendKeywordCounts(ctx context.Context, rows []domain.KeywordRow) error {
	if len(rows) == 0 {
		return nil
	}
	return s.DB.Tx(ctx, func(q repokit.Queryer) error {
		return s.Binder.Bind(q).AppendKeywordCounts(ctx, rows)
	})
}

// History implements domain.HistoryPort
// A failure here is never fatal to a pass; callers degrade the affected series
func (s *Service) History(
	ctx context.Context,
	key domain.SeriesKey,
	before time.Time,
	limit int,
) ([]domain.HistoryPoint, error) {
	if limit <= 0 || limit > s.Cfg.HistoryLimit {
		limit = s.Cfg.HistoryLimit
	}

	var out []domain.HistoryPoint
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		var err error
		out, err = s.Binder.Bind(q).History(ctx, key, before, limit)
		return err
	})
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeHistory,
			"history read %s/%s/%s", key.Channel, key.Query, key.Category)
	}
	return out, nil
}

// TopKeywords implements domain.KeywordReaderPort
func (s *Service) TopKeywords(ctx context.Context, q domain.KeywordQuery) ([]domain.KeywordAgg, error) {
	limit := q.Limit
	if limit <= 0 || limit > s.Cfg.KeywordLimit {
		limit = s.Cfg.KeywordLimit
	}

	var out []domain.KeywordAgg
	err := s.DB.Tx(ctx, func(qq repokit.Queryer) error {
		var err error
		out, err = s.Binder.Bind(qq).TopKeywords(ctx, q, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
