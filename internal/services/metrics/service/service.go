// Package service provides the metrics service implementation
package service

import (
	"context"

	"buzzwatch/internal/modkit/repokit"
	"buzzwatch/internal/services/metrics/domain"
	"buzzwatch/internal/services/metrics/repo"
)

// Config for the metrics service
type Config struct {
	// HardLimit is the maximum allowed limit per List call; defaults to 500 if <=0
	HardLimit int
}

// Service implements domain.WriterPort and domain.ReaderPort
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[repo.Storage]
	Cfg    Config
}

// New constructs a new metrics service
func New(db repokit.TxRunner, b repokit.Binder[repo.Storage], cfg Config) *Service {
	if cfg.HardLimit <= 0 {
		cfg.HardLimit = 500
	}
	return &Service{DB: db, Binder: b, Cfg: cfg}
}

// InsertMetrics implements domain.WriterPort
func (s *Service) InsertMetrics(ctx context.Context, recs []domain.Record) error {
	if len(recs) == 0 {
		return nil
	}
	return s.DB.Tx(ctx, func(q repokit.Queryer) error {
		return s.Binder.Bind(q).InsertMetrics(ctx, recs)
	})
}

// List implements domain.ReaderPort
func (s *Service) List(ctx context.Context, in domain.ListInput) ([]domain.Record, error) {
	limit := in.Limit
	if limit <= 0 || limit > s.Cfg.HardLimit {
		limit = s.Cfg.HardLimit
	}

	var out []domain.Record
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		var err error
		out, err = s.Binder.Bind(q).List(ctx, in, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Summary implements domain.ReaderPort
func (s *Service) Summary(ctx context.Context, channel, query string) ([]domain.Record, error) {
	var out []domain.Record
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		var err error
		out, err = s.Binder.Bind(q).Summary(ctx, channel, query)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
