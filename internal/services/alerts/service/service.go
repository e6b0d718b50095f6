// Package service implements the alerts sink, read surface and dispatch worker
package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"buzzwatch/internal/modkit/repokit"
	"buzzwatch/internal/services/alerts/domain"
	"buzzwatch/internal/services/alerts/repo"
)

// Config controls the dispatch worker
type Config struct {
	// Batch is the max pending rows drained per pass; defaults to 100 if <=0
	Batch int
	// Interval is the drain period; defaults to 30s if <=0
	Interval time.Duration
	// HardLimit is the maximum allowed limit per List call; defaults to 200 if <=0
	HardLimit int
}

// Service implements domain.SinkPort, domain.ReaderPort, domain.DispatchPort
// and domain.WorkerPort
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[repo.Storage]
	Cfg    Config

	// NewPublisher builds the outbound publisher on first use so read-only
	// consumers of this module never touch the broker
	NewPublisher func() (Publisher, error)

	pubOnce sync.Once
	pub     Publisher
	pubErr  error
}

// New constructs a new alerts service
func New(db repokit.TxRunner, b repokit.Binder[repo.Storage], cfg Config, newPub func() (Publisher, error)) *Service {
	if cfg.Batch <= 0 {
		cfg.Batch = 100
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.HardLimit <= 0 {
		cfg.HardLimit = 200
	}
	if newPub == nil {
		newPub = func() (Publisher, error) { return LogPublisher{}, nil }
	}
	return &Service{DB: db, Binder: b, Cfg: cfg, NewPublisher: newPub}
}

// InsertAlerts implements domain.SinkPort
func (s *Service) InsertAlerts(ctx context.Context, xs []domain.Alert) error {
	if len(xs) == 0 {
		return nil
	}
	rows := make([]domain.Alert, len(xs))
	copy(rows, xs)
	for i := range rows {
		if rows[i].ID == "" {
			rows[i].ID = uuid.NewString()
		}
	}
	return s.DB.Tx(ctx, func(q repokit.Queryer) error {
		return s.Binder.Bind(q).InsertAlerts(ctx, rows)
	})
}

// List implements domain.ReaderPort
func (s *Service) List(ctx context.Context, in domain.ListInput) ([]domain.Alert, error) {
	limit := in.Limit
	if limit <= 0 || limit > s.Cfg.HardLimit {
		limit = s.Cfg.HardLimit
	}

	var out []domain.Alert
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

func (s *Service) publisher() (Publisher, error) {
	s.pubOnce.Do(func() { s.pub, s.pubErr = s.NewPublisher() })
	return s.pub, s.pubErr
}
