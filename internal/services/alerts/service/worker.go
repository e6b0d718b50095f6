package service

import (
	"context"
	"time"

	"buzzwatch/internal/platform/logger"
)

// Run starts the dispatch loop, draining pending alerts every interval
func (s *Service) Run(ctx context.Context) error {
	log := logger.Named("alert-dispatch")

	if _, err := s.publisher(); err != nil {
		return err
	}
	defer func() {
		if s.pub != nil {
			_ = s.pub.Close()
		}
	}()

	ticker := time.NewTicker(s.Cfg.Interval)
	defer ticker.Stop()

	log.Info().Dur("interval", s.Cfg.Interval).Int("batch", s.Cfg.Batch).Msg("dispatch loop started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			n, err := s.DispatchOnce(ctx)
			if err != nil {
				log.Error().Err(err).Msg("dispatch pass failed")
				continue
			}
			if n > 0 {
				log.Info().Int("alerts", n).Msg("dispatched")
			}
		}
	}
}
