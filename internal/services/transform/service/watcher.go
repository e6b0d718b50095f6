package service

import (
	"context"
	"time"

	"buzzwatch/internal/platform/logger"
	"buzzwatch/internal/services/transform/domain"
)

// WatchConfig carries the scheduler knobs
type WatchConfig struct {
	// Window is the boundary width; must match the pass window
	Window time.Duration

	// Settle is how long after a boundary the pass starts, giving the
	// collector time to land the window's batches
	Settle time.Duration

	// Deadline bounds one scheduled pass; defaults to Window
	Deadline time.Duration

	// Resume drains pending windows at startup
	Resume bool
}

// Watcher drives scheduled passes: on each window boundary plus the settle
// delay it runs the window that just closed under a deadline. A pass that
// overruns its deadline is abandoned, never overlapped
type Watcher struct {
	Runner domain.RunnerPort
	Cfg    WatchConfig
}

// NewWatcher constructs the scheduler
func NewWatcher(runner domain.RunnerPort, cfg WatchConfig) *Watcher {
	if runner == nil {
		panic("transform.Watcher requires a runner")
	}
	if cfg.Window <= 0 {
		cfg.Window = 30 * time.Minute
	}
	if cfg.Settle < 0 {
		cfg.Settle = 0
	}
	if cfg.Deadline <= 0 {
		cfg.Deadline = cfg.Window
	}
	return &Watcher{Runner: runner, Cfg: cfg}
}

// Run blocks until ctx is done
func (w *Watcher) Run(ctx context.Context) error {
	log := logger.Named("transform-watch")

	if w.Cfg.Resume {
		if _, err := w.Runner.RunResume(ctx); err != nil {
			if ctx.Err() != nil {
				return err
			}
			log.Error().Err(err).Msg("watch: resume failed")
		}
	}

	for {
		fire := w.nextFire(time.Now().UTC())
		timer := time.NewTimer(time.Until(fire))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		window := fire.Add(-w.Cfg.Settle).Add(-w.Cfg.Window)
		passCtx, cancel := context.WithTimeout(ctx, w.Cfg.Deadline)
		sum, err := w.Runner.RunWindow(passCtx, window)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Error().Time("window", window).Err(err).Msg("watch: pass failed")
			continue
		}
		if sum.Skipped {
			log.Debug().Time("window", window).Msg("watch: pass skipped")
			continue
		}
		log.Info().Time("window", window).Str("status", string(sum.Status)).
			Int64("posts", sum.PostsRead).Int64("alerts", sum.Alerts).
			Msg("watch: pass finished")
	}
}

// nextFire returns the next boundary-plus-settle instant strictly after now
func (w *Watcher) nextFire(now time.Time) time.Time {
	fire := now.Truncate(w.Cfg.Window).Add(w.Cfg.Settle)
	for !fire.After(now) {
		fire = fire.Add(w.Cfg.Window)
	}
	return fire
}
