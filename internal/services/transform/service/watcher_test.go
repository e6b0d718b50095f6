package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"buzzwatch/internal/services/transform/domain"
)

type fakeRunner struct {
	resumed atomic.Int32
	windows atomic.Int32
}

func (f *fakeRunner) RunWindow(context.Context, time.Time) (domain.Summary, error) {
	f.windows.Add(1)
	return domain.Summary{Status: domain.RunOK}, nil
}

func (f *fakeRunner) RunRange(context.Context, time.Time, time.Time) ([]domain.Summary, error) {
	return nil, nil
}

func (f *fakeRunner) RunResume(context.Context) ([]domain.Summary, error) {
	f.resumed.Add(1)
	return nil, nil
}

func TestWatcher_NextFire(t *testing.T) {
	at := func(hh, mm, ss int) time.Time {
		return time.Date(2025, 8, 25, hh, mm, ss, 0, time.UTC)
	}

	cases := []struct {
		name   string
		settle time.Duration
		now    time.Time
		want   time.Time
	}{
		{"before settle", 2 * time.Minute, at(10, 31, 0), at(10, 32, 0)},
		{"after settle", 2 * time.Minute, at(10, 33, 0), at(11, 2, 0)},
		{"exactly at fire", 2 * time.Minute, at(10, 32, 0), at(11, 2, 0)},
		{"no settle on boundary", 0, at(10, 30, 0), at(11, 0, 0)},
		{"no settle mid window", 0, at(10, 45, 0), at(11, 0, 0)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := NewWatcher(&fakeRunner{}, WatchConfig{Window: 30 * time.Minute, Settle: tc.settle})
			if got := w.nextFire(tc.now); !got.Equal(tc.want) {
				t.Fatalf("nextFire(%v) = %v, want %v", tc.now, got, tc.want)
			}
		})
	}
}

func TestNewWatcher_Defaults(t *testing.T) {
	w := NewWatcher(&fakeRunner{}, WatchConfig{})
	if w.Cfg.Window != 30*time.Minute {
		t.Fatalf("window = %v", w.Cfg.Window)
	}
	if w.Cfg.Deadline != w.Cfg.Window {
		t.Fatalf("deadline should default to the window: %v", w.Cfg.Deadline)
	}
}

func TestWatcher_RunStopsOnCancel(t *testing.T) {
	r := &fakeRunner{}
	w := NewWatcher(r, WatchConfig{Resume: true})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := w.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want canceled", err)
	}
	if r.resumed.Load() != 1 {
		t.Fatalf("resume should run once at startup, got %d", r.resumed.Load())
	}
	if r.windows.Load() != 0 {
		t.Fatalf("no scheduled pass should fire before the first boundary")
	}
}
