package trend

import (
	"math"
	"testing"
	"time"
)

var (
	w0 = time.Date(2025, 8, 25, 10, 0, 0, 0, time.UTC)
	w1 = w0.Add(30 * time.Minute)
	w2 = w0.Add(60 * time.Minute)
	w3 = w0.Add(90 * time.Minute)
)

func almost(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestCompute_ColdStart(t *testing.T) {
	cfg := DefaultConfig()
	v := Compute(cfg, Point{Window: w0, Count: 1}, 1, nil)

	if v.PrevCount != nil || v.PrevTime != nil {
		t.Fatalf("cold start should have no prev, got %+v", v)
	}
	if !almost(v.ShortTermGrowth, 1) {
		t.Fatalf("ShortTermGrowth = %v, want 1", v.ShortTermGrowth)
	}
	if !almost(v.MovingAvg, 1) {
		t.Fatalf("MovingAvg = %v, want cur count", v.MovingAvg)
	}
	if !almost(v.LongTermRatio, 1) {
		t.Fatalf("LongTermRatio = %v, want 1", v.LongTermRatio)
	}
	if v.Volatility != 0 || v.Acceleration != 0 {
		t.Fatalf("volatility/acceleration should be 0 on cold start: %+v", v)
	}
	if v.StreakGrowth != 0 || v.StreakDuration != 0 {
		t.Fatalf("streaks should be 0 on cold start: %+v", v)
	}
	if !v.Finite() {
		t.Fatalf("cold start vector must be finite")
	}
	// 0.4*1 + 0.2*1 + 0.2*1
	if !almost(v.Score, 0.8) {
		t.Fatalf("Score = %v, want 0.8", v.Score)
	}
}

func TestCompute_ZeroEverywhere(t *testing.T) {
	cfg := DefaultConfig()
	v := Compute(cfg, Point{Window: w0, Count: 0}, 0, nil)

	if v.ShortTermGrowth != 0 || v.LongTermRatio != 0 || v.RatioToTotal != 0 || v.Score != 0 {
		t.Fatalf("zero count cold start should be all zeros: %+v", v)
	}
	if !v.Finite() {
		t.Fatalf("zero vector must be finite")
	}
}

func TestCompute_MovingAvgAndRatio(t *testing.T) {
	cfg := DefaultConfig()
	hist := []Point{{Window: w1, Count: 10}}
	v := Compute(cfg, Point{Window: w2, Count: 20}, 20, hist)

	if !almost(v.MovingAvg, 15) {
		t.Fatalf("MovingAvg = %v, want 15", v.MovingAvg)
	}
	if !almost(v.LongTermRatio, 20.0/15.0) {
		t.Fatalf("LongTermRatio = %v, want %v", v.LongTermRatio, 20.0/15.0)
	}
	// sample stddev of {10,20}
	if !almost(v.Volatility, math.Sqrt(50)) {
		t.Fatalf("Volatility = %v, want sqrt(50)", v.Volatility)
	}
	if v.PrevCount == nil || *v.PrevCount != 10 {
		t.Fatalf("PrevCount = %v, want 10", v.PrevCount)
	}
	if !almost(v.ShortTermGrowth, 10) {
		t.Fatalf("ShortTermGrowth = %v, want 10", v.ShortTermGrowth)
	}
}

func TestCompute_LookbackExcludesOldPoints(t *testing.T) {
	cfg := DefaultConfig()
	// w0 sits exactly one hour before w2 and stays inside the inclusive horizon;
	// anything older drops out
	hist := []Point{
		{Window: w0.Add(-30 * time.Minute), Count: 1000},
		{Window: w0, Count: 30},
		{Window: w1, Count: 10},
	}
	v := Compute(cfg, Point{Window: w2, Count: 20}, 20, hist)

	// mean of {30, 10, 20}
	if !almost(v.MovingAvg, 20) {
		t.Fatalf("MovingAvg = %v, want 20", v.MovingAvg)
	}
}

func TestCompute_StreakGrowth(t *testing.T) {
	cfg := DefaultConfig()

	up := []Point{{Window: w0, Count: 2}, {Window: w1, Count: 4}}
	v := Compute(cfg, Point{Window: w2, Count: 8}, 8, up)
	if v.StreakGrowth != 1 {
		t.Fatalf("strictly increasing counts should set StreakGrowth, got %+v", v)
	}

	down := []Point{{Window: w0, Count: 5}, {Window: w1, Count: 4}}
	v = Compute(cfg, Point{Window: w2, Count: 3}, 3, down)
	if v.StreakGrowth != 0 {
		t.Fatalf("decreasing counts should clear StreakGrowth, got %+v", v)
	}

	flat := []Point{{Window: w0, Count: 4}, {Window: w1, Count: 4}}
	v = Compute(cfg, Point{Window: w2, Count: 8}, 8, flat)
	if v.StreakGrowth != 0 {
		t.Fatalf("equal counts are not strictly increasing, got %+v", v)
	}

	short := []Point{{Window: w1, Count: 4}}
	v = Compute(cfg, Point{Window: w2, Count: 8}, 8, short)
	if v.StreakGrowth != 0 {
		t.Fatalf("fewer than streak points should clear StreakGrowth, got %+v", v)
	}
}

func TestCompute_StreakDuration(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CountThreshold = 3

	above := []Point{{Window: w0, Count: 5}, {Window: w1, Count: 4}}
	v := Compute(cfg, Point{Window: w2, Count: 6}, 6, above)
	if v.StreakDuration != 1 {
		t.Fatalf("counts above threshold should set StreakDuration, got %+v", v)
	}

	touch := []Point{{Window: w0, Count: 5}, {Window: w1, Count: 3}}
	v = Compute(cfg, Point{Window: w2, Count: 6}, 6, touch)
	if v.StreakDuration != 0 {
		t.Fatalf("a count at the threshold should clear StreakDuration, got %+v", v)
	}
}

func TestCompute_Acceleration(t *testing.T) {
	cfg := DefaultConfig()

	hist := []Point{{Window: w1, Count: 3}, {Window: w2, Count: 5}}
	v := Compute(cfg, Point{Window: w3, Count: 9}, 9, hist)
	// growth(t)=4, growth(t-1)=2
	if !almost(v.Acceleration, 2) {
		t.Fatalf("Acceleration = %v, want 2", v.Acceleration)
	}

	one := []Point{{Window: w2, Count: 5}}
	v = Compute(cfg, Point{Window: w3, Count: 9}, 9, one)
	if v.Acceleration != 0 {
		t.Fatalf("single prior point cannot produce acceleration, got %v", v.Acceleration)
	}
}

func TestCompute_RatioToTotal(t *testing.T) {
	cfg := DefaultConfig()

	v := Compute(cfg, Point{Window: w0, Count: 3}, 12, nil)
	if !almost(v.RatioToTotal, 0.25) {
		t.Fatalf("RatioToTotal = %v, want 0.25", v.RatioToTotal)
	}

	v = Compute(cfg, Point{Window: w0, Count: 0}, 0, nil)
	if v.RatioToTotal != 0 {
		t.Fatalf("zero total should give 0 ratio, got %v", v.RatioToTotal)
	}
}

func TestCompute_RatioInvariantAcrossCategories(t *testing.T) {
	cfg := DefaultConfig()
	counts := []int64{3, 5, 2}
	var total int64
	for _, c := range counts {
		total += c
	}

	var sum float64
	for _, c := range counts {
		v := Compute(cfg, Point{Window: w0, Count: c}, total, nil)
		sum += v.RatioToTotal
	}
	if !almost(sum, 1.0) {
		t.Fatalf("ratio_to_total should sum to 1 across categories, got %v", sum)
	}
}

func TestCompute_IgnoresCurrentAndFuturePoints(t *testing.T) {
	cfg := DefaultConfig()
	hist := []Point{
		{Window: w1, Count: 10},
		{Window: w2, Count: 999}, // same window as cur, must be ignored
		{Window: w3, Count: 999}, // future, must be ignored
	}
	v := Compute(cfg, Point{Window: w2, Count: 20}, 20, hist)

	if v.PrevCount == nil || *v.PrevCount != 10 {
		t.Fatalf("PrevCount = %v, want 10 (same-window point leaked)", v.PrevCount)
	}
	if !almost(v.MovingAvg, 15) {
		t.Fatalf("MovingAvg = %v, want 15", v.MovingAvg)
	}
}

func TestCompute_MonotonicScore(t *testing.T) {
	cfg := DefaultConfig()
	hist := []Point{{Window: w0, Count: 2}, {Window: w1, Count: 4}}

	base := Compute(cfg, Point{Window: w2, Count: 6}, 10, hist)
	higher := Compute(cfg, Point{Window: w2, Count: 9}, 13, hist)

	// raising cur_count raises growth, ratio, and acceleration together;
	// the composite must not drop
	if higher.Score < base.Score {
		t.Fatalf("score fell when components rose: %v -> %v", base.Score, higher.Score)
	}
}

func TestScore_WeightsApplied(t *testing.T) {
	w := Weights{StreakGrowth: 2, StreakDuration: 3}
	v := Vector{StreakGrowth: 1, StreakDuration: 1}
	if got := score(w, v); !almost(got, 5) {
		t.Fatalf("score = %v, want 5", got)
	}
}

func TestFinite(t *testing.T) {
	good := Vector{Score: 1.5}
	if !good.Finite() {
		t.Fatalf("finite vector misreported")
	}
	bad := Vector{LongTermRatio: math.NaN()}
	if bad.Finite() {
		t.Fatalf("NaN must not pass Finite")
	}
	inf := Vector{Acceleration: math.Inf(1)}
	if inf.Finite() {
		t.Fatalf("Inf must not pass Finite")
	}
}
