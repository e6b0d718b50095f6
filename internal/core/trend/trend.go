// Package trend computes the per-window metric vector for one category
// key from its current count and prior-window history. All functions are
// pure; history handling and persistence live in the transform service
package trend

import (
	"math"
	"time"
)

// Point is one observed window count for a key
type Point struct {
	Window time.Time
	Count  int64
}

// Weights is the composite score vector, one weight per metric component
type Weights struct {
	Growth         float64
	LongTermRatio  float64
	RatioToTotal   float64
	Volatility     float64
	Acceleration   float64
	StreakGrowth   float64
	StreakDuration float64
}

// DefaultWeights mirrors the original scoring configuration
var DefaultWeights = Weights{
	Growth:        0.4,
	LongTermRatio: 0.2,
	RatioToTotal:  0.2,
	Volatility:    0.1,
	Acceleration:  0.1,
}

// Config carries the engine knobs resolved for one key
type Config struct {
	// Lookback is the moving average and volatility horizon, inclusive
	Lookback time.Duration
	// Streak is how many consecutive windows the streak checks cover
	Streak int
	// CountThreshold is the bar each streak window must clear for streak_duration
	CountThreshold int64
	Weights        Weights
}

// DefaultConfig returns the engine defaults: 1h lookback, 3-window streaks
func DefaultConfig() Config {
	return Config{Lookback: time.Hour, Streak: 3, Weights: DefaultWeights}
}

// Vector is the computed metric set for one key at one window
type Vector struct {
	CurTime   time.Time
	PrevTime  *time.Time
	CurCount  int64
	PrevCount *int64

	ShortTermGrowth float64
	MovingAvg       float64
	LongTermRatio   float64
	Volatility      float64
	StreakGrowth    int
	StreakDuration  int
	RatioToTotal    float64
	Acceleration    float64
	Score           float64
}

// Finite reports whether every float component is a real number.
// A false result marks the record as a numeric defect downstream
func (v Vector) Finite() bool {
	for _, f := range []float64{
		v.ShortTermGrowth,
		v.MovingAvg,
		v.LongTermRatio,
		v.Volatility,
		v.RatioToTotal,
		v.Acceleration,
		v.Score,
	} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// Compute derives the vector for cur given its history and the group total.
// History must be ordered ascending by window; points at or after cur.Window
// are ignored so a run can never observe its own appends
func Compute(cfg Config, cur Point, total int64, history []Point) Vector {
	hist := clipHistory(cur.Window, history)

	v := Vector{CurTime: cur.Window, CurCount: cur.Count}

	// prev_count, prev_time: most recent prior point
	if n := len(hist); n > 0 {
		last := hist[n-1]
		pt := last.Window
		pc := last.Count
		v.PrevTime = &pt
		v.PrevCount = &pc
	}

	// short_term_growth: delta to prev, cold start reports the raw count
	if v.PrevCount != nil {
		v.ShortTermGrowth = float64(cur.Count) - float64(*v.PrevCount)
	} else {
		v.ShortTermGrowth = float64(cur.Count)
	}

	// moving average and volatility share the lookback sample, current inclusive
	sample := lookbackSample(cfg.Lookback, cur, hist)
	if len(sample) < 2 {
		v.MovingAvg = float64(cur.Count)
	} else {
		v.MovingAvg = mean(sample)
	}
	if v.MovingAvg > 0 {
		v.LongTermRatio = float64(cur.Count) / v.MovingAvg
	}
	if len(sample) >= 2 {
		v.Volatility = sampleStddev(sample)
	}

	// streaks need the full streak span present
	streak := cfg.Streak
	if streak <= 0 {
		streak = 3
	}
	if len(hist) >= streak-1 {
		span := make([]int64, 0, streak)
		for _, p := range hist[len(hist)-(streak-1):] {
			span = append(span, p.Count)
		}
		span = append(span, cur.Count)

		v.StreakGrowth = 1
		for i := 1; i < len(span); i++ {
			if span[i] <= span[i-1] {
				v.StreakGrowth = 0
				break
			}
		}
		v.StreakDuration = 1
		for _, c := range span {
			if c <= cfg.CountThreshold {
				v.StreakDuration = 0
				break
			}
		}
	}

	// ratio_to_total against the all-category group count
	if total > 0 {
		v.RatioToTotal = float64(cur.Count) / float64(total)
	}

	// acceleration: growth(t) - growth(t-1), needs two prior points
	if len(hist) >= 2 {
		prevGrowth := float64(hist[len(hist)-1].Count) - float64(hist[len(hist)-2].Count)
		v.Acceleration = v.ShortTermGrowth - prevGrowth
	}

	v.Score = score(cfg.Weights, v)
	return v
}

// score folds the weight vector over the metric components
func score(w Weights, v Vector) float64 {
	return w.Growth*v.ShortTermGrowth +
		w.LongTermRatio*v.LongTermRatio +
		w.RatioToTotal*v.RatioToTotal +
		w.Volatility*v.Volatility +
		w.Acceleration*v.Acceleration +
		w.StreakGrowth*float64(v.StreakGrowth) +
		w.StreakDuration*float64(v.StreakDuration)
}

// clipHistory drops points at or after the current window
func clipHistory(cur time.Time, history []Point) []Point {
	n := len(history)
	for n > 0 && !history[n-1].Window.Before(cur) {
		n--
	}
	return history[:n]
}

// lookbackSample returns counts of points with window >= cur-lookback, plus cur
func lookbackSample(lookback time.Duration, cur Point, hist []Point) []float64 {
	if lookback <= 0 {
		lookback = time.Hour
	}
	floor := cur.Window.Add(-lookback)
	out := make([]float64, 0, len(hist)+1)
	for _, p := range hist {
		if !p.Window.Before(floor) {
			out = append(out, float64(p.Count))
		}
	}
	out = append(out, float64(cur.Count))
	return out
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// sampleStddev is the n-1 denominator standard deviation
func sampleStddev(xs []float64) float64 {
	n := len(xs)
	if n < 2 {
		return 0
	}
	m := mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1))
}
