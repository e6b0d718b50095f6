package module

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"buzzwatch/internal/core/trend"
	"buzzwatch/internal/platform/config"
	"buzzwatch/internal/services/transform/guardrails"
	"buzzwatch/internal/services/transform/service"
)

// Options are CLI-level overrides applied on top of config
type Options struct {
	Workers  int
	PageSize int
	DryRun   bool
}

// FromConfig reads the engine knobs under CORE_TRANSFORM_ plus the shared
// tokenizer and wordbag settings
func FromConfig(cfg config.Conf) service.Config {
	tr := cfg.Prefix("CORE_TRANSFORM_")
	tok := cfg.Prefix("CORE_TOKEN_")
	wb := cfg.Prefix("CORE_WORDBAG_")

	out := service.Config{
		Window:         tr.MayDuration("WINDOW", 30*time.Minute),
		Lookback:       tr.MayDuration("LOOKBACK", time.Hour),
		Streak:         tr.MayInt("STREAK", 3),
		Threshold:      tr.MayFloat64("THRESHOLD", 2.0),
		CountThreshold: int64(tr.MayInt("COUNT_THRESHOLD", 0)),
		Workers:        tr.MayInt("WORKERS", 2),
		PageSize:       tr.MayInt("PAGE_SIZE", 5000),
		DryRun:         tr.MayBool("DRY_RUN", false),
		StaleAfter:     tr.MayDuration("STALE_AFTER", 2*time.Hour),
		MinTokenLen:    tok.MayInt("MIN_LEN", 2),
		StopwordsPath:  tok.MayString("STOPWORDS_PATH", ""),
		WordbagPath:    wb.MayString("PATH", ""),
		Timeouts: guardrails.Timeouts{
			Pass: tr.MayDuration("PASS_TIMEOUT", 0),
			Read: tr.MayDuration("READ_TIMEOUT", 0),
			DB:   tr.MayDuration("DB_TIMEOUT", 0),
		},
	}
	out.Weights = parseWeights(tr.MayFloatCSV("WEIGHTS", nil))
	out.CategoryThresholds = parseThresholds(tr.MayCSV("CATEGORY_THRESHOLDS", nil))
	return out
}

// WatchFromConfig reads the scheduler knobs under CORE_WATCH_
func WatchFromConfig(cfg config.Conf, window time.Duration) service.WatchConfig {
	w := cfg.Prefix("CORE_WATCH_")
	return service.WatchConfig{
		Window:   window,
		Settle:   w.MayDuration("SETTLE", 2*time.Minute),
		Deadline: w.MayDuration("DEADLINE", 0),
		Resume:   w.MayBool("RESUME", true),
	}
}

// parseWeights maps the 7-value csv onto the score vector in declaration
// order: growth, long_term_ratio, ratio_to_total, volatility, acceleration,
// streak_growth, streak_duration
func parseWeights(xs []float64) trend.Weights {
	if len(xs) == 0 {
		return trend.DefaultWeights
	}
	if len(xs) != 7 {
		panic(fmt.Sprintf("CORE_TRANSFORM_WEIGHTS wants 7 values, got %d", len(xs)))
	}
	return trend.Weights{
		Growth:         xs[0],
		LongTermRatio:  xs[1],
		RatioToTotal:   xs[2],
		Volatility:     xs[3],
		Acceleration:   xs[4],
		StreakGrowth:   xs[5],
		StreakDuration: xs[6],
	}
}

// parseThresholds parses "category=score" pairs
func parseThresholds(items []string) map[string]float64 {
	if len(items) == 0 {
		return nil
	}
	out := make(map[string]float64, len(items))
	for _, it := range items {
		name, val, ok := strings.Cut(strings.TrimSpace(it), "=")
		if !ok {
			panic(fmt.Sprintf("CORE_TRANSFORM_CATEGORY_THRESHOLDS: bad pair %q", it))
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			panic(fmt.Sprintf("CORE_TRANSFORM_CATEGORY_THRESHOLDS: bad score in %q", it))
		}
		out[strings.ToLower(strings.TrimSpace(name))] = f
	}
	return out
}
