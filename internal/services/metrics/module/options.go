package module

import (
	"buzzwatch/internal/platform/config"
)

// Options configures the metrics module
type Options struct {
	HardLimit int
}

// FromConfig reads options from config.Conf
func FromConfig(cfg config.Conf) Options {
	mf := cfg.Prefix("CORE_METRICS_")
	return Options{
		HardLimit: mf.MayInt("HARD_LIMIT", 500),
	}
}
