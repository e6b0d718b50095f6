package module

import (
	"buzzwatch/internal/platform/config"
)

// Options configures the counts module
type Options struct {
	HistoryLimit int
	KeywordLimit int
}

// FromConfig reads options from config.Conf
func FromConfig(cfg config.Conf) Options {
	cf := cfg.Prefix("CORE_COUNTS_")
	return Options{
		HistoryLimit: cf.MayInt("HISTORY_LIMIT", 16),
		KeywordLimit: cf.MayInt("KEYWORD_LIMIT", 100),
	}
}
