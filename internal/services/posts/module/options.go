package module

import (
	"time"

	"buzzwatch/internal/platform/config"
)

// Options configures the posts module
type Options struct {
	Window    time.Duration
	HardLimit int
}

// FromConfig reads options from config.Conf
// The window width is shared with the transform engine on purpose; a posts row
// bucketed under one width is unreadable under another
func FromConfig(cfg config.Conf) Options {
	tf := cfg.Prefix("CORE_TRANSFORM_")
	pf := cfg.Prefix("CORE_POSTS_")
	return Options{
		Window:    tf.MayDuration("WINDOW", 30*time.Minute),
		HardLimit: pf.MayInt("HARD_LIMIT", 5000),
	}
}
