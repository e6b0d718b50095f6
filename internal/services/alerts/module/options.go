package module

import (
	"time"

	"buzzwatch/internal/platform/config"
)

// Options configures the alerts module
type Options struct {
	BrokerURL string
	Queue     string
	Batch     int
	Interval  time.Duration
	HardLimit int
}

// FromConfig reads options from config.Conf
// An empty broker URL disables the AMQP handoff; payloads stop at the log
func FromConfig(cfg config.Conf) Options {
	mq := cfg.Prefix("SERVICE_AMQP_")
	df := cfg.Prefix("CORE_DISPATCH_")
	return Options{
		BrokerURL: mq.MayString("URL", ""),
		Queue:     mq.MayString("QUEUE", "buzzwatch.alerts"),
		Batch:     df.MayInt("BATCH", 100),
		Interval:  df.MayDuration("INTERVAL", 30*time.Second),
		HardLimit: df.MayInt("HARD_LIMIT", 200),
	}
}
