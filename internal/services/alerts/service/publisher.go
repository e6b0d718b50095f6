package service

import (
	"context"

	"buzzwatch/internal/platform/logger"
)

// Publisher hands one rendered alert payload to the outside world
type Publisher interface {
	Publish(ctx context.Context, body []byte) error
	Close() error
}

// LogPublisher is the no-broker fallback: payloads stop at the log
type LogPublisher struct{}

// Publish implements Publisher
func (LogPublisher) Publish(_ context.Context, body []byte) error {
	logger.Named("alert-dispatch").Info().RawJSON("payload", body).Msg("alert (no broker configured)")
	return nil
}

// Close implements Publisher
func (LogPublisher) Close() error { return nil }
