package store

import "context"

type (
	runIDKey  struct{}
	reqIDKey  struct{}
	dryRunKey struct{}
)

// WithRunID attaches a window-pass run id to the context
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunID retrieves a run id from context if present
func RunID(ctx context.Context) (string, bool) {
	v := ctx.Value(runIDKey{})
	if v == nil {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// WithDryRun marks the context so writers compute but skip persistence
func WithDryRun(ctx context.Context) context.Context {
	return context.WithValue(ctx, dryRunKey{}, true)
}

// IsDryRun reports if the context carries the dry-run marker
func IsDryRun(ctx context.Context) bool {
	v := ctx.Value(dryRunKey{})
	b, _ := v.(bool)
	return b
}

// WithRequestID attaches a request id to the context
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, reqIDKey{}, id)
}

// RequestID retrieves a request id from context if present
func RequestID(ctx context.Context) (string, bool) {
	v := ctx.Value(reqIDKey{})
	if v == nil {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}
