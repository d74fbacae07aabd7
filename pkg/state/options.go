package state

import (
	"log/slog"

	"go.opentelemetry.io/otel"
)

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithMaxDepth sets the recursion ceiling for value sanitization and the
// maximum number of path segments. Values <= 0 keep the default.
func WithMaxDepth(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxDepth = n
		}
	}
}

// WithMaxSubscribers sets the global subscriber-count ceiling.
// Registration beyond the ceiling is refused with a no-op unsubscribe.
// Values <= 0 keep the default.
func WithMaxSubscribers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxSubscribers = n
		}
	}
}

// WithMaxUpdatesPerCycle sets the per-burst notification budget, the
// circuit breaker for mutation/notification feedback loops.
// Values <= 0 keep the default.
func WithMaxUpdatesPerCycle(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxUpdatesPerCycle = n
		}
	}
}

// WithLogger sets the structured logger used for all engine diagnostics.
// The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithTracing enables OpenTelemetry spans around notification bursts.
// The tracer is resolved from the global tracer provider; configure the
// provider in main() before constructing the engine.
func WithTracing(tracerName string) Option {
	return func(e *Engine) {
		e.tracer = otel.Tracer(tracerName)
	}
}
