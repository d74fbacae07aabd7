package state

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// startBurstSpan opens a span covering one notification burst.
// Returns nil when tracing is not enabled.
func (e *Engine) startBurstSpan(path string) trace.Span {
	if e.tracer == nil {
		return nil
	}
	_, span := e.tracer.Start(
		context.Background(),
		"state.burst",
		trace.WithAttributes(attribute.String("state.path", path)),
	)
	return span
}

// endBurstSpan records the burst outcome and closes the span.
func (e *Engine) endBurstSpan(span trace.Span, calls int, aborted bool) {
	if span == nil {
		return
	}
	span.SetAttributes(attribute.Int("state.notify_calls", calls))
	if aborted {
		span.SetStatus(codes.Error, ErrBudgetExceeded.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
