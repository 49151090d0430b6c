// Package tracelog correlates zap log entries with X-Ray traces.
//
// AWS recommends including trace_id and span_id in log messages for trace-log
// correlation: CloudWatch Logs Insights can then filter logs by trace ID, and
// X-Ray can display correlated logs in the trace timeline.
package tracelog

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// With returns the logger annotated with the trace_id and span_id of the
// span active in ctx. Without an active span the logger is returned as is.
func With(ctx context.Context, logger *zap.Logger) *zap.Logger {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return logger
	}

	return logger.With(
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	)
}

// Error logs an error with trace context and records it on the active span,
// so it appears in both logs and the X-Ray timeline.
func Error(ctx context.Context, logger *zap.Logger, msg string, err error) {
	With(ctx, logger).Error(msg, zap.Error(err))

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.RecordError(err)
	}
}
