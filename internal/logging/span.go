package logging

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Span marks a multi-step unit of work within a request, such as a media
// publish that uploads to object storage before writing the video record.
type Span struct {
	op     string
	logger *slog.Logger
	start  time.Time
}

// StartSpan opens a span named after the operation and returns a derived
// context whose logger carries the span metadata. A trace id is minted when
// the context does not already carry one, so spans started outside the
// request middleware still correlate.
func StartSpan(ctx context.Context, op string) (context.Context, *Span) {
	if ctx == nil {
		ctx = context.Background()
	}

	logger := FromContext(ctx)

	traceID := TraceIDFromContext(ctx)
	if traceID == "" {
		traceID = uuid.NewString()
		ctx = WithTraceID(ctx, traceID)
		logger = logger.With(slog.String("trace_id", traceID))
	}

	spanID := uuid.NewString()
	attrs := []any{
		slog.String("span_id", spanID),
		slog.String("op", op),
	}
	if parent := SpanIDFromContext(ctx); parent != "" {
		attrs = append(attrs, slog.String("parent_span_id", parent))
	}
	logger = logger.With(attrs...)

	ctx = WithLogger(ctx, logger)
	ctx = WithSpanID(ctx, spanID)

	return ctx, &Span{op: op, logger: logger, start: time.Now()}
}

// End emits the completion entry for the unit of work.
func (s *Span) End() {
	if s == nil {
		return
	}
	s.logger.Info("operation completed", slog.Duration("elapsed", time.Since(s.start)))
}
