package log

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/tuanvumaihuynh/storefront/internal/auth"
	"github.com/tuanvumaihuynh/storefront/pkg/correlationid"
)

var _ slog.Handler = (*contextHandler)(nil)

// contextHandler adds the request scoped values of ctx to every record:
// correlation id, trace and span ids, and the authenticated user.
type contextHandler struct {
	next slog.Handler
}

func newContextHandler(next slog.Handler) *contextHandler {
	return &contextHandler{next: next}
}

func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(contextAttrs(ctx)...)
	return h.next.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return newContextHandler(h.next.WithAttrs(attrs))
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return newContextHandler(h.next.WithGroup(name))
}

func contextAttrs(ctx context.Context) []slog.Attr {
	var attrs []slog.Attr

	if correlationID, ok := correlationid.FromContext(ctx); ok {
		attrs = append(attrs, slog.String("correlation_id", correlationID))
	}

	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		attrs = append(attrs,
			slog.String("trace_id", spanCtx.TraceID().String()),
			slog.String("span_id", spanCtx.SpanID().String()),
		)
	}

	if claims, ok := auth.FromContext(ctx); ok {
		attrs = append(attrs, slog.String("user_id", claims.Subject))
	}

	return attrs
}
