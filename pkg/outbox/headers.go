// Package outbox carries request context across the outbox: from the request
// that enqueues an event, through the relay, to the consumer of the record.
package outbox

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/tuanvumaihuynh/storefront/pkg/correlationid"
)

// ContentTypeHeader names the payload encoding. Events are always JSON.
const ContentTypeHeader = "Content-Type"

// Headers are stored with an outbox message and copied onto the published
// record unchanged.
type Headers map[string]string

// HeadersFromContext captures the trace context and correlation ID of ctx.
func HeadersFromContext(ctx context.Context) Headers {
	h := Headers{ContentTypeHeader: "application/json"}

	otel.GetTextMapPropagator().Inject(ctx, propagation.MapCarrier(h))

	if id, ok := correlationid.FromContext(ctx); ok {
		h[correlationid.Header] = id
	}

	return h
}

// Context returns ctx extended with the trace context and correlation ID
// found in h.
func (h Headers) Context(ctx context.Context) context.Context {
	ctx = otel.GetTextMapPropagator().Extract(ctx, propagation.MapCarrier(h))

	if id := h[correlationid.Header]; id != "" {
		ctx = correlationid.NewContext(ctx, id)
	}

	return ctx
}
