package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/tuanvumaihuynh/storefront/internal/config"
	"github.com/tuanvumaihuynh/storefront/internal/telemetry"
)

func TestInitTracerWithoutCollector(t *testing.T) {
	ctx := context.Background()

	cleanup, err := telemetry.InitTracer(ctx, config.Otel{TraceIDRatio: 1})
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(ctx, "op")
	assert.True(t, span.SpanContext().IsValid())
	assert.True(t, span.SpanContext().IsSampled())
	span.End()

	assert.NoError(t, cleanup(ctx))
	assert.NotEmpty(t, otel.GetTextMapPropagator().Fields())
}
