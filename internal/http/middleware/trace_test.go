package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/tuanvumaihuynh/storefront/internal/http/middleware"
)

func TestTrace(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	r := chi.NewRouter()
	r.Use(middleware.Trace(provider.Tracer("test")))
	r.Get("/api/products/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Get("/api/sales", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {})

	for _, path := range []string{"/api/products/1", "/api/products/2", "/api/sales", "/healthz"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	spans := recorder.Ended()
	require.Len(t, spans, 3)

	assert.Equal(t, "GET /api/products/{id}", spans[0].Name())
	assert.Equal(t, "GET /api/products/{id}", spans[1].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.String("http.route", "/api/products/{id}"))
	assert.Contains(t, spans[0].Attributes(), attribute.Int("http.status_code", http.StatusNotFound))
	assert.Equal(t, codes.Unset, spans[0].Status().Code)

	assert.Equal(t, "GET /api/sales", spans[2].Name())
	assert.Equal(t, codes.Error, spans[2].Status().Code)
}
