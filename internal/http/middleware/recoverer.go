package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tuanvumaihuynh/storefront/internal/http/apierr"
)

// Recoverer turns a handler panic into a 500 INTERNAL_SERVER_ERROR body,
// logging the stack and failing the request span. http.ErrAbortHandler is
// re-panicked so the server aborts the response.
func Recoverer(logger *slog.Logger) func(http.Handler) http.Handler {
	body, err := json.Marshal(apierr.InternalServerErr)
	if err != nil {
		panic(err)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if err, ok := rvr.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rvr)
				}

				ctx := r.Context()
				span := trace.SpanFromContext(ctx)
				span.SetStatus(codes.Error, fmt.Sprintf("panic: %v", rvr))

				logger.ErrorContext(ctx, "handler panicked",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Any("panic", rvr),
					slog.String("stack", string(debug.Stack())),
				)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				//nolint:errcheck
				w.Write(body)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
