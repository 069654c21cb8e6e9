package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/tuanvumaihuynh/storefront/internal/apperr"
	"github.com/tuanvumaihuynh/storefront/internal/auth"
	"github.com/tuanvumaihuynh/storefront/internal/model"
)

// ErrorHandlerFunc writes err as the response of r.
type ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
}

// Authenticate requires a valid bearer token and stores its claims in the
// request context.
func Authenticate(authenticator Authenticator, onError ErrorHandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := authenticator.Authenticate(r.Context(), bearerToken(r))
			if err != nil {
				onError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.NewContext(r.Context(), claims)))
		})
	}
}

// OptionalAuthenticate is like Authenticate but lets anonymous callers
// through. A token that is present must still be valid.
func OptionalAuthenticate(authenticator Authenticator, onError ErrorHandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := authenticator.Authenticate(r.Context(), token)
			if err != nil {
				onError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.NewContext(r.Context(), claims)))
		})
	}
}

// RequireRole lets through callers holding at least one of roles. It must be
// mounted after Authenticate.
func RequireRole(onError ErrorHandlerFunc, roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := auth.FromContext(r.Context())
			if !ok {
				onError(w, r, apperr.MissingTokenErr)
				return
			}

			if !claims.HasRole(roles...) {
				onError(w, r, apperr.ForbiddenErr)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
