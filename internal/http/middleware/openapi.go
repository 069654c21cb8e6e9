package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers/legacy"

	"github.com/tuanvumaihuynh/storefront/internal/apperr"
	"github.com/tuanvumaihuynh/storefront/internal/http/apierr"
)

// ValidateRequest checks parameters and bodies of the requests described by
// doc. Requests without a matching operation are passed through untouched.
func ValidateRequest(doc *openapi3.T, onError ErrorHandlerFunc) (func(http.Handler) http.Handler, error) {
	router, err := legacy.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("create openapi router: %w", err)
	}

	opts := &openapi3filter.Options{
		AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
		MultiError:         true,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route, pathParams, err := router.FindRoute(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			if err := openapi3filter.ValidateRequest(r.Context(), &openapi3filter.RequestValidationInput{
				Request:    r,
				PathParams: pathParams,
				Route:      route,
				Options:    opts,
			}); err != nil {
				onError(w, r, apperr.ValidationErr.WrapParent(toFieldErrors(err)))
				return
			}

			next.ServeHTTP(w, r)
		})
	}, nil
}

func toFieldErrors(err error) apierr.FieldErrors {
	var out apierr.FieldErrors

	var walk func(err error)
	walk = func(err error) {
		switch e := err.(type) {
		case openapi3.MultiError:
			for _, inner := range e {
				walk(inner)
			}
		case *openapi3filter.RequestError:
			field := "body"
			if e.Parameter != nil {
				field = e.Parameter.Name
			}

			if multi, ok := e.Err.(openapi3.MultiError); ok {
				for _, inner := range multi {
					out = append(out, schemaFieldError(field, inner))
				}
				return
			}
			if e.Err != nil {
				out = append(out, schemaFieldError(field, e.Err))
				return
			}
			out = append(out, apierr.FieldError{Field: field, Message: e.Reason})
		case *openapi3filter.SecurityRequirementsError:
			// authentication is enforced by the Authenticate middleware
		default:
			out = append(out, apierr.FieldError{Field: "request", Message: err.Error()})
		}
	}
	walk(err)

	return out
}

func schemaFieldError(field string, err error) apierr.FieldError {
	schemaErr, ok := err.(*openapi3.SchemaError)
	if !ok {
		return apierr.FieldError{Field: field, Message: err.Error()}
	}

	if pointer := schemaErr.JSONPointer(); len(pointer) > 0 && field == "body" {
		field = strings.Join(pointer, ".")
	}
	return apierr.FieldError{Field: field, Message: schemaErr.Reason}
}
