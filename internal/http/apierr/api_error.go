package apierr

import (
	"errors"
	"net/http"
	"strings"

	govalidator "github.com/go-playground/validator/v10"

	"github.com/tuanvumaihuynh/storefront/internal/apperr"
	"github.com/tuanvumaihuynh/storefront/pkg/validator"
	"github.com/tuanvumaihuynh/storefront/pkg/zerror"
)

// FieldError describes one violated rule of a request.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors is a validation failure that was detected outside of the
// service layer, such as OpenAPI request validation.
type FieldErrors []FieldError

func (e FieldErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fe.Field+": "+fe.Message)
	}
	return strings.Join(msgs, "; ")
}

// ErrorResponse is the error response for the API.
type ErrorResponse struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details *[]FieldError `json:"details,omitempty"`

	// StatusCode is the status code for the error response.
	StatusCode int `json:"-"`
}

func New(err error) ErrorResponse {
	return errorToErrorResponse(err)
}

var InternalServerErr = ErrorResponse{
	Code:       "INTERNAL_SERVER_ERROR",
	Message:    "an unknown error occurred",
	StatusCode: http.StatusInternalServerError,
}

func errorToErrorResponse(err error) ErrorResponse {
	var validationErrs govalidator.ValidationErrors
	if errors.As(err, &validationErrs) {
		details := make([]FieldError, len(validationErrs))
		for i, fe := range validationErrs {
			details[i] = FieldError{
				Field:   fieldPath(fe),
				Message: validator.ValidationErrorMessage(fe),
			}
		}
		return validationResponse(details)
	}

	var fieldErrs FieldErrors
	if errors.As(err, &fieldErrs) {
		return validationResponse(fieldErrs)
	}

	var zErr zerror.ZError
	if errors.As(err, &zErr) {
		status := ZErrorStatusToHTTPStatus(zErr.Status())
		if status >= http.StatusInternalServerError {
			res := InternalServerErr
			res.Code = zErr.Code()
			res.StatusCode = status
			return res
		}

		return ErrorResponse{
			Code:       zErr.Code(),
			Message:    zErr.Msg(),
			StatusCode: status,
		}
	}

	return InternalServerErr
}

func validationResponse(details []FieldError) ErrorResponse {
	return ErrorResponse{
		Code:       apperr.ValidationErrorCode,
		Message:    "validation error",
		Details:    &details,
		StatusCode: http.StatusBadRequest,
	}
}

// fieldPath drops the top-level struct name from the namespace, so nested
// fields read as "Items[0].Quantity".
func fieldPath(fe govalidator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func ZErrorStatusToHTTPStatus(status zerror.Status) int {
	switch status {
	case zerror.StatusUnauthorized:
		return http.StatusUnauthorized
	case zerror.StatusForbidden:
		return http.StatusForbidden
	case zerror.StatusNotFound:
		return http.StatusNotFound
	case zerror.StatusUnprocessableEntity:
		return http.StatusUnprocessableEntity
	case zerror.StatusConflict:
		return http.StatusConflict
	case zerror.StatusTooManyRequests:
		return http.StatusTooManyRequests
	case zerror.StatusBadRequest:
		return http.StatusBadRequest
	case zerror.StatusValidationFailed:
		return http.StatusBadRequest
	case zerror.StatusUnknown, zerror.StatusInternalServerError:
		return http.StatusInternalServerError
	case zerror.StatusTimeout:
		return http.StatusGatewayTimeout
	case zerror.StatusNotImplemented:
		return http.StatusNotImplemented
	case zerror.StatusBadGateway:
		return http.StatusBadGateway
	case zerror.StatusServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
