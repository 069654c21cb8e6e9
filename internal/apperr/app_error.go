package apperr

import "github.com/tuanvumaihuynh/storefront/pkg/zerror"

const (
	ValidationErrorCode       = "VALIDATION_FAILED"
	InvalidSortFieldErrorCode = "INVALID_SORT_FIELD"
	InvalidParamErrorCode     = "INVALID_PARAMETER"
	InvalidBodyErrorCode      = "INVALID_BODY"
	ProductNotFoundErrorCode  = "PRODUCT_NOT_FOUND"
	SaleNotFoundErrorCode     = "SALE_NOT_FOUND"
	UserNotFoundErrorCode     = "USER_NOT_FOUND"
	InvalidCredentialsCode    = "INVALID_CREDENTIALS"
	MissingTokenErrorCode     = "MISSING_TOKEN"
	InvalidTokenErrorCode     = "INVALID_TOKEN"
	ForbiddenErrorCode        = "FORBIDDEN"
	UsernameTakenErrorCode    = "USERNAME_TAKEN"
	IdentityErrorCode         = "IDENTITY_FAILURE"
	UpdateFailedErrorCode     = "UPDATE_FAILED"
)

var (
	ValidationErr       = zerror.NewValidationFailed(ValidationErrorCode, "validation error")
	InvalidSortFieldErr = zerror.NewBadRequest(InvalidSortFieldErrorCode, "invalid sort field")
	InvalidParamErr     = zerror.NewBadRequest(InvalidParamErrorCode, "invalid parameter")
	InvalidBodyErr      = zerror.NewBadRequest(InvalidBodyErrorCode, "invalid request body")

	ProductNotFoundErr = zerror.NewNotFound(ProductNotFoundErrorCode, "product not found")
	SaleNotFoundErr    = zerror.NewNotFound(SaleNotFoundErrorCode, "sale not found")
	UserNotFoundErr    = zerror.NewNotFound(UserNotFoundErrorCode, "user not found")

	// InvalidCredentialsErr never tells whether the username or the password was wrong.
	InvalidCredentialsErr = zerror.NewUnauthorized(InvalidCredentialsCode, "invalid username or password")
	MissingTokenErr       = zerror.NewUnauthorized(MissingTokenErrorCode, "missing bearer token")
	InvalidTokenErr       = zerror.NewUnauthorized(InvalidTokenErrorCode, "invalid or expired token")
	ForbiddenErr          = zerror.NewForbidden(ForbiddenErrorCode, "insufficient role")

	UsernameTakenErr = zerror.NewConflict(UsernameTakenErrorCode, "username or email already taken")
	IdentityErr      = zerror.NewConflict(IdentityErrorCode, "identity provider rejected the request")

	UpdateFailedErr = zerror.NewInternalServerError(UpdateFailedErrorCode, "no rows were affected")
)
