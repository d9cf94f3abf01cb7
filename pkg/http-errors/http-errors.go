package httpErrors

import (
	"net/http"

	dErrors "datawipe/pkg/domain-errors"
)

// ToHTTPStatus maps a domain error code onto the HTTP status the transport
// layer should return. A hold veto is a policy refusal, not a server fault,
// so it maps to 422 rather than 5xx; store unavailability is the only code
// callers may retry.
func ToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeInvalidInput, dErrors.CodeBadRequest:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeHoldVeto:
		return http.StatusUnprocessableEntity
	case dErrors.CodeOperationConflict:
		return http.StatusConflict
	case dErrors.CodeStoreUnavailable:
		return http.StatusServiceUnavailable
	case dErrors.CodeConstraintViolated, dErrors.CodeAuditWriteFailed:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
