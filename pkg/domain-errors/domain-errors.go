package domainerrors

import "errors"

// Code represents a domain error category independent of transport layer.
// These codes describe what went wrong in business logic terms, not HTTP terms.
type Code string

const (
	CodeNotFound     Code = "not_found"
	CodeBadRequest   Code = "bad_request"
	CodeInvalidInput Code = "invalid_input"
	CodeInternal     Code = "internal_error"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"

	// Erasure/export taxonomy. The first two are the only ones a caller should
	// ever conflate at their peril: a hold veto means policy said no, a store
	// failure means the system is broken. Keep them distinct.

	// CodeHoldVeto - deletion is currently not permitted by a business rule.
	// Expected, user-facing, not a system failure.
	CodeHoldVeto Code = "hold_veto"

	// CodeStoreUnavailable - transient infrastructure failure. Retryable by
	// the caller; never retried internally.
	CodeStoreUnavailable Code = "store_unavailable"

	// CodeConstraintViolated - data-integrity problem, e.g. a dependent record
	// still references a supposedly-erased parent. Fatal to that domain's
	// erasure.
	CodeConstraintViolated Code = "record_constraint_violated"

	// CodeAuditWriteFailed - the erasure itself succeeded but the audit entry
	// could not be committed. Surfaced distinctly so operators can reconcile.
	CodeAuditWriteFailed Code = "audit_write_failed"

	// CodeOperationConflict - another erasure or export for the same user is
	// already in flight.
	CodeOperationConflict Code = "concurrent_operation_conflict"
)

// Error wraps domain or infrastructure failures with a stable code.
// It is transport-agnostic and can be used across service, store, and other layers.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

// Unwrap implements error unwrapping for error chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is enables errors.Is() to match errors by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new domain error with the given code and message.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap creates a new domain error wrapping an existing error.
// If the wrapped error is already a domain error, the original code is preserved.
func Wrap(err error, code Code, msg string) error {
	var existing *Error
	if errors.As(err, &existing) {
		// Preserve the original domain code, update message
		return &Error{Code: existing.Code, Message: msg, Err: err}
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode checks if an error is a domain error with the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
