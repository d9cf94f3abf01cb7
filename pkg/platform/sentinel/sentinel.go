package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and domain adapters return
// these (optionally wrapped) so orchestrators can translate them into domain
// errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist in store
// - ErrConflict: write raced another writer
// - ErrUnavailable: store temporarily unreachable (includes call timeouts)
// - ErrConstraintViolated: referential constraint broken, e.g. a dependent
//   record still references a parent that should already be gone
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrUnavailable        = errors.New("unavailable")
	ErrConstraintViolated = errors.New("constraint violated")
)
