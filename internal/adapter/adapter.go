// Package adapter defines the contract every data domain implements so the
// erasure and export orchestrators can treat domains uniformly. An adapter
// knows how to enumerate, export, anonymize, and delete the records belonging
// to one user within its own domain and nothing else; cross-domain ordering is
// the orchestrator's job.
package adapter

import (
	"context"

	"datawipe/internal/export"
	id "datawipe/pkg/domain"
)

// Record is a single stored entity belonging to a domain. Implementations
// expose only what the orchestrator needs: a non-identifying identifier for
// audit output and the lifecycle state that drives the erase decision.
type Record interface {
	// RecordID returns an identifier safe to write into audit entries:
	// a display number or surrogate key, never a name, address, or note.
	RecordID() string

	// Lifecycle returns the record's lifecycle state (e.g. payment state).
	// EraseRecord must be deterministic given this value.
	Lifecycle() string
}

// ActionKind says what EraseRecord did to a record.
type ActionKind string

const (
	// ActionDeleted - the record was removed entirely.
	ActionDeleted ActionKind = "deleted"

	// ActionAnonymized - the record was kept but its identifying fields were
	// replaced or blanked.
	ActionAnonymized ActionKind = "anonymized"
)

// Action reports the outcome of erasing one record. Category is the domain's
// own audit bucket (e.g. "subscriptions_deleted"); RecordID repeats the
// non-identifying identifier so the audit trail can list exactly what was
// touched without disclosing content.
type Action struct {
	Kind          ActionKind
	Category      string
	RecordID      string
	FieldsCleared []string
}

// Adapter is implemented once per data domain.
//
// Error contract: operations fail with sentinel.ErrUnavailable or
// sentinel.ErrConstraintViolated (optionally wrapped). Adapters never retry
// internally; retries, if any, are orchestrator policy.
type Adapter interface {
	// Name returns the stable domain label used for registry ordering,
	// outcome partitioning, and export section naming.
	Name() string

	// Description returns the human-readable label for export sections.
	Description() string

	// ListUserRecords enumerates every top-level record belonging to the
	// user. No pagination: erasure correctness requires seeing all of them.
	ListUserRecords(ctx context.Context, userID id.UserID) ([]Record, error)

	// DependentsOf returns the records that must be erased before the given
	// record, in erasure order. Possibly empty, possibly recursive.
	DependentsOf(ctx context.Context, record Record) ([]Record, error)

	// EraseRecord deletes or anonymizes a single record. The decision is
	// domain policy but must be deterministic given the record's lifecycle
	// state.
	EraseRecord(ctx context.Context, record Record) (Action, error)

	// ExportUserRecords converts the user's records, dependents included,
	// into export sections, one per record kind the domain holds. Derived
	// secrets (payment tokens, raw credentials) are never included.
	ExportUserRecords(ctx context.Context, userID id.UserID) ([]export.Section, error)
}
