// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"github.com/google/uuid"

	dErrors "datawipe/pkg/domain-errors"
)

// Distinct ID types - compiler prevents passing a UserID where an AuditEntryID
// is expected.
type (
	// UserID identifies the data subject. It is opaque to the orchestration
	// core: it names whose data we operate on and is never written into
	// anonymized record payloads.
	UserID uuid.UUID

	// AuditEntryID identifies a single append-only audit trail entry.
	AuditEntryID uuid.UUID
)

// Parse functions - use at trust boundaries (handlers, API inputs).

func ParseUserID(s string) (UserID, error) {
	id, err := parseUUID(s, "user ID")
	return UserID(id), err
}

func ParseAuditEntryID(s string) (AuditEntryID, error) {
	id, err := parseUUID(s, "audit entry ID")
	return AuditEntryID(id), err
}

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	return id, nil
}

// New functions - for creating fresh identifiers.

func NewUserID() UserID { return UserID(uuid.New()) }

func NewAuditEntryID() AuditEntryID { return AuditEntryID(uuid.New()) }

// String methods - for logging and debugging.

func (id UserID) String() string { return uuid.UUID(id).String() }

func (id AuditEntryID) String() string { return uuid.UUID(id).String() }

// IsNil reports whether the identifier is the zero UUID.

func (id UserID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

func (id AuditEntryID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
