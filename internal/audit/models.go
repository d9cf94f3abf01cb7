// Package audit keeps the append-only record of what erasure did. Entries
// carry counts, categories, and non-identifying record ids - never names,
// addresses, notes, IPs, or user agents - so the trail itself cannot leak
// what it exists to prove was removed.
package audit

import (
	"time"

	id "datawipe/pkg/domain"
)

// Results maps domain name to category to the ordered record id list that
// category covered. String content is limited to fixed category labels and
// identifiers.
type Results map[string]map[string][]string

// Entry is one audit trail record. Immutable once written: no code path may
// update, reorder, or delete it, and the service layer denies every mutating
// operation unconditionally.
type Entry struct {
	ID          id.AuditEntryID
	Timestamp   time.Time
	UserID      id.UserID
	Actor       string
	RequestType string
	Status      string
	Results     Results
}
