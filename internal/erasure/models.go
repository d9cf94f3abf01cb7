// Package erasure holds the structured outcome of a deletion run. The outcome
// is what gets audited and returned to the caller: per-domain, per-category
// lists of non-identifying record identifiers, never record content.
package erasure

import (
	"time"

	"datawipe/internal/adapter"
	id "datawipe/pkg/domain"
	dErrors "datawipe/pkg/domain-errors"
)

// RequestType records who or what initiated the erasure.
type RequestType string

const (
	RequestTypeUser      RequestType = "user"
	RequestTypeAdmin     RequestType = "admin"
	RequestTypeLifecycle RequestType = "lifecycle"
)

var validRequestTypes = map[RequestType]bool{
	RequestTypeUser:      true,
	RequestTypeAdmin:     true,
	RequestTypeLifecycle: true,
}

// ParseRequestType constructs a RequestType from external input.
func ParseRequestType(s string) (RequestType, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "request type cannot be empty")
	}
	t := RequestType(s)
	if !validRequestTypes[t] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid request type")
	}
	return t, nil
}

// Status says whether every registered domain completed its erasure.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusPartial   Status = "partial"
)

// DomainResult maps an action category (e.g. "subscriptions_deleted") to the
// ordered list of record identifiers it covered. Identifiers are display
// numbers or surrogate keys only - no names, addresses, free-text notes, IPs,
// or user agents ever land here.
type DomainResult map[string][]string

// Outcome aggregates what one erasure run did across all domains. Domains
// that never ran (because an earlier domain failed) are absent from Domains.
type Outcome struct {
	UserID      id.UserID
	RequestType RequestType
	Status      Status
	StartedAt   time.Time
	FinishedAt  time.Time
	Domains     map[string]DomainResult
	// FailedDomain names the domain whose erasure aborted, when Status is
	// StatusPartial.
	FailedDomain string
}

func NewOutcome(userID id.UserID, requestType RequestType, startedAt time.Time) *Outcome {
	return &Outcome{
		UserID:      userID,
		RequestType: requestType,
		Status:      StatusCompleted,
		StartedAt:   startedAt,
		Domains:     make(map[string]DomainResult),
	}
}

// Record appends one erase action under its domain and category, preserving
// the order actions happened in.
func (o *Outcome) Record(domain string, action adapter.Action) {
	result, ok := o.Domains[domain]
	if !ok {
		result = make(DomainResult)
		o.Domains[domain] = result
	}
	result[action.Category] = append(result[action.Category], action.RecordID)
}

// MarkPartial flags the outcome as incomplete because of the named domain.
func (o *Outcome) MarkPartial(domain string) {
	o.Status = StatusPartial
	o.FailedDomain = domain
}
