// Package subscriptions is the domain adapter for the subscription billing
// system: subscriptions, the invoices raised for them, and the credit notes
// keyed to those invoices. Credit notes reference invoices and invoices
// reference subscriptions, so erasure must walk that chain leaf-first.
package subscriptions

import (
	"time"

	id "datawipe/pkg/domain"
)

// PayState is a subscription's payment lifecycle state.
type PayState string

const (
	// PayStateFailed - the transaction never settled. Safe to hard-delete.
	PayStateFailed PayState = "N"

	// PayStateCompleted - settled and possibly tax-relevant. Anonymized, not
	// deleted.
	PayStateCompleted PayState = "C"

	// PayStateCanceled - was settled then canceled. Anonymized like completed.
	PayStateCanceled PayState = "X"

	// PayStatePending - payment still in flight.
	PayStatePending PayState = "P"
)

// Settled reports whether the subscription represents money that actually
// moved, which is what the settlement hold and the erase policy care about.
func (p PayState) Settled() bool {
	return p == PayStateCompleted || p == PayStateCanceled
}

// Subscription is one subscription transaction record.
type Subscription struct {
	ID           int64
	UserID       id.UserID
	Level        string
	PayState     PayState
	Processor    string
	ProcessorKey string
	IP           string
	UserAgent    string
	Notes        string
	CreatedAt    time.Time
}

// Invoice is raised against one subscription. DisplayNumber is the customer
// facing invoice number and the only identifier audit output may carry.
type Invoice struct {
	DisplayNumber  string
	SubscriptionID int64
	UserID         id.UserID
	IssuedAt       time.Time
}

// CreditNote reverses an invoice. Keyed to the invoice it reverses.
type CreditNote struct {
	DisplayNumber string
	InvoiceNumber string
	IssuedAt      time.Time
}
