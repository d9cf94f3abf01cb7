package subscriptions

import (
	"context"
	"time"

	id "datawipe/pkg/domain"
)

// Store is the persistence contract for the subscription domain.
//
// Error contract:
// - lookups return sentinel.ErrNotFound when the record does not exist
// - DeleteInvoice returns sentinel.ErrConstraintViolated while a credit note
//   still references the invoice; same for DeleteSubscription and its invoice
// - infrastructure failures surface as sentinel.ErrUnavailable (wrapped)
type Store interface {
	ListByUser(ctx context.Context, userID id.UserID) ([]*Subscription, error)
	FindSubscription(ctx context.Context, subscriptionID int64) (*Subscription, error)
	UpdateSubscription(ctx context.Context, sub *Subscription) error
	DeleteSubscription(ctx context.Context, subscriptionID int64) error

	InvoiceForSubscription(ctx context.Context, subscriptionID int64) (*Invoice, error)
	DeleteInvoice(ctx context.Context, displayNumber string) error

	CreditNoteForInvoice(ctx context.Context, invoiceNumber string) (*CreditNote, error)
	DeleteCreditNote(ctx context.Context, displayNumber string) error

	// CountSettledSince serves the settlement-window hold: settled
	// subscriptions created at or after the cutoff.
	CountSettledSince(ctx context.Context, userID id.UserID, since time.Time) (int, error)
}
