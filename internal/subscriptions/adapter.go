package subscriptions

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"datawipe/internal/adapter"
	"datawipe/internal/export"
	"datawipe/internal/platform/privacy"
	id "datawipe/pkg/domain"
	"datawipe/pkg/platform/sentinel"
)

// DomainName labels this adapter in registries, outcomes, and export
// sections.
const DomainName = "subscriptions"

// Audit categories. Deleted and anonymized subscriptions are reported
// separately so the trail shows which records still exist in redacted form.
const (
	CategorySubscriptionsDeleted    = "subscriptions_deleted"
	CategorySubscriptionsAnonymized = "subscriptions_anonymized"
	CategoryInvoices                = "invoices"
	CategoryCreditNotes             = "creditnotes"
)

// WipedProcessor replaces the payment processor name on anonymized
// subscriptions, marking the record as redacted without deleting it.
const WipedProcessor = "DATA_COMPLIANCE_WIPED"

// wipedNotice replaces free-text notes, which may contain anything the user
// or an operator typed in.
const wipedNotice = "This record has been pseudonymized per GDPR requirements"

// Adapter implements the data-domain contract for the subscription billing
// system. Settled subscriptions are anonymized in place because the retained
// transaction must stay reconcilable with accounting records; everything else
// is deleted outright, dependents first.
type Adapter struct {
	store Store
	now   func() time.Time
}

// Option configures the adapter.
type Option func(*Adapter)

// WithClock overrides the wall clock used when minting wipe keys.
func WithClock(now func() time.Time) Option {
	return func(a *Adapter) {
		a.now = now
	}
}

func NewAdapter(st Store, opts ...Option) *Adapter {
	a := &Adapter{
		store: st,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Adapter) Name() string {
	return DomainName
}

func (a *Adapter) Description() string {
	return "Subscriptions, invoices and credit notes"
}

func (a *Adapter) ListUserRecords(ctx context.Context, userID id.UserID) ([]adapter.Record, error) {
	subs, err := a.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}

	records := make([]adapter.Record, 0, len(subs))
	for _, sub := range subs {
		records = append(records, subscriptionRecord{sub: sub})
	}
	return records, nil
}

// DependentsOf resolves the records that block erasure of the given one, in
// the order they must be erased: the credit note reverses the invoice and the
// invoice references the subscription, so the chain unwinds leaf-first.
func (a *Adapter) DependentsOf(ctx context.Context, record adapter.Record) ([]adapter.Record, error) {
	sub, ok := record.(subscriptionRecord)
	if !ok {
		// Invoices and credit notes are leaves of their own.
		return nil, nil
	}

	inv, err := a.store.InvoiceForSubscription(ctx, sub.sub.ID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("invoice for subscription %d: %w", sub.sub.ID, err)
	}

	var deps []adapter.Record
	cn, err := a.store.CreditNoteForInvoice(ctx, inv.DisplayNumber)
	switch {
	case err == nil:
		deps = append(deps, creditNoteRecord{cn: cn})
	case errors.Is(err, sentinel.ErrNotFound):
		// no credit note for this invoice
	default:
		return nil, fmt.Errorf("credit note for invoice %s: %w", inv.DisplayNumber, err)
	}

	deps = append(deps, invoiceRecord{inv: inv})
	return deps, nil
}

func (a *Adapter) EraseRecord(ctx context.Context, record adapter.Record) (adapter.Action, error) {
	switch r := record.(type) {
	case subscriptionRecord:
		return a.eraseSubscription(ctx, r.sub)
	case invoiceRecord:
		if err := a.store.DeleteInvoice(ctx, r.inv.DisplayNumber); err != nil {
			return adapter.Action{}, fmt.Errorf("delete invoice %s: %w", r.inv.DisplayNumber, err)
		}
		return adapter.Action{
			Kind:     adapter.ActionDeleted,
			Category: CategoryInvoices,
			RecordID: r.inv.DisplayNumber,
		}, nil
	case creditNoteRecord:
		if err := a.store.DeleteCreditNote(ctx, r.cn.DisplayNumber); err != nil {
			return adapter.Action{}, fmt.Errorf("delete credit note %s: %w", r.cn.DisplayNumber, err)
		}
		return adapter.Action{
			Kind:     adapter.ActionDeleted,
			Category: CategoryCreditNotes,
			RecordID: r.cn.DisplayNumber,
		}, nil
	default:
		return adapter.Action{}, fmt.Errorf("unknown record type %T", record)
	}
}

// eraseSubscription applies the retention policy: transactions that never
// settled carry no accounting obligation and are deleted; everything else is
// kept but scrubbed of identifying and free-text fields.
func (a *Adapter) eraseSubscription(ctx context.Context, sub *Subscription) (adapter.Action, error) {
	recordID := strconv.FormatInt(sub.ID, 10)

	if sub.PayState == PayStateFailed {
		if err := a.store.DeleteSubscription(ctx, sub.ID); err != nil {
			return adapter.Action{}, fmt.Errorf("delete subscription %d: %w", sub.ID, err)
		}
		return adapter.Action{
			Kind:     adapter.ActionDeleted,
			Category: CategorySubscriptionsDeleted,
			RecordID: recordID,
		}, nil
	}

	wiped := *sub
	wiped.Processor = WipedProcessor
	wiped.ProcessorKey = a.wipeKey()
	wiped.IP = ""
	wiped.UserAgent = ""
	wiped.Notes = wipedNotice

	if err := a.store.UpdateSubscription(ctx, &wiped); err != nil {
		return adapter.Action{}, fmt.Errorf("anonymize subscription %d: %w", sub.ID, err)
	}
	return adapter.Action{
		Kind:          adapter.ActionAnonymized,
		Category:      CategorySubscriptionsAnonymized,
		RecordID:      recordID,
		FieldsCleared: []string{"processor", "processor_key", "ip", "user_agent", "notes"},
	}, nil
}

// wipeKey mints a replacement processor key that is unique and obviously
// synthetic: a UTC timestamp plus 24 random hex characters.
func (a *Adapter) wipeKey() string {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the platform RNG is broken; the key only
		// needs uniqueness, so fall back to the clock alone.
		return a.now().UTC().Format("20060102-150405.000000000")
	}
	return a.now().UTC().Format("20060102-150405") + "-" + hex.EncodeToString(buf)
}

// ExportUserRecords discloses the user's full billing history as three
// sections: subscriptions, invoices, and credit notes. Processor keys are
// withheld (they are payment-provider secrets, not user data) and IPs are
// anonymized to network prefixes before leaving the system.
func (a *Adapter) ExportUserRecords(ctx context.Context, userID id.UserID) ([]export.Section, error) {
	subsSection := export.Section{Name: DomainName, Description: "Subscriptions"}
	invoiceSection := export.Section{Name: CategoryInvoices, Description: "Invoices"}
	creditNoteSection := export.Section{Name: CategoryCreditNotes, Description: "Credit notes"}

	subs, err := a.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}

	for _, sub := range subs {
		subsSection.Items = append(subsSection.Items, export.NewItem(
			"id", strconv.FormatInt(sub.ID, 10),
			"level", sub.Level,
			"paystate", string(sub.PayState),
			"processor", sub.Processor,
			"ip", privacy.AnonymizeIP(sub.IP),
			"created_at", sub.CreatedAt.UTC().Format(time.RFC3339),
		))

		inv, err := a.store.InvoiceForSubscription(ctx, sub.ID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("invoice for subscription %d: %w", sub.ID, err)
		}
		invoiceSection.Items = append(invoiceSection.Items, export.NewItem(
			"display_number", inv.DisplayNumber,
			"subscription_id", strconv.FormatInt(inv.SubscriptionID, 10),
			"issued_at", inv.IssuedAt.UTC().Format(time.RFC3339),
		))

		cn, err := a.store.CreditNoteForInvoice(ctx, inv.DisplayNumber)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("credit note for invoice %s: %w", inv.DisplayNumber, err)
		}
		creditNoteSection.Items = append(creditNoteSection.Items, export.NewItem(
			"display_number", cn.DisplayNumber,
			"invoice_number", cn.InvoiceNumber,
			"issued_at", cn.IssuedAt.UTC().Format(time.RFC3339),
		))
	}

	return []export.Section{subsSection, invoiceSection, creditNoteSection}, nil
}
