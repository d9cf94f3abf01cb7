package subscriptions

import "strconv"

// Record wrappers adapt the three entity kinds to the uniform erasure
// contract. Each exposes only a non-identifying identifier and a lifecycle
// state; the concrete entity stays private to the adapter.

type subscriptionRecord struct {
	sub *Subscription
}

func (r subscriptionRecord) RecordID() string {
	return strconv.FormatInt(r.sub.ID, 10)
}

func (r subscriptionRecord) Lifecycle() string {
	return string(r.sub.PayState)
}

type invoiceRecord struct {
	inv *Invoice
}

func (r invoiceRecord) RecordID() string {
	return r.inv.DisplayNumber
}

func (r invoiceRecord) Lifecycle() string {
	return "issued"
}

type creditNoteRecord struct {
	cn *CreditNote
}

func (r creditNoteRecord) RecordID() string {
	return r.cn.DisplayNumber
}

func (r creditNoteRecord) Lifecycle() string {
	return "issued"
}
