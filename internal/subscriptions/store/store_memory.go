package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"datawipe/internal/subscriptions"
	id "datawipe/pkg/domain"
	"datawipe/pkg/platform/sentinel"
)

// MemoryStore implements Store in process memory. It enforces the same
// referential constraints the SQL schema does: an invoice cannot be deleted
// while its credit note exists, and a subscription cannot be deleted while
// its invoice exists.
type MemoryStore struct {
	mu            sync.RWMutex
	subscriptions map[int64]*subscriptions.Subscription
	invoices      map[string]*subscriptions.Invoice
	creditNotes   map[string]*subscriptions.CreditNote
}

func NewMemory() *MemoryStore {
	return &MemoryStore{
		subscriptions: make(map[int64]*subscriptions.Subscription),
		invoices:      make(map[string]*subscriptions.Invoice),
		creditNotes:   make(map[string]*subscriptions.CreditNote),
	}
}

// Seed helpers for wiring fixtures and development data.

func (s *MemoryStore) PutSubscription(sub subscriptions.Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscriptions[sub.ID] = &sub
}

func (s *MemoryStore) PutInvoice(inv subscriptions.Invoice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoices[inv.DisplayNumber] = &inv
}

func (s *MemoryStore) PutCreditNote(cn subscriptions.CreditNote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creditNotes[cn.DisplayNumber] = &cn
}

func (s *MemoryStore) ListByUser(_ context.Context, userID id.UserID) ([]*subscriptions.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*subscriptions.Subscription
	for _, sub := range s.subscriptions {
		if sub.UserID == userID {
			copied := *sub
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) FindSubscription(_ context.Context, subscriptionID int64) (*subscriptions.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.subscriptions[subscriptionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *sub
	return &copied, nil
}

func (s *MemoryStore) UpdateSubscription(_ context.Context, sub *subscriptions.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subscriptions[sub.ID]; !ok {
		return sentinel.ErrNotFound
	}
	copied := *sub
	s.subscriptions[sub.ID] = &copied
	return nil
}

func (s *MemoryStore) DeleteSubscription(_ context.Context, subscriptionID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subscriptions[subscriptionID]; !ok {
		return sentinel.ErrNotFound
	}
	for _, inv := range s.invoices {
		if inv.SubscriptionID == subscriptionID {
			return sentinel.ErrConstraintViolated
		}
	}
	delete(s.subscriptions, subscriptionID)
	return nil
}

func (s *MemoryStore) InvoiceForSubscription(_ context.Context, subscriptionID int64) (*subscriptions.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, inv := range s.invoices {
		if inv.SubscriptionID == subscriptionID {
			copied := *inv
			return &copied, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *MemoryStore) DeleteInvoice(_ context.Context, displayNumber string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.invoices[displayNumber]; !ok {
		return sentinel.ErrNotFound
	}
	for _, cn := range s.creditNotes {
		if cn.InvoiceNumber == displayNumber {
			return sentinel.ErrConstraintViolated
		}
	}
	delete(s.invoices, displayNumber)
	return nil
}

func (s *MemoryStore) CreditNoteForInvoice(_ context.Context, invoiceNumber string) (*subscriptions.CreditNote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, cn := range s.creditNotes {
		if cn.InvoiceNumber == invoiceNumber {
			copied := *cn
			return &copied, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *MemoryStore) DeleteCreditNote(_ context.Context, displayNumber string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.creditNotes[displayNumber]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.creditNotes, displayNumber)
	return nil
}

func (s *MemoryStore) CountSettledSince(_ context.Context, userID id.UserID, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, sub := range s.subscriptions {
		if sub.UserID == userID && sub.PayState.Settled() && !sub.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}
