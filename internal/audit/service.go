package audit

import (
	"context"
	"log/slog"
	"time"

	"datawipe/internal/authz"
	id "datawipe/pkg/domain"
	dErrors "datawipe/pkg/domain-errors"
)

// EntryStore is the persistence contract the recorder writes through. It is
// append-and-read only; see internal/audit/store.
type EntryStore interface {
	Append(ctx context.Context, entry Entry) error
	ListByUser(ctx context.Context, userID id.UserID) ([]Entry, error)
	List(ctx context.Context, limit int) ([]Entry, error)
}

// Mirror receives committed entries for downstream consumers. Mirroring is
// best-effort; the store append is what counts.
type Mirror interface {
	Publish(ctx context.Context, entry Entry) error
}

// Service is the audit recorder. Reads pass through the authorization gate;
// writes are append-only; mutation is denied for every actor without
// consulting any capability - that denial is an architectural invariant of
// the trail, not a permission default someone could reconfigure.
type Service struct {
	store  EntryStore
	gate   authz.Gate
	mirror Mirror
	logger *slog.Logger
}

type Option func(*Service)

// WithMirror attaches a best-effort downstream mirror for committed entries.
func WithMirror(m Mirror) Option {
	return func(s *Service) { s.mirror = m }
}

func NewService(store EntryStore, gate authz.Gate, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{store: store, gate: gate, logger: logger}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Record appends one entry. Returns the store's error unmodified so the
// caller can distinguish "erasure succeeded but could not be audited" from
// erasure failure.
func (s *Service) Record(ctx context.Context, entry Entry) error {
	if entry.ID.IsNil() {
		entry.ID = id.NewAuditEntryID()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if err := s.store.Append(ctx, entry); err != nil {
		return err
	}
	if s.mirror != nil {
		if err := s.mirror.Publish(ctx, entry); err != nil {
			s.logger.WarnContext(ctx, "audit mirror publish failed",
				"entry_id", entry.ID.String(),
				"error", err,
			)
		}
	}
	return nil
}

// ListByUser returns the user's audit entries if the actor may view the trail.
func (s *Service) ListByUser(ctx context.Context, actor authz.Actor, userID id.UserID) ([]Entry, error) {
	if !s.gate.MayViewAuditTrail(ctx, actor) {
		return nil, dErrors.New(dErrors.CodeForbidden, "not permitted to view the audit trail")
	}
	return s.store.ListByUser(ctx, userID)
}

// List returns the most recent entries if the actor may view the trail.
func (s *Service) List(ctx context.Context, actor authz.Actor, limit int) ([]Entry, error) {
	if !s.gate.MayViewAuditTrail(ctx, actor) {
		return nil, dErrors.New(dErrors.CodeForbidden, "not permitted to view the audit trail")
	}
	return s.store.List(ctx, limit)
}

// Update is denied unconditionally. The parameter list exists so callers that
// reach for it get a compile-visible refusal instead of a silent no-op.
func (s *Service) Update(_ context.Context, _ authz.Actor, _ Entry) error {
	return dErrors.New(dErrors.CodeForbidden, "audit entries are immutable")
}

// Delete is denied unconditionally, for every actor.
func (s *Service) Delete(_ context.Context, _ authz.Actor, _ id.AuditEntryID) error {
	return dErrors.New(dErrors.CodeForbidden, "audit entries are immutable")
}
