// Package service implements the erasure orchestrator: the one code path that
// is allowed to destroy user data. It serializes per user, asks every
// registered hold for permission, walks the domain adapters in dependency
// order, and commits an audit entry describing exactly what was done.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"datawipe/internal/adapter"
	"datawipe/internal/audit"
	"datawipe/internal/erasure"
	"datawipe/internal/hold"
	"datawipe/internal/oplock"
	"datawipe/internal/platform/metrics"
	id "datawipe/pkg/domain"
	dErrors "datawipe/pkg/domain-errors"
	"datawipe/pkg/platform/sentinel"
)

// Recorder commits the audit entry for a finished run.
type Recorder interface {
	Record(ctx context.Context, entry audit.Entry) error
}

// Service orchestrates erasure. It holds no domain knowledge of its own:
// what "erase" means per record is adapter policy, what blocks erasure is
// hold policy. The service guarantees ordering, locking, failure isolation,
// and auditing.
type Service struct {
	registry     *adapter.Registry
	holds        *hold.Evaluator
	locker       oplock.Locker
	recorder     Recorder
	metrics      *metrics.Metrics
	logger       *slog.Logger
	tracer       trace.Tracer
	storeTimeout time.Duration
	now          func() time.Time
}

type Option func(*Service)

// WithStoreTimeout bounds every adapter-level store interaction. A store that
// does not answer within the window fails that domain with a store
// unavailability error instead of hanging the run.
func WithStoreTimeout(d time.Duration) Option {
	return func(s *Service) { s.storeTimeout = d }
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(
	registry *adapter.Registry,
	holds *hold.Evaluator,
	locker oplock.Locker,
	recorder Recorder,
	m *metrics.Metrics,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		registry:     registry,
		holds:        holds,
		locker:       locker,
		recorder:     recorder,
		metrics:      m,
		logger:       logger,
		tracer:       otel.Tracer("datawipe/erasure"),
		storeTimeout: 10 * time.Second,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// QueryHolds evaluates the registered holds without touching any data. It
// answers "would an erasure request be accepted right now" so callers can
// warn the user before they commit to a request.
func (s *Service) QueryHolds(ctx context.Context, userID id.UserID) hold.Verdict {
	return s.holds.Evaluate(ctx, userID)
}

// Erase removes or anonymizes every record the registered domains hold about
// the user.
//
// The returned outcome is non-nil whenever any domain ran, including partial
// and audit-failure cases; callers inspect the error code to learn how the
// run ended:
//
//   - CodeOperationConflict: another operation holds the user's lock; nothing
//     ran, nothing was audited.
//   - CodeHoldVeto: a hold refused the deletion; nothing ran, nothing was
//     audited, the error message carries the reason.
//   - CodeStoreUnavailable / CodeConstraintViolated: a domain failed mid-run.
//     Earlier domains' work stands and the outcome was audited.
//   - CodeAuditWriteFailed: every domain finished but the audit entry could
//     not be committed.
func (s *Service) Erase(ctx context.Context, userID id.UserID, requestType erasure.RequestType, actor string) (*erasure.Outcome, error) {
	ctx, span := s.tracer.Start(ctx, "erasure.erase", trace.WithAttributes(
		attribute.String("user_id", userID.String()),
		attribute.String("request_type", string(requestType)),
	))
	var runErr error
	defer func() { endSpan(span, runErr) }()

	release, err := s.locker.AcquireExclusive(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			s.metrics.IncrementOperationConflicts("erasure")
			runErr = dErrors.Wrap(err, dErrors.CodeOperationConflict,
				"another operation for this user is in flight")
			return nil, runErr
		}
		runErr = dErrors.Wrap(err, dErrors.CodeStoreUnavailable,
			"could not acquire the operation lock")
		return nil, runErr
	}
	defer release()

	if verdict := s.holds.Evaluate(ctx, userID); verdict.Vetoed {
		s.metrics.IncrementVetoes(verdict.Source)
		s.logger.InfoContext(ctx, "erasure vetoed",
			"user_id", userID.String(),
			"hold", verdict.Source,
			"reason", verdict.Reason,
		)
		runErr = dErrors.New(dErrors.CodeHoldVeto, verdict.Reason)
		return nil, runErr
	}

	startedAt := s.now()
	outcome := erasure.NewOutcome(userID, requestType, startedAt)

	var domainErr error
	for _, a := range s.registry.Ordered() {
		if err := s.eraseDomain(ctx, a, userID, outcome); err != nil {
			outcome.MarkPartial(a.Name())
			domainErr = err
			s.logger.ErrorContext(ctx, "domain erasure failed",
				"user_id", userID.String(),
				"domain", a.Name(),
				"error", err,
			)
			break
		}
	}
	outcome.FinishedAt = s.now()

	s.metrics.IncrementErasures(string(outcome.Status))
	s.metrics.ObserveErasureDuration(outcome.FinishedAt.Sub(startedAt))
	for domain, result := range outcome.Domains {
		for category, ids := range result {
			s.metrics.AddRecordsErased(domain, category, len(ids))
		}
	}
	span.SetAttributes(attribute.String("status", string(outcome.Status)))

	results := make(audit.Results, len(outcome.Domains))
	for domain, result := range outcome.Domains {
		results[domain] = result
	}

	// The audit entry is written for every run that touched data, partial
	// runs included: an incomplete erasure the trail knows nothing about is
	// worse than one it records as partial.
	auditErr := s.recorder.Record(ctx, audit.Entry{
		UserID:      userID,
		Actor:       actor,
		RequestType: string(requestType),
		Status:      string(outcome.Status),
		Results:     results,
	})
	if auditErr != nil {
		s.metrics.IncrementAuditWriteFailed()
		s.logger.ErrorContext(ctx, "audit write failed after erasure",
			"user_id", userID.String(),
			"status", string(outcome.Status),
			"error", auditErr,
		)
	}

	switch {
	case domainErr != nil:
		runErr = domainErr
	case auditErr != nil:
		runErr = dErrors.Wrap(auditErr, dErrors.CodeAuditWriteFailed,
			"erasure completed but the audit entry could not be committed")
	}
	return outcome, runErr
}

// eraseDomain erases every record the adapter reports for the user,
// dependents first.
func (s *Service) eraseDomain(ctx context.Context, a adapter.Adapter, userID id.UserID, outcome *erasure.Outcome) error {
	ctx, span := s.tracer.Start(ctx, "erasure.domain", trace.WithAttributes(
		attribute.String("domain", a.Name()),
	))
	var err error
	defer func() { endSpan(span, err) }()

	records, listErr := s.listRecords(ctx, a, userID)
	if listErr != nil {
		err = listErr
		return err
	}

	for _, record := range records {
		if err = s.eraseTree(ctx, a, record, outcome); err != nil {
			return err
		}
	}
	return nil
}

// eraseTree erases a record's dependents depth-first, then the record itself.
// A dependent failing aborts the whole tree: erasing the parent afterwards
// would trip the very constraint the ordering exists to respect.
func (s *Service) eraseTree(ctx context.Context, a adapter.Adapter, record adapter.Record, outcome *erasure.Outcome) error {
	tctx, cancel := s.boundedCtx(ctx)
	deps, err := a.DependentsOf(tctx, record)
	cancel()
	if err != nil {
		return s.translate(a.Name(), err)
	}

	for _, dep := range deps {
		if err := s.eraseTree(ctx, a, dep, outcome); err != nil {
			return err
		}
	}

	tctx, cancel = s.boundedCtx(ctx)
	action, err := a.EraseRecord(tctx, record)
	cancel()
	if err != nil {
		return s.translate(a.Name(), err)
	}
	outcome.Record(a.Name(), action)
	return nil
}

func (s *Service) listRecords(ctx context.Context, a adapter.Adapter, userID id.UserID) ([]adapter.Record, error) {
	tctx, cancel := s.boundedCtx(ctx)
	defer cancel()
	records, err := a.ListUserRecords(tctx, userID)
	if err != nil {
		return nil, s.translate(a.Name(), err)
	}
	return records, nil
}

func (s *Service) boundedCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.storeTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.storeTimeout)
}

// translate maps adapter/store failures onto the domain error taxonomy.
func (s *Service) translate(domain string, err error) error {
	switch {
	case errors.Is(err, sentinel.ErrConstraintViolated):
		return dErrors.Wrap(err, dErrors.CodeConstraintViolated,
			"erasure aborted in domain "+domain+": record constraint violated")
	case errors.Is(err, sentinel.ErrUnavailable),
		errors.Is(err, context.DeadlineExceeded):
		return dErrors.Wrap(err, dErrors.CodeStoreUnavailable,
			"erasure aborted in domain "+domain+": store unavailable")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal,
			"erasure aborted in domain "+domain)
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
