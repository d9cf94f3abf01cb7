// Package service implements the export orchestrator. Export is read-only
// disclosure: it assembles one tree of everything the registered domains hold
// about a user. Unlike erasure, a failing domain degrades to a warning
// instead of aborting, because disclosing most of the data late beats
// disclosing none of it on time.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"datawipe/internal/adapter"
	"datawipe/internal/export"
	"datawipe/internal/oplock"
	"datawipe/internal/platform/metrics"
	id "datawipe/pkg/domain"
	dErrors "datawipe/pkg/domain-errors"
	"datawipe/pkg/platform/sentinel"
)

// Service assembles disclosure trees. Reads take the user's lock in shared
// mode: exports overlap each other freely but never overlap an erasure, so a
// tree can never show half-erased data.
type Service struct {
	registry     *adapter.Registry
	locker       oplock.Locker
	metrics      *metrics.Metrics
	logger       *slog.Logger
	tracer       trace.Tracer
	storeTimeout time.Duration
	concurrency  int
	now          func() time.Time
}

type Option func(*Service)

// WithStoreTimeout bounds each domain's export call.
func WithStoreTimeout(d time.Duration) Option {
	return func(s *Service) { s.storeTimeout = d }
}

// WithConcurrency caps how many domains export in parallel.
func WithConcurrency(n int) Option {
	return func(s *Service) { s.concurrency = n }
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(
	registry *adapter.Registry,
	locker oplock.Locker,
	m *metrics.Metrics,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		registry:     registry,
		locker:       locker,
		metrics:      m,
		logger:       logger,
		tracer:       otel.Tracer("datawipe/export"),
		storeTimeout: 10 * time.Second,
		concurrency:  4,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Export builds the full disclosure tree for the user. Domains export
// concurrently; the tree's section order always follows registration order
// regardless of which domain finished first. A domain that fails within the
// store timeout contributes an empty section plus a warning, so a partial
// tree keeps every domain label; the tree is marked partial but still
// returned.
//
// Returns CodeOperationConflict when an erasure for the user is in flight.
func (s *Service) Export(ctx context.Context, userID id.UserID) (*export.Tree, error) {
	ctx, span := s.tracer.Start(ctx, "export.export", trace.WithAttributes(
		attribute.String("user_id", userID.String()),
	))
	defer span.End()

	release, err := s.locker.AcquireShared(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			s.metrics.IncrementOperationConflicts("export")
			return nil, dErrors.Wrap(err, dErrors.CodeOperationConflict,
				"an erasure for this user is in flight")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeStoreUnavailable,
			"could not acquire the operation lock")
	}
	defer release()

	adapters := s.registry.Ordered()
	sections := make([][]export.Section, len(adapters))
	var (
		mu       sync.Mutex
		warnings []export.Warning
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, a := range adapters {
		g.Go(func() error {
			tctx, cancel := context.WithTimeout(gctx, s.storeTimeout)
			defer cancel()

			domainSections, err := a.ExportUserRecords(tctx, userID)
			if err != nil {
				s.metrics.IncrementExportWarnings(a.Name())
				s.logger.WarnContext(gctx, "domain export failed",
					"user_id", userID.String(),
					"domain", a.Name(),
					"error", err,
				)
				// The failed domain still contributes its empty section so a
				// partial tree keeps a stable, fully-labeled shape.
				sections[i] = []export.Section{{Name: a.Name(), Description: a.Description()}}
				mu.Lock()
				warnings = append(warnings, export.Warning{
					Domain: a.Name(),
					Reason: "export unavailable for this domain",
				})
				mu.Unlock()
				return nil
			}
			sections[i] = domainSections
			return nil
		})
	}
	// Workers never return errors; Wait only observes context cancellation.
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "export interrupted")
	}

	tree := &export.Tree{
		UserID:      userID,
		GeneratedAt: s.now(),
	}
	for _, domainSections := range sections {
		tree.Sections = append(tree.Sections, domainSections...)
	}
	sort.Slice(warnings, func(i, j int) bool { return warnings[i].Domain < warnings[j].Domain })
	tree.Warnings = warnings

	if tree.Partial() {
		s.metrics.IncrementExports("partial")
	} else {
		s.metrics.IncrementExports("completed")
	}
	span.SetAttributes(attribute.Bool("partial", tree.Partial()))
	return tree, nil
}
