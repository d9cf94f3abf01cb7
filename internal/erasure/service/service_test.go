package service

//go:generate mockgen -source=../../adapter/adapter.go -destination=../../adapter/mocks/mocks.go -package=mocks Adapter,Record

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"datawipe/internal/adapter"
	"datawipe/internal/adapter/mocks"
	"datawipe/internal/audit"
	auditStore "datawipe/internal/audit/store"
	"datawipe/internal/authz"
	"datawipe/internal/erasure"
	"datawipe/internal/hold"
	"datawipe/internal/oplock"
	"datawipe/internal/platform/metrics"
	"datawipe/internal/profile"
	profileStore "datawipe/internal/profile/store"
	"datawipe/internal/subscriptions"
	subsStore "datawipe/internal/subscriptions/store"
	id "datawipe/pkg/domain"
	dErrors "datawipe/pkg/domain-errors"
	"datawipe/pkg/platform/sentinel"
)

var testMetrics = metrics.New()

type allowAllGate struct{}

func (allowAllGate) MayViewAuditTrail(context.Context, authz.Actor) bool { return true }

type ServiceSuite struct {
	suite.Suite

	ctrl     *gomock.Controller
	registry *adapter.Registry
	holds    *hold.Evaluator
	locker   *oplock.MemoryLocker
	entries  *auditStore.MemoryStore
	logger   *slog.Logger
	userID   id.UserID
	actor    authz.Actor
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.registry = adapter.NewRegistry()
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s.holds = hold.NewEvaluator(s.logger)
	s.locker = oplock.NewMemoryLocker()
	s.entries = auditStore.NewMemory()
	s.userID = id.NewUserID()
	s.actor = authz.Actor{ID: "admin-1"}
}

func (s *ServiceSuite) newService(opts ...Option) *Service {
	recorder := audit.NewService(s.entries, allowAllGate{}, s.logger)
	return NewService(s.registry, s.holds, s.locker, recorder, testMetrics, s.logger, opts...)
}

func (s *ServiceSuite) mockAdapter(name string) *mocks.MockAdapter {
	a := mocks.NewMockAdapter(s.ctrl)
	a.EXPECT().Name().Return(name).AnyTimes()
	s.registry.MustRegister(a)
	return a
}

func record(recordID string) adapter.Record {
	return staticRecord{id: recordID}
}

type staticRecord struct{ id string }

func (r staticRecord) RecordID() string  { return r.id }
func (r staticRecord) Lifecycle() string { return "active" }

func noDependents(a *mocks.MockAdapter) {
	a.EXPECT().DependentsOf(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
}

func deleted(category, recordID string) adapter.Action {
	return adapter.Action{Kind: adapter.ActionDeleted, Category: category, RecordID: recordID}
}

func (s *ServiceSuite) storedEntries() []audit.Entry {
	entries, err := s.entries.ListByUser(context.Background(), s.userID)
	s.Require().NoError(err)
	return entries
}

func (s *ServiceSuite) TestErasesDependentsBeforeParents() {
	a := s.mockAdapter("billing")

	sub := record("sub-1")
	invoice := record("inv-1")
	creditNote := record("cn-1")

	a.EXPECT().ListUserRecords(gomock.Any(), s.userID).Return([]adapter.Record{sub}, nil)
	a.EXPECT().DependentsOf(gomock.Any(), sub).Return([]adapter.Record{creditNote, invoice}, nil)
	a.EXPECT().DependentsOf(gomock.Any(), creditNote).Return(nil, nil)
	a.EXPECT().DependentsOf(gomock.Any(), invoice).Return(nil, nil)
	gomock.InOrder(
		a.EXPECT().EraseRecord(gomock.Any(), creditNote).Return(deleted("creditnotes", "cn-1"), nil),
		a.EXPECT().EraseRecord(gomock.Any(), invoice).Return(deleted("invoices", "inv-1"), nil),
		a.EXPECT().EraseRecord(gomock.Any(), sub).Return(deleted("subscriptions_deleted", "sub-1"), nil),
	)

	outcome, err := s.newService().Erase(context.Background(), s.userID, erasure.RequestTypeUser, s.actor.ID)
	s.Require().NoError(err)
	s.Equal(erasure.StatusCompleted, outcome.Status)
	s.Equal(erasure.DomainResult{
		"creditnotes":           {"cn-1"},
		"invoices":              {"inv-1"},
		"subscriptions_deleted": {"sub-1"},
	}, outcome.Domains["billing"])
}

func (s *ServiceSuite) TestDomainsRunInRegistrationOrder() {
	first := s.mockAdapter("billing")
	second := s.mockAdapter("users")
	noDependents(first)
	noDependents(second)

	r1 := record("sub-1")
	r2 := record("profile-1")
	gomock.InOrder(
		first.EXPECT().ListUserRecords(gomock.Any(), s.userID).Return([]adapter.Record{r1}, nil),
		first.EXPECT().EraseRecord(gomock.Any(), r1).Return(deleted("subscriptions_deleted", "sub-1"), nil),
		second.EXPECT().ListUserRecords(gomock.Any(), s.userID).Return([]adapter.Record{r2}, nil),
		second.EXPECT().EraseRecord(gomock.Any(), r2).Return(
			adapter.Action{Kind: adapter.ActionAnonymized, Category: "users", RecordID: "profile-1"}, nil),
	)

	outcome, err := s.newService().Erase(context.Background(), s.userID, erasure.RequestTypeAdmin, s.actor.ID)
	s.Require().NoError(err)
	s.Equal(erasure.StatusCompleted, outcome.Status)
	s.Len(outcome.Domains, 2)
}

func (s *ServiceSuite) TestHoldVetoRunsNothingAndAuditsNothing() {
	a := s.mockAdapter("billing")
	_ = a // veto fires before any adapter call; the controller verifies zero calls
	s.holds.Register("legal_hold", func(_ context.Context, _ id.UserID) (hold.Verdict, error) {
		return hold.Verdict{Vetoed: true, Reason: "litigation pending"}, nil
	})

	outcome, err := s.newService().Erase(context.Background(), s.userID, erasure.RequestTypeUser, s.actor.ID)
	s.Nil(outcome)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeHoldVeto))
	s.Contains(err.Error(), "litigation pending")
	s.Empty(s.storedEntries(), "a vetoed request touches nothing and must not be audited")
}

func (s *ServiceSuite) TestPartialFailureKeepsEarlierDomainsAndAudits() {
	first := s.mockAdapter("billing")
	second := s.mockAdapter("users")
	third := s.mockAdapter("messages")
	noDependents(first)
	noDependents(second)

	r1 := record("sub-1")
	first.EXPECT().ListUserRecords(gomock.Any(), s.userID).Return([]adapter.Record{r1}, nil)
	first.EXPECT().EraseRecord(gomock.Any(), r1).Return(deleted("subscriptions_deleted", "sub-1"), nil)
	second.EXPECT().ListUserRecords(gomock.Any(), s.userID).Return(nil, sentinel.ErrUnavailable)
	// third must never be called once the second domain failed

	outcome, err := s.newService().Erase(context.Background(), s.userID, erasure.RequestTypeUser, s.actor.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeStoreUnavailable))

	s.Require().NotNil(outcome)
	s.Equal(erasure.StatusPartial, outcome.Status)
	s.Equal("users", outcome.FailedDomain)
	s.Contains(outcome.Domains, "billing")
	s.NotContains(outcome.Domains, "messages")

	entries := s.storedEntries()
	s.Require().Len(entries, 1, "a partial run still gets its audit entry")
	s.Equal(string(erasure.StatusPartial), entries[0].Status)
	s.Equal([]string{"sub-1"}, entries[0].Results["billing"]["subscriptions_deleted"])
	_ = third
}

func (s *ServiceSuite) TestConstraintViolationTranslated() {
	a := s.mockAdapter("billing")
	noDependents(a)
	r := record("sub-1")
	a.EXPECT().ListUserRecords(gomock.Any(), s.userID).Return([]adapter.Record{r}, nil)
	a.EXPECT().EraseRecord(gomock.Any(), r).Return(adapter.Action{}, sentinel.ErrConstraintViolated)

	outcome, err := s.newService().Erase(context.Background(), s.userID, erasure.RequestTypeUser, s.actor.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConstraintViolated))
	s.Equal(erasure.StatusPartial, outcome.Status)
}

func (s *ServiceSuite) TestConcurrentErasureRejected() {
	release, err := s.locker.AcquireExclusive(context.Background(), s.userID)
	s.Require().NoError(err)
	defer release()

	outcome, err := s.newService().Erase(context.Background(), s.userID, erasure.RequestTypeUser, s.actor.ID)
	s.Nil(outcome)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeOperationConflict))
	s.Empty(s.storedEntries())
}

func (s *ServiceSuite) TestInFlightExportBlocksErasure() {
	release, err := s.locker.AcquireShared(context.Background(), s.userID)
	s.Require().NoError(err)
	defer release()

	_, err = s.newService().Erase(context.Background(), s.userID, erasure.RequestTypeUser, s.actor.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeOperationConflict))
}

type failingRecorder struct{}

func (failingRecorder) Record(context.Context, audit.Entry) error {
	return sentinel.ErrUnavailable
}

func (s *ServiceSuite) TestAuditWriteFailureReportedDistinctly() {
	a := s.mockAdapter("billing")
	noDependents(a)
	r := record("sub-1")
	a.EXPECT().ListUserRecords(gomock.Any(), s.userID).Return([]adapter.Record{r}, nil)
	a.EXPECT().EraseRecord(gomock.Any(), r).Return(deleted("subscriptions_deleted", "sub-1"), nil)

	svc := NewService(s.registry, s.holds, s.locker, failingRecorder{}, testMetrics, s.logger)
	outcome, err := svc.Erase(context.Background(), s.userID, erasure.RequestTypeUser, s.actor.ID)

	s.Require().NotNil(outcome, "the data work succeeded and must be reported")
	s.Equal(erasure.StatusCompleted, outcome.Status)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeAuditWriteFailed))
	s.False(dErrors.HasCode(err, dErrors.CodeStoreUnavailable))
}

func (s *ServiceSuite) TestStoreTimeoutSurfacesAsUnavailable() {
	a := s.mockAdapter("billing")
	a.EXPECT().ListUserRecords(gomock.Any(), s.userID).DoAndReturn(
		func(ctx context.Context, _ id.UserID) ([]adapter.Record, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})

	svc := s.newService(WithStoreTimeout(10 * time.Millisecond))
	outcome, err := svc.Erase(context.Background(), s.userID, erasure.RequestTypeUser, s.actor.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeStoreUnavailable))
	s.Equal(erasure.StatusPartial, outcome.Status)
}

func (s *ServiceSuite) TestAuditEntryCarriesNoRecordContent() {
	a := s.mockAdapter("billing")
	noDependents(a)
	r := record("A1B2C3")
	a.EXPECT().ListUserRecords(gomock.Any(), s.userID).Return([]adapter.Record{r}, nil)
	a.EXPECT().EraseRecord(gomock.Any(), r).Return(deleted("invoices", "A1B2C3"), nil)

	_, err := s.newService().Erase(context.Background(), s.userID, erasure.RequestTypeUser, s.actor.ID)
	s.Require().NoError(err)

	entries := s.storedEntries()
	s.Require().Len(entries, 1)
	s.Equal(s.actor.ID, entries[0].Actor)
	s.Equal("user", entries[0].RequestType)
	s.Equal([]string{"A1B2C3"}, entries[0].Results["billing"]["invoices"])
}

// TestOutcomeAndAuditDiscloseNoPersonalData runs a full erasure over real
// adapters seeded with identifying data and scans everything the run reports
// back. Outcomes and audit entries name records, never their content.
func (s *ServiceSuite) TestOutcomeAndAuditDiscloseNoPersonalData() {
	subs := subsStore.NewMemory()
	subs.PutSubscription(subscriptions.Subscription{
		ID:           202,
		UserID:       s.userID,
		Level:        "gold",
		PayState:     subscriptions.PayStateCompleted,
		Processor:    "stripe",
		ProcessorKey: "ch_1a2b3c",
		IP:           "203.0.113.7",
		UserAgent:    "Mozilla/5.0 (X11; Linux x86_64)",
		Notes:        "customer called about renewal",
		CreatedAt:    time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	subs.PutInvoice(subscriptions.Invoice{
		DisplayNumber:  "INV-0042",
		SubscriptionID: 202,
		UserID:         s.userID,
	})
	profiles := profileStore.NewMemory()
	profiles.Put(profile.Profile{
		UserID:       s.userID,
		BusinessName: "Acme GmbH",
		Occupation:   "Engineer",
		VATNumber:    "DE123456789",
		TaxAuthority: "Finanzamt Berlin",
		Address1:     "Musterstrasse 1",
		City:         "Berlin",
		Zip:          "10115",
		Notes:        "prefers invoices in German",
	})
	s.registry.MustRegister(subscriptions.NewAdapter(subs))
	s.registry.MustRegister(profile.NewAdapter(profiles))

	outcome, err := s.newService().Erase(context.Background(), s.userID, erasure.RequestTypeUser, s.actor.ID)
	s.Require().NoError(err)
	s.Equal(erasure.StatusCompleted, outcome.Status)

	entries := s.storedEntries()
	s.Require().Len(entries, 1)

	rawOutcome, err := json.Marshal(outcome)
	s.Require().NoError(err)
	rawEntry, err := json.Marshal(entries[0])
	s.Require().NoError(err)

	for _, blob := range []string{string(rawOutcome), string(rawEntry)} {
		for _, pii := range []string{
			"ch_1a2b3c",
			"203.0.113.7",
			"Mozilla",
			"customer called about renewal",
			"Acme GmbH",
			"Engineer",
			"DE123456789",
			"Musterstrasse",
			"Berlin",
			"10115",
			"prefers invoices",
		} {
			s.NotContains(blob, pii)
		}
	}
}

func (s *ServiceSuite) TestQueryHoldsDoesNotTouchAdapters() {
	_ = s.mockAdapter("billing")
	s.holds.Register("legal_hold", func(_ context.Context, _ id.UserID) (hold.Verdict, error) {
		return hold.Verdict{Vetoed: true, Reason: "litigation pending"}, nil
	})

	verdict := s.newService().QueryHolds(context.Background(), s.userID)
	s.True(verdict.Vetoed)
	s.Equal("legal_hold", verdict.Source)
}

func (s *ServiceSuite) TestLockReleasedAfterRun() {
	a := s.mockAdapter("billing")
	noDependents(a)
	a.EXPECT().ListUserRecords(gomock.Any(), s.userID).Return(nil, nil).Times(2)

	svc := s.newService()
	_, err := svc.Erase(context.Background(), s.userID, erasure.RequestTypeUser, s.actor.ID)
	s.Require().NoError(err)

	// A second run must be able to take the lock again.
	_, err = svc.Erase(context.Background(), s.userID, erasure.RequestTypeUser, s.actor.ID)
	s.NoError(err)
}

func (s *ServiceSuite) TestLockReleasedAfterVeto() {
	s.holds.Register("once", func(_ context.Context, _ id.UserID) (hold.Verdict, error) {
		return hold.Verdict{Vetoed: true, Reason: "no"}, nil
	})

	svc := s.newService()
	_, err := svc.Erase(context.Background(), s.userID, erasure.RequestTypeUser, s.actor.ID)
	s.Require().True(dErrors.HasCode(err, dErrors.CodeHoldVeto))

	release, err := s.locker.AcquireExclusive(context.Background(), s.userID)
	s.Require().NoError(err, "the lock must not leak after a veto")
	release()
}
