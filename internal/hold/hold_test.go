package hold

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "datawipe/pkg/domain"
)

type EvaluatorSuite struct {
	suite.Suite

	evaluator *Evaluator
	userID    id.UserID
}

func TestEvaluatorSuite(t *testing.T) {
	suite.Run(t, new(EvaluatorSuite))
}

func (s *EvaluatorSuite) SetupTest() {
	s.evaluator = NewEvaluator(slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.userID = id.NewUserID()
}

func allow(_ context.Context, _ id.UserID) (Verdict, error) {
	return Verdict{}, nil
}

func veto(reason string) Predicate {
	return func(_ context.Context, _ id.UserID) (Verdict, error) {
		return Verdict{Vetoed: true, Reason: reason}, nil
	}
}

func (s *EvaluatorSuite) TestNoHoldsAllows() {
	verdict := s.evaluator.Evaluate(context.Background(), s.userID)
	s.False(verdict.Vetoed)
}

func (s *EvaluatorSuite) TestAllHoldsAllow() {
	s.evaluator.Register("first", allow)
	s.evaluator.Register("second", allow)

	verdict := s.evaluator.Evaluate(context.Background(), s.userID)
	s.False(verdict.Vetoed)
}

func (s *EvaluatorSuite) TestFirstVetoWins() {
	called := false
	s.evaluator.Register("first", veto("first says no"))
	s.evaluator.Register("second", func(ctx context.Context, userID id.UserID) (Verdict, error) {
		called = true
		return veto("second says no")(ctx, userID)
	})

	verdict := s.evaluator.Evaluate(context.Background(), s.userID)
	s.True(verdict.Vetoed)
	s.Equal("first says no", verdict.Reason)
	s.Equal("first", verdict.Source)
	s.False(called, "later holds must not run after a veto")
}

func (s *EvaluatorSuite) TestPredicateErrorVetoes() {
	s.evaluator.Register("broken", func(_ context.Context, _ id.UserID) (Verdict, error) {
		return Verdict{}, errors.New("store unreachable")
	})

	verdict := s.evaluator.Evaluate(context.Background(), s.userID)
	s.True(verdict.Vetoed, "a hold that cannot run must block, not permit")
	s.Equal("broken", verdict.Source)
	s.Contains(verdict.Reason, "cannot confirm")
}

type stubCounter struct {
	count int
	err   error

	gotSince time.Time
}

func (c *stubCounter) CountSettledSince(_ context.Context, _ id.UserID, since time.Time) (int, error) {
	c.gotSince = since
	return c.count, c.err
}

type SettlementWindowSuite struct {
	suite.Suite

	userID id.UserID
	now    time.Time
}

func TestSettlementWindowSuite(t *testing.T) {
	suite.Run(t, new(SettlementWindowSuite))
}

func (s *SettlementWindowSuite) SetupTest() {
	s.userID = id.NewUserID()
	s.now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
}

func (s *SettlementWindowSuite) clock() func() time.Time {
	return func() time.Time { return s.now }
}

func (s *SettlementWindowSuite) TestVetoesWithinWindow() {
	counter := &stubCounter{count: 2}
	pred := NewSettlementWindow(counter, 90, s.clock())

	verdict, err := pred(context.Background(), s.userID)
	s.Require().NoError(err)
	s.True(verdict.Vetoed)
	s.Equal("user has 2 settled transaction(s) within the last 90 days", verdict.Reason)
	s.Equal(s.now.AddDate(0, 0, -90), counter.gotSince)
}

func (s *SettlementWindowSuite) TestAllowsOutsideWindow() {
	pred := NewSettlementWindow(&stubCounter{count: 0}, 90, s.clock())

	verdict, err := pred(context.Background(), s.userID)
	s.Require().NoError(err)
	s.False(verdict.Vetoed)
}

func (s *SettlementWindowSuite) TestDisabledWhenWindowNotPositive() {
	counter := &stubCounter{count: 5}
	pred := NewSettlementWindow(counter, 0, s.clock())

	verdict, err := pred(context.Background(), s.userID)
	s.Require().NoError(err)
	s.False(verdict.Vetoed)
	s.True(counter.gotSince.IsZero(), "disabled hold must not query the store")
}

func (s *SettlementWindowSuite) TestCounterErrorPropagates() {
	pred := NewSettlementWindow(&stubCounter{err: errors.New("down")}, 90, s.clock())

	_, err := pred(context.Background(), s.userID)
	s.Error(err)
}
