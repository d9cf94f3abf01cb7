package oplock

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	id "datawipe/pkg/domain"
	"datawipe/pkg/platform/sentinel"
)

type MemoryLockerSuite struct {
	suite.Suite

	locker *MemoryLocker
	userID id.UserID
}

func TestMemoryLockerSuite(t *testing.T) {
	suite.Run(t, new(MemoryLockerSuite))
}

func (s *MemoryLockerSuite) SetupTest() {
	s.locker = NewMemoryLocker()
	s.userID = id.NewUserID()
}

func (s *MemoryLockerSuite) TestExclusiveExcludesExclusive() {
	release, err := s.locker.AcquireExclusive(context.Background(), s.userID)
	s.Require().NoError(err)
	defer release()

	_, err = s.locker.AcquireExclusive(context.Background(), s.userID)
	s.Require().Error(err)
	s.True(errors.Is(err, sentinel.ErrConflict))
}

func (s *MemoryLockerSuite) TestExclusiveExcludesShared() {
	release, err := s.locker.AcquireExclusive(context.Background(), s.userID)
	s.Require().NoError(err)
	defer release()

	_, err = s.locker.AcquireShared(context.Background(), s.userID)
	s.True(errors.Is(err, sentinel.ErrConflict))
}

func (s *MemoryLockerSuite) TestSharedAllowsShared() {
	r1, err := s.locker.AcquireShared(context.Background(), s.userID)
	s.Require().NoError(err)
	defer r1()

	r2, err := s.locker.AcquireShared(context.Background(), s.userID)
	s.Require().NoError(err)
	r2()
}

func (s *MemoryLockerSuite) TestSharedExcludesExclusive() {
	release, err := s.locker.AcquireShared(context.Background(), s.userID)
	s.Require().NoError(err)
	defer release()

	_, err = s.locker.AcquireExclusive(context.Background(), s.userID)
	s.True(errors.Is(err, sentinel.ErrConflict))
}

func (s *MemoryLockerSuite) TestReleaseFreesLock() {
	release, err := s.locker.AcquireExclusive(context.Background(), s.userID)
	s.Require().NoError(err)
	release()

	release2, err := s.locker.AcquireExclusive(context.Background(), s.userID)
	s.Require().NoError(err)
	release2()
}

func (s *MemoryLockerSuite) TestDoubleReleaseIsSafe() {
	release, err := s.locker.AcquireExclusive(context.Background(), s.userID)
	s.Require().NoError(err)
	release()
	release()

	r1, err := s.locker.AcquireShared(context.Background(), s.userID)
	s.Require().NoError(err)
	r2, err := s.locker.AcquireShared(context.Background(), s.userID)
	s.Require().NoError(err)
	r1()
	r1() // releasing one reader twice must not free the other

	_, err = s.locker.AcquireExclusive(context.Background(), s.userID)
	s.True(errors.Is(err, sentinel.ErrConflict), "second reader still holds the lock")
	r2()
}

func (s *MemoryLockerSuite) TestLocksArePerUser() {
	release, err := s.locker.AcquireExclusive(context.Background(), s.userID)
	s.Require().NoError(err)
	defer release()

	other, err := s.locker.AcquireExclusive(context.Background(), id.NewUserID())
	s.Require().NoError(err, "different users never conflict")
	other()
}
