//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"datawipe/internal/audit"
	"datawipe/internal/audit/store"
	id "datawipe/pkg/domain"
	"datawipe/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx, "audit_entry_results", "audit_entries")
	s.Require().NoError(err)
}

func makeEntry(userID id.UserID, at time.Time) audit.Entry {
	return audit.Entry{
		ID:          id.AuditEntryID(uuid.New()),
		Timestamp:   at,
		UserID:      userID,
		Actor:       "dpo@example.com",
		RequestType: "user",
		Status:      "completed",
		Results: audit.Results{
			"subscriptions": {
				"subscriptions_deleted":    {"1001", "1002"},
				"subscriptions_anonymized": {"1003"},
				"invoices":                 {"INV-1001"},
			},
			"users": {
				"users": {userID.String()},
			},
		},
	}
}

func (s *PostgresStoreSuite) TestAppendAndListByUserRoundTrip() {
	ctx := context.Background()
	userID := id.UserID(uuid.New())
	entry := makeEntry(userID, time.Now().UTC().Truncate(time.Microsecond))

	s.Require().NoError(s.store.Append(ctx, entry))

	entries, err := s.store.ListByUser(ctx, userID)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)

	got := entries[0]
	s.Equal(entry.ID, got.ID)
	s.Equal(entry.UserID, got.UserID)
	s.Equal(entry.Actor, got.Actor)
	s.Equal(entry.RequestType, got.RequestType)
	s.Equal(entry.Status, got.Status)
	s.Equal(entry.Results, got.Results)
	s.WithinDuration(entry.Timestamp, got.Timestamp, time.Millisecond)
}

func (s *PostgresStoreSuite) TestListByUserOrderedByTime() {
	ctx := context.Background()
	userID := id.UserID(uuid.New())
	base := time.Now().UTC()

	second := makeEntry(userID, base.Add(time.Minute))
	first := makeEntry(userID, base)
	s.Require().NoError(s.store.Append(ctx, second))
	s.Require().NoError(s.store.Append(ctx, first))

	entries, err := s.store.ListByUser(ctx, userID)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Equal(first.ID, entries[0].ID)
	s.Equal(second.ID, entries[1].ID)
}

func (s *PostgresStoreSuite) TestListByUserScoped() {
	ctx := context.Background()
	userA := id.UserID(uuid.New())
	userB := id.UserID(uuid.New())

	s.Require().NoError(s.store.Append(ctx, makeEntry(userA, time.Now().UTC())))
	s.Require().NoError(s.store.Append(ctx, makeEntry(userB, time.Now().UTC())))

	entries, err := s.store.ListByUser(ctx, userA)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(userA, entries[0].UserID)
}

func (s *PostgresStoreSuite) TestListNewestFirstWithLimit() {
	ctx := context.Background()
	userID := id.UserID(uuid.New())
	base := time.Now().UTC()

	var ids []id.AuditEntryID
	for i := 0; i < 5; i++ {
		entry := makeEntry(userID, base.Add(time.Duration(i)*time.Minute))
		ids = append(ids, entry.ID)
		s.Require().NoError(s.store.Append(ctx, entry))
	}

	entries, err := s.store.List(ctx, 3)
	s.Require().NoError(err)
	s.Require().Len(entries, 3)
	s.Equal(ids[4], entries[0].ID)
	s.Equal(ids[3], entries[1].ID)
	s.Equal(ids[2], entries[2].ID)
}

func (s *PostgresStoreSuite) TestEmptyResultsEntry() {
	ctx := context.Background()
	userID := id.UserID(uuid.New())

	entry := makeEntry(userID, time.Now().UTC())
	entry.Results = audit.Results{}
	entry.Status = "partial"
	s.Require().NoError(s.store.Append(ctx, entry))

	entries, err := s.store.ListByUser(ctx, userID)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Empty(entries[0].Results)
}
