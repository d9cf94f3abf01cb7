package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"datawipe/internal/audit"
	id "datawipe/pkg/domain"
	"datawipe/pkg/platform/sentinel"
)

// PostgresStore persists audit entries in PostgreSQL. The entry header goes to
// audit_entries and each category's id list to audit_entry_results, one row
// per domain/category with the ids as a text array. There are deliberately no
// UPDATE or DELETE statements in this file.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, entry audit.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin audit append: %v", sentinel.ErrUnavailable, err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.ExecContext(ctx, `
		INSERT INTO audit_entries (id, user_id, actor, request_type, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		uuid.UUID(entry.ID),
		uuid.UUID(entry.UserID),
		entry.Actor,
		entry.RequestType,
		entry.Status,
		entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("%w: insert audit entry: %v", sentinel.ErrUnavailable, err)
	}

	for domain, categories := range entry.Results {
		for category, recordIDs := range categories {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO audit_entry_results (entry_id, domain, category, record_ids)
				VALUES ($1, $2, $3, $4)
			`,
				uuid.UUID(entry.ID),
				domain,
				category,
				pq.Array(recordIDs),
			)
			if err != nil {
				return fmt.Errorf("%w: insert audit results: %v", sentinel.ErrUnavailable, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit audit append: %v", sentinel.ErrUnavailable, err)
	}
	return nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID id.UserID) ([]audit.Entry, error) {
	return s.list(ctx, `
		SELECT id, user_id, actor, request_type, status, created_at
		FROM audit_entries
		WHERE user_id = $1
		ORDER BY created_at
	`, uuid.UUID(userID))
}

func (s *PostgresStore) List(ctx context.Context, limit int) ([]audit.Entry, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.list(ctx, `
		SELECT id, user_id, actor, request_type, status, created_at
		FROM audit_entries
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]audit.Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		var (
			entryID uuid.UUID
			userID  uuid.UUID
			e       audit.Entry
		)
		if err := rows.Scan(&entryID, &userID, &e.Actor, &e.RequestType, &e.Status, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.ID = id.AuditEntryID(entryID)
		e.UserID = id.UserID(userID)
		if e.Results, err = s.loadResults(ctx, entryID); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *PostgresStore) loadResults(ctx context.Context, entryID uuid.UUID) (audit.Results, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT domain, category, record_ids
		FROM audit_entry_results
		WHERE entry_id = $1
	`, entryID)
	if err != nil {
		return nil, fmt.Errorf("query audit results: %w", err)
	}
	defer rows.Close()

	results := make(audit.Results)
	for rows.Next() {
		var (
			domain    string
			category  string
			recordIDs []string
		)
		if err := rows.Scan(&domain, &category, pq.Array(&recordIDs)); err != nil {
			return nil, fmt.Errorf("scan audit results: %w", err)
		}
		if results[domain] == nil {
			results[domain] = make(map[string][]string)
		}
		results[domain][category] = recordIDs
	}
	return results, rows.Err()
}
