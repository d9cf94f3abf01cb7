package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"datawipe/internal/subscriptions"
	id "datawipe/pkg/domain"
	"datawipe/pkg/platform/sentinel"
)

// PostgresStore persists the subscription domain in PostgreSQL. The schema
// carries real foreign keys (credit_notes → invoices → subscriptions), so a
// delete in the wrong order is refused by the database and surfaces as a
// constraint violation rather than a cascade.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// foreignKeyViolation is the PostgreSQL SQLSTATE for FK violations.
const foreignKeyViolation = "23503"

func classify(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		return fmt.Errorf("%w: %s", sentinel.ErrConstraintViolated, op)
	}
	return fmt.Errorf("%w: %s: %v", sentinel.ErrUnavailable, op, err)
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID id.UserID) ([]*subscriptions.Subscription, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, level, paystate, processor, processor_key, ip, user_agent, notes, created_at
		FROM subscriptions
		WHERE user_id = $1
		ORDER BY id
	`, uuid.UUID(userID))
	if err != nil {
		return nil, classify("list subscriptions", err)
	}
	defer rows.Close()

	var out []*subscriptions.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (s *PostgresStore) FindSubscription(ctx context.Context, subscriptionID int64) (*subscriptions.Subscription, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, level, paystate, processor, processor_key, ip, user_agent, notes, created_at
		FROM subscriptions
		WHERE id = $1
	`, subscriptionID)
	sub, err := scanSubscription(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, classify("find subscription", err)
	}
	return sub, nil
}

func (s *PostgresStore) UpdateSubscription(ctx context.Context, sub *subscriptions.Subscription) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE subscriptions
		SET paystate = $2, processor = $3, processor_key = $4, ip = $5, user_agent = $6, notes = $7
		WHERE id = $1
	`,
		sub.ID,
		string(sub.PayState),
		sub.Processor,
		sub.ProcessorKey,
		sub.IP,
		sub.UserAgent,
		sub.Notes,
	)
	if err != nil {
		return classify("update subscription", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) DeleteSubscription(ctx context.Context, subscriptionID int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = $1`, subscriptionID)
	if err != nil {
		return classify("delete subscription", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) InvoiceForSubscription(ctx context.Context, subscriptionID int64) (*subscriptions.Invoice, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT display_number, subscription_id, user_id, issued_at
		FROM invoices
		WHERE subscription_id = $1
	`, subscriptionID)

	var (
		inv    subscriptions.Invoice
		userID uuid.UUID
	)
	if err := row.Scan(&inv.DisplayNumber, &inv.SubscriptionID, &userID, &inv.IssuedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, classify("find invoice", err)
	}
	inv.UserID = id.UserID(userID)
	return &inv, nil
}

func (s *PostgresStore) DeleteInvoice(ctx context.Context, displayNumber string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM invoices WHERE display_number = $1`, displayNumber)
	if err != nil {
		return classify("delete invoice", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) CreditNoteForInvoice(ctx context.Context, invoiceNumber string) (*subscriptions.CreditNote, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT display_number, invoice_number, issued_at
		FROM credit_notes
		WHERE invoice_number = $1
	`, invoiceNumber)

	var cn subscriptions.CreditNote
	if err := row.Scan(&cn.DisplayNumber, &cn.InvoiceNumber, &cn.IssuedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, classify("find credit note", err)
	}
	return &cn, nil
}

func (s *PostgresStore) DeleteCreditNote(ctx context.Context, displayNumber string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM credit_notes WHERE display_number = $1`, displayNumber)
	if err != nil {
		return classify("delete credit note", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) CountSettledSince(ctx context.Context, userID id.UserID, since time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM subscriptions
		WHERE user_id = $1 AND paystate IN ('C', 'X') AND created_at >= $2
	`, uuid.UUID(userID), since).Scan(&count)
	if err != nil {
		return 0, classify("count settled subscriptions", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubscription(row rowScanner) (*subscriptions.Subscription, error) {
	var (
		sub      subscriptions.Subscription
		userID   uuid.UUID
		paystate string
	)
	err := row.Scan(
		&sub.ID,
		&userID,
		&sub.Level,
		&paystate,
		&sub.Processor,
		&sub.ProcessorKey,
		&sub.IP,
		&sub.UserAgent,
		&sub.Notes,
		&sub.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	sub.UserID = id.UserID(userID)
	sub.PayState = subscriptions.PayState(paystate)
	return &sub, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
