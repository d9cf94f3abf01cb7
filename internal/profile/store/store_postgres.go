package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"datawipe/internal/profile"
	id "datawipe/pkg/domain"
	"datawipe/pkg/platform/sentinel"
)

// PostgresStore persists billing profiles in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindByUser(ctx context.Context, userID id.UserID) (*profile.Profile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT user_id, is_business, business_name, occupation, vat_number,
		       vies_registered, tax_authority, address1, address2, city, state,
		       zip, country, notes, updated_at
		FROM billing_profiles
		WHERE user_id = $1
	`, uuid.UUID(userID))

	var (
		p   profile.Profile
		uid uuid.UUID
	)
	err := row.Scan(
		&uid,
		&p.IsBusiness,
		&p.BusinessName,
		&p.Occupation,
		&p.VATNumber,
		&p.VIESRegistered,
		&p.TaxAuthority,
		&p.Address1,
		&p.Address2,
		&p.City,
		&p.State,
		&p.Zip,
		&p.Country,
		&p.Notes,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("%w: find profile: %v", sentinel.ErrUnavailable, err)
	}
	p.UserID = id.UserID(uid)
	return &p, nil
}

func (s *PostgresStore) Update(ctx context.Context, p *profile.Profile) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE billing_profiles
		SET is_business = $2, business_name = $3, occupation = $4,
		    vat_number = $5, vies_registered = $6, tax_authority = $7,
		    address1 = $8, address2 = $9, city = $10, state = $11, zip = $12,
		    country = $13, notes = $14, updated_at = NOW()
		WHERE user_id = $1
	`,
		uuid.UUID(p.UserID),
		p.IsBusiness,
		p.BusinessName,
		p.Occupation,
		p.VATNumber,
		p.VIESRegistered,
		p.TaxAuthority,
		p.Address1,
		p.Address2,
		p.City,
		p.State,
		p.Zip,
		p.Country,
		p.Notes,
	)
	if err != nil {
		return fmt.Errorf("%w: update profile: %v", sentinel.ErrUnavailable, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
