package profile

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"datawipe/internal/adapter"
	"datawipe/internal/export"
	id "datawipe/pkg/domain"
	"datawipe/pkg/platform/sentinel"
)

// DomainName labels this adapter in registries, outcomes, and export
// sections.
const DomainName = "users"

// CategoryUsers is the audit bucket for anonymized profiles.
const CategoryUsers = "users"

// Replacement values written over identifying fields. Address and city keep
// readable placeholders because invoices rendered from retained subscriptions
// still print these columns.
const (
	redactedAddress = "Address Redacted"
	redactedCity    = "City Redacted"
	redactedZip     = "REMOVED"
	redactedCountry = "XX"
	wipedNotice     = "This record has been pseudonymized per GDPR requirements"
)

// Adapter implements the data-domain contract for billing profiles. Profiles
// are always anonymized, never deleted: retained subscription records keep a
// foreign key to them.
type Adapter struct {
	store Store
}

func NewAdapter(st Store) *Adapter {
	return &Adapter{store: st}
}

func (a *Adapter) Name() string {
	return DomainName
}

func (a *Adapter) Description() string {
	return "Billing profile and invoicing details"
}

func (a *Adapter) ListUserRecords(ctx context.Context, userID id.UserID) ([]adapter.Record, error) {
	p, err := a.store.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return []adapter.Record{profileRecord{p: p}}, nil
}

func (a *Adapter) DependentsOf(_ context.Context, _ adapter.Record) ([]adapter.Record, error) {
	return nil, nil
}

func (a *Adapter) EraseRecord(ctx context.Context, record adapter.Record) (adapter.Action, error) {
	r, ok := record.(profileRecord)
	if !ok {
		return adapter.Action{}, fmt.Errorf("unknown record type %T", record)
	}

	wiped := *r.p
	wiped.IsBusiness = false
	wiped.BusinessName = ""
	wiped.Occupation = ""
	wiped.VATNumber = ""
	wiped.VIESRegistered = false
	wiped.TaxAuthority = ""
	wiped.Address1 = redactedAddress
	wiped.Address2 = ""
	wiped.City = redactedCity
	wiped.State = ""
	wiped.Zip = redactedZip
	wiped.Country = redactedCountry
	wiped.Notes = wipedNotice

	if err := a.store.Update(ctx, &wiped); err != nil {
		return adapter.Action{}, fmt.Errorf("anonymize profile: %w", err)
	}
	return adapter.Action{
		Kind:     adapter.ActionAnonymized,
		Category: CategoryUsers,
		RecordID: r.p.UserID.String(),
		FieldsCleared: []string{
			"business_name", "occupation", "vat_number", "tax_authority",
			"address1", "address2", "city", "state", "zip", "country", "notes",
		},
	}, nil
}

func (a *Adapter) ExportUserRecords(ctx context.Context, userID id.UserID) ([]export.Section, error) {
	section := export.Section{
		Name:        a.Name(),
		Description: a.Description(),
	}

	p, err := a.store.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return []export.Section{section}, nil
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}

	section.Items = append(section.Items, export.NewItem(
		"is_business", strconv.FormatBool(p.IsBusiness),
		"business_name", p.BusinessName,
		"occupation", p.Occupation,
		"vat_number", p.VATNumber,
		"vies_registered", strconv.FormatBool(p.VIESRegistered),
		"tax_authority", p.TaxAuthority,
		"address1", p.Address1,
		"address2", p.Address2,
		"city", p.City,
		"state", p.State,
		"zip", p.Zip,
		"country", p.Country,
		"notes", p.Notes,
	))
	return []export.Section{section}, nil
}

type profileRecord struct {
	p *Profile
}

func (r profileRecord) RecordID() string {
	return r.p.UserID.String()
}

func (r profileRecord) Lifecycle() string {
	return "active"
}
