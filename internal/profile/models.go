// Package profile is the domain adapter for billing profiles: the invoicing
// details a user supplied alongside their subscriptions. A profile is never
// deleted during erasure because the anonymized subscriptions still reference
// it; instead every identifying field is overwritten in place.
package profile

import (
	"time"

	id "datawipe/pkg/domain"
)

// Profile is one user's billing profile. One per user.
type Profile struct {
	UserID         id.UserID
	IsBusiness     bool
	BusinessName   string
	Occupation     string
	VATNumber      string
	VIESRegistered bool
	TaxAuthority   string
	Address1       string
	Address2       string
	City           string
	State          string
	Zip            string
	Country        string
	Notes          string
	UpdatedAt      time.Time
}
