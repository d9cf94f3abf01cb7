package profile

import (
	"context"

	id "datawipe/pkg/domain"
)

// Store is the persistence contract for billing profiles.
//
// Error contract:
// - FindByUser returns sentinel.ErrNotFound when the user has no profile
// - infrastructure failures surface as sentinel.ErrUnavailable (wrapped)
type Store interface {
	FindByUser(ctx context.Context, userID id.UserID) (*Profile, error)
	Update(ctx context.Context, p *Profile) error
}
