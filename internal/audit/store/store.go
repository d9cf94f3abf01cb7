package store

import (
	"context"

	"datawipe/internal/audit"
	id "datawipe/pkg/domain"
)

// Store persists audit entries. The interface is append-and-read by
// construction: there is no update or delete operation to misuse, which is
// half of the immutability guarantee (the service layer's unconditional
// denial is the other half).
//
// Error contract: Append returns sentinel.ErrUnavailable (optionally wrapped)
// when the write cannot be durably committed.
type Store interface {
	Append(ctx context.Context, entry audit.Entry) error
	ListByUser(ctx context.Context, userID id.UserID) ([]audit.Entry, error)
	List(ctx context.Context, limit int) ([]audit.Entry, error)
}
