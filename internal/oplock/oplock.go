// Package oplock serializes erasure and export per user. Erasure takes the
// user's lock exclusively; exports share it among themselves but are excluded
// while an erasure is in flight, so an export can never observe half-erased
// state. A conflicting request is rejected immediately rather than queued -
// the caller retries once the in-flight operation finishes.
package oplock

import (
	"context"

	id "datawipe/pkg/domain"
)

// ReleaseFunc returns the lock. Safe to call exactly once.
type ReleaseFunc func()

// Locker is the per-user operation lock. Both methods fail fast with
// sentinel.ErrConflict (optionally wrapped) when the lock cannot be taken.
type Locker interface {
	// AcquireExclusive takes the user's lock for an erasure. It conflicts
	// with any in-flight erasure or export for the same user.
	AcquireExclusive(ctx context.Context, userID id.UserID) (ReleaseFunc, error)

	// AcquireShared takes the user's lock for an export. Exports may overlap
	// each other; only an in-flight erasure conflicts.
	AcquireShared(ctx context.Context, userID id.UserID) (ReleaseFunc, error)
}
