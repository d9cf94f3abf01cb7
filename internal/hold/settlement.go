package hold

import (
	"context"
	"fmt"
	"time"

	id "datawipe/pkg/domain"
)

// SettledRecordCounter is the narrow read path the settlement hold needs from
// a domain store: how many settled records the user acquired since a cutoff.
type SettledRecordCounter interface {
	CountSettledSince(ctx context.Context, userID id.UserID, since time.Time) (int, error)
}

// SettlementWindowName identifies the settlement-protection hold in verdicts.
const SettlementWindowName = "settlement_window"

// NewSettlementWindow vetoes deletion while the user has a settled record
// created within the last `days` days: such transactions are likely not yet
// reported for tax purposes and still inside the payment processor's dispute
// window. A non-positive day count disables the hold.
func NewSettlementWindow(counter SettledRecordCounter, days int, now func() time.Time) Predicate {
	if now == nil {
		now = time.Now
	}
	return func(ctx context.Context, userID id.UserID) (Verdict, error) {
		if days < 1 {
			return Verdict{}, nil
		}
		since := now().AddDate(0, 0, -days)
		count, err := counter.CountSettledSince(ctx, userID, since)
		if err != nil {
			return Verdict{}, fmt.Errorf("count settled records: %w", err)
		}
		if count > 0 {
			return Verdict{
				Vetoed: true,
				Reason: fmt.Sprintf("user has %d settled transaction(s) within the last %d days", count, days),
			}, nil
		}
		return Verdict{}, nil
	}
}
