// Package hold decides whether a user may currently be erased. Holds are
// independent business-rule predicates; any one of them can veto deletion
// with a reason the caller can show to the user.
package hold

import (
	"context"
	"log/slog"

	id "datawipe/pkg/domain"
)

// Verdict is the result of evaluating holds against a user. It is computed
// fresh on every attempt and never persisted.
type Verdict struct {
	Vetoed bool
	// Reason is human-readable and safe to surface to the requester.
	Reason string
	// Source names the hold that raised the veto.
	Source string
}

// Predicate is one registered "can this user be deleted" check. A veto is a
// normal result, not an error; the error return is for the predicate itself
// failing to execute (store unreachable).
type Predicate func(ctx context.Context, userID id.UserID) (Verdict, error)

type registeredHold struct {
	name string
	pred Predicate
}

// Evaluator runs registered predicates in registration order. Evaluation is
// sequential and deterministic so veto messages are reproducible; the first
// veto wins and short-circuits the rest.
type Evaluator struct {
	holds  []registeredHold
	logger *slog.Logger
}

func NewEvaluator(logger *slog.Logger) *Evaluator {
	return &Evaluator{logger: logger}
}

// Register appends a named predicate to the evaluation order.
func (e *Evaluator) Register(name string, pred Predicate) {
	e.holds = append(e.holds, registeredHold{name: name, pred: pred})
}

// Evaluate runs every predicate against the user. A predicate that cannot
// execute counts as a veto: inability to confirm "it's safe to delete" must
// block deletion, never permit it.
func (e *Evaluator) Evaluate(ctx context.Context, userID id.UserID) Verdict {
	for _, h := range e.holds {
		verdict, err := h.pred(ctx, userID)
		if err != nil {
			e.logger.ErrorContext(ctx, "hold evaluation failed",
				"hold", h.name,
				"user_id", userID.String(),
				"error", err,
			)
			return Verdict{
				Vetoed: true,
				Reason: "evaluation failed: cannot confirm it is safe to delete this account",
				Source: h.name,
			}
		}
		if verdict.Vetoed {
			verdict.Source = h.name
			return verdict
		}
	}
	return Verdict{}
}
