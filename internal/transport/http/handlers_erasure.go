package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"datawipe/internal/erasure"
	"datawipe/internal/hold"
	"datawipe/internal/platform/middleware"
	"datawipe/internal/transport/http/shared"
	id "datawipe/pkg/domain"
	dErrors "datawipe/pkg/domain-errors"
	httpErrors "datawipe/pkg/http-errors"
)

// ErasureService is the orchestrator contract the erasure endpoints delegate
// to.
type ErasureService interface {
	Erase(ctx context.Context, userID id.UserID, requestType erasure.RequestType, actor string) (*erasure.Outcome, error)
	QueryHolds(ctx context.Context, userID id.UserID) hold.Verdict
}

// ErasureHandler serves the erasure and hold-query endpoints.
type ErasureHandler struct {
	service ErasureService
	logger  *slog.Logger
}

func NewErasureHandler(service ErasureService, logger *slog.Logger) *ErasureHandler {
	return &ErasureHandler{service: service, logger: logger}
}

func (h *ErasureHandler) Register(r chi.Router) {
	r.Post("/users/{userID}/erasure", h.handleErase)
	r.Get("/users/{userID}/holds", h.handleQueryHolds)
}

type eraseRequest struct {
	RequestType string `json:"request_type"`
}

type eraseResponse struct {
	UserID       string                          `json:"user_id"`
	RequestType  string                          `json:"request_type"`
	Status       string                          `json:"status"`
	StartedAt    time.Time                       `json:"started_at"`
	FinishedAt   time.Time                       `json:"finished_at"`
	Domains      map[string]erasure.DomainResult `json:"domains"`
	FailedDomain string                          `json:"failed_domain,omitempty"`
	Error        string                          `json:"error,omitempty"`
}

// handleErase runs a full erasure for the user in the path. A partial run
// answers with the error's status code but still carries the outcome body, so
// the caller sees which domains completed before the failure.
func (h *ErasureHandler) handleErase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req eraseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	requestType, err := erasure.ParseRequestType(req.RequestType)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	actor, _ := middleware.ActorFrom(ctx)

	outcome, err := h.service.Erase(ctx, userID, requestType, actor.ID)
	if err != nil && outcome == nil {
		// Nothing ran: veto, conflict, or lock failure.
		shared.WriteError(w, err)
		return
	}

	resp := eraseResponse{
		UserID:       outcome.UserID.String(),
		RequestType:  string(outcome.RequestType),
		Status:       string(outcome.Status),
		StartedAt:    outcome.StartedAt,
		FinishedAt:   outcome.FinishedAt,
		Domains:      outcome.Domains,
		FailedDomain: outcome.FailedDomain,
	}

	status := http.StatusOK
	if err != nil {
		var domainErr *dErrors.Error
		if errors.As(err, &domainErr) {
			status = httpErrors.ToHTTPStatus(domainErr.Code)
			resp.Error = string(domainErr.Code)
		} else {
			status = http.StatusInternalServerError
			resp.Error = string(dErrors.CodeInternal)
		}
	}
	shared.WriteJSON(w, status, resp)
}

func (h *ErasureHandler) handleQueryHolds(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	verdict := h.service.QueryHolds(ctx, userID)
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"vetoed": verdict.Vetoed,
		"reason": verdict.Reason,
		"source": verdict.Source,
	})
}
