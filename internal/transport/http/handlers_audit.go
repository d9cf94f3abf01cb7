package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"datawipe/internal/audit"
	"datawipe/internal/authz"
	"datawipe/internal/platform/middleware"
	"datawipe/internal/transport/http/shared"
	id "datawipe/pkg/domain"
	dErrors "datawipe/pkg/domain-errors"
)

const defaultAuditListLimit = 100

// AuditService is the recorder contract the audit trail endpoints delegate
// to. Update and Delete exist on the contract so the transport can route
// mutation attempts into the recorder's unconditional denial rather than
// answering 404 and hiding the policy.
type AuditService interface {
	ListByUser(ctx context.Context, actor authz.Actor, userID id.UserID) ([]audit.Entry, error)
	List(ctx context.Context, actor authz.Actor, limit int) ([]audit.Entry, error)
	Update(ctx context.Context, actor authz.Actor, entry audit.Entry) error
	Delete(ctx context.Context, actor authz.Actor, entryID id.AuditEntryID) error
}

// AuditHandler serves the audit trail endpoints.
type AuditHandler struct {
	service AuditService
	logger  *slog.Logger
}

func NewAuditHandler(service AuditService, logger *slog.Logger) *AuditHandler {
	return &AuditHandler{service: service, logger: logger}
}

func (h *AuditHandler) Register(r chi.Router) {
	r.Get("/audit", h.handleList)
	r.Get("/audit/users/{userID}", h.handleListByUser)
	r.Put("/audit/{entryID}", h.handleUpdate)
	r.Delete("/audit/{entryID}", h.handleDelete)
}

type auditEntryResponse struct {
	ID          string        `json:"id"`
	Timestamp   time.Time     `json:"timestamp"`
	UserID      string        `json:"user_id"`
	Actor       string        `json:"actor"`
	RequestType string        `json:"request_type"`
	Status      string        `json:"status"`
	Results     audit.Results `json:"results"`
}

func (h *AuditHandler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := middleware.ActorFrom(ctx)

	limit := defaultAuditListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid limit"))
			return
		}
		limit = n
	}

	entries, err := h.service.List(ctx, actor, limit)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"entries": toEntryResponses(entries),
	})
}

func (h *AuditHandler) handleListByUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := middleware.ActorFrom(ctx)

	userID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	entries, err := h.service.ListByUser(ctx, actor, userID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"entries": toEntryResponses(entries),
	})
}

// handleUpdate forwards to the recorder, which denies mutation for every
// actor. The endpoint exists so the refusal is explicit and observable.
func (h *AuditHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := middleware.ActorFrom(ctx)

	if err := h.service.Update(ctx, actor, audit.Entry{}); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *AuditHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := middleware.ActorFrom(ctx)

	entryID, err := id.ParseAuditEntryID(chi.URLParam(r, "entryID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.service.Delete(ctx, actor, entryID); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func toEntryResponses(entries []audit.Entry) []auditEntryResponse {
	out := make([]auditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, auditEntryResponse{
			ID:          e.ID.String(),
			Timestamp:   e.Timestamp,
			UserID:      e.UserID.String(),
			Actor:       e.Actor,
			RequestType: e.RequestType,
			Status:      e.Status,
			Results:     e.Results,
		})
	}
	return out
}
