package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"datawipe/internal/export"
	"datawipe/internal/transport/http/shared"
	id "datawipe/pkg/domain"
)

// ExportService is the orchestrator contract the export endpoint delegates to.
type ExportService interface {
	Export(ctx context.Context, userID id.UserID) (*export.Tree, error)
}

// ExportHandler serves the data disclosure endpoint.
type ExportHandler struct {
	service ExportService
	logger  *slog.Logger
}

func NewExportHandler(service ExportService, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{service: service, logger: logger}
}

func (h *ExportHandler) Register(r chi.Router) {
	r.Get("/users/{userID}/export", h.handleExport)
}

type exportResponse struct {
	UserID      string           `json:"user_id"`
	GeneratedAt time.Time        `json:"generated_at"`
	Partial     bool             `json:"partial"`
	Sections    []export.Section `json:"sections"`
	Warnings    []export.Warning `json:"warnings,omitempty"`
}

// handleExport answers with the full disclosure tree. A partial tree (one or
// more domains degraded to warnings) is still a 200: the caller reads the
// warnings field, re-requests later, and gets the same tree shape.
func (h *ExportHandler) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	tree, err := h.service.Export(ctx, userID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, exportResponse{
		UserID:      tree.UserID.String(),
		GeneratedAt: tree.GeneratedAt,
		Partial:     tree.Partial(),
		Sections:    tree.Sections,
		Warnings:    tree.Warnings,
	})
}
