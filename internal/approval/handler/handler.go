package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"vigil/internal/approval/models"
	id "vigil/pkg/domain"
	dErrors "vigil/pkg/domain-errors"
	"vigil/pkg/platform/httputil"
	"vigil/pkg/requestcontext"
)

// Service defines the approval chain operations the HTTP surface exposes.
type Service interface {
	Submit(ctx context.Context, reportID id.ReportID) error
	Resubmit(ctx context.Context, reportID id.ReportID) error
	Chain(ctx context.Context, reportID id.ReportID) ([]*models.Approval, error)
	Decide(ctx context.Context, reportID id.ReportID, level models.Level, approve bool, comment string) (*models.Approval, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts approval endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/reports/{reportID}/submit", h.HandleSubmit)
	r.Post("/reports/{reportID}/resubmit", h.HandleResubmit)
	r.Get("/reports/{reportID}/approvals", h.HandleChain)
	r.Post("/reports/{reportID}/approvals/{level}", h.HandleDecide)
}

func (h *Handler) requireActor(w http.ResponseWriter, r *http.Request) bool {
	if requestcontext.ActorID(r.Context()) == (id.UserID{}) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return false
	}
	return true
}

func reportIDParam(w http.ResponseWriter, r *http.Request) (id.ReportID, bool) {
	reportID, err := id.ParseReportID(chi.URLParam(r, "reportID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.ReportID{}, false
	}
	return reportID, true
}

// HandleSubmit handles POST /reports/{reportID}/submit.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	if !h.requireActor(w, r) {
		return
	}
	reportID, ok := reportIDParam(w, r)
	if !ok {
		return
	}
	if err := h.service.Submit(r.Context(), reportID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleResubmit handles POST /reports/{reportID}/resubmit.
func (h *Handler) HandleResubmit(w http.ResponseWriter, r *http.Request) {
	if !h.requireActor(w, r) {
		return
	}
	reportID, ok := reportIDParam(w, r)
	if !ok {
		return
	}
	if err := h.service.Resubmit(r.Context(), reportID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleChain handles GET /reports/{reportID}/approvals.
func (h *Handler) HandleChain(w http.ResponseWriter, r *http.Request) {
	reportID, ok := reportIDParam(w, r)
	if !ok {
		return
	}
	chain, err := h.service.Chain(r.Context(), reportID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromChain(chain))
}

// HandleDecide handles POST /reports/{reportID}/approvals/{level}.
func (h *Handler) HandleDecide(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.requireActor(w, r) {
		return
	}
	reportID, ok := reportIDParam(w, r)
	if !ok {
		return
	}
	level, err := models.ParseLevel(strings.ToUpper(chi.URLParam(r, "level")))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[DecideRequest](w, r)
	if !ok {
		return
	}

	approval, err := h.service.Decide(ctx, reportID, level, req.Approve, req.Comment)
	if err != nil {
		h.logger.ErrorContext(ctx, "approval decision failed",
			"request_id", requestcontext.RequestID(ctx),
			"report_id", reportID,
			"level", level,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromApproval(approval))
}

// DecideRequest is the HTTP request body for the decision endpoint.
type DecideRequest struct {
	Approve bool   `json:"approve"`
	Comment string `json:"comment,omitempty"`
}

func (r *DecideRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Comment = strings.TrimSpace(r.Comment)
	if !r.Approve && r.Comment == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "a rejection requires a comment")
	}
	return nil
}

// ApprovalResponse is the HTTP representation of one chain level.
type ApprovalResponse struct {
	Level     string     `json:"level"`
	Status    string     `json:"status"`
	DecidedBy *string    `json:"decided_by,omitempty"`
	DecidedAt *time.Time `json:"decided_at,omitempty"`
	Comment   string     `json:"comment,omitempty"`
}

func FromApproval(approval *models.Approval) *ApprovalResponse {
	resp := &ApprovalResponse{
		Level:     string(approval.Level),
		Status:    string(approval.Status),
		DecidedAt: approval.DecidedAt,
		Comment:   approval.Comment,
	}
	if approval.DecidedBy != nil {
		decidedBy := approval.DecidedBy.String()
		resp.DecidedBy = &decidedBy
	}
	return resp
}

func FromChain(chain []*models.Approval) []*ApprovalResponse {
	out := make([]*ApprovalResponse, 0, len(chain))
	for _, approval := range chain {
		out = append(out, FromApproval(approval))
	}
	return out
}
